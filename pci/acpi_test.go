package pci

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/jslinux/JsOs/pci/hal"
	"github.com/jslinux/JsOs/pci/hal/sim"
	"github.com/jslinux/JsOs/pkg"
)

func TestResolveACPINode_RootBridge(t *testing.T) {
	RegisterTestingT(t)

	provider := NewAccessorProvider(sim.NewMachine())
	root := sim.NewRootBridgeNode(4)

	addr, err := ResolveACPINode(provider, root)
	Expect(err).ToNot(HaveOccurred())
	Expect(addr).To(Equal(Address{Bus: 4, Slot: 0, Func: 0}))
}

func TestResolveACPINode_UnderRootBridge(t *testing.T) {
	RegisterTestingT(t)

	provider := NewAccessorProvider(sim.NewMachine())
	root := sim.NewRootBridgeNode(0)
	node := sim.NewDeviceNode(root, 2, 1)

	addr, err := ResolveACPINode(provider, node)
	Expect(err).ToNot(HaveOccurred())
	Expect(addr).To(Equal(Address{Bus: 0, Slot: 2, Func: 1}))
}

func TestResolveACPINode_ThroughBridge(t *testing.T) {
	RegisterTestingT(t)

	machine := sim.NewMachine()
	bridge := machine.AddFunction(0, 3, 0)
	bridge.SetIdentity(0x8086, 0x244E)
	bridge.SetHeaderType(HeaderKindBridge)
	bridge.SetSecondaryBus(1)
	provider := NewAccessorProvider(machine)

	root := sim.NewRootBridgeNode(0)
	bridgeNode := sim.NewDeviceNode(root, 3, 0)
	leaf := sim.NewDeviceNode(bridgeNode, 5, 0)

	addr, err := ResolveACPINode(provider, leaf)
	Expect(err).ToNot(HaveOccurred())
	Expect(addr).To(Equal(Address{Bus: 1, Slot: 5, Func: 0}))
}

func TestResolveACPINode_NestedBridges(t *testing.T) {
	RegisterTestingT(t)

	machine := sim.NewMachine()
	outer := machine.AddFunction(0, 3, 0)
	outer.SetIdentity(0x8086, 0x244E)
	outer.SetHeaderType(HeaderKindBridge)
	outer.SetSecondaryBus(1)
	inner := machine.AddFunction(1, 4, 0)
	inner.SetIdentity(0x8086, 0x2448)
	inner.SetHeaderType(HeaderKindBridge)
	inner.SetSecondaryBus(2)
	provider := NewAccessorProvider(machine)

	root := sim.NewRootBridgeNode(0)
	outerNode := sim.NewDeviceNode(root, 3, 0)
	innerNode := sim.NewDeviceNode(outerNode, 4, 0)
	leaf := sim.NewDeviceNode(innerNode, 6, 0)

	addr, err := ResolveACPINode(provider, leaf)
	Expect(err).ToNot(HaveOccurred())
	Expect(addr).To(Equal(Address{Bus: 2, Slot: 6, Func: 0}))
}

func TestResolveACPINode_Unresolvable(t *testing.T) {
	RegisterTestingT(t)

	machine := sim.NewMachine()
	// An endpoint where a bridge parent is expected.
	endpoint := machine.AddFunction(0, 3, 0)
	endpoint.SetIdentity(0x8086, 0x100E)
	provider := NewAccessorProvider(machine)

	root := sim.NewRootBridgeNode(0)
	scope := sim.NewScopeNode(root)

	tests := []struct {
		name string
		node hal.ACPINode
	}{
		{"nil node", nil},
		{"non-device node", scope},
		{"nil parent", sim.NewDeviceNode(nil, 2, 0)},
		{"encoded slot out of range", sim.NewDeviceNode(root, 40, 0)},
		{"non-device parent", sim.NewDeviceNode(scope, 2, 0)},
		{"chain never reaches root bridge", sim.NewDeviceNode(sim.NewDeviceNode(nil, 3, 0), 5, 0)},
		{"parent not bridge-typed", sim.NewDeviceNode(sim.NewDeviceNode(root, 3, 0), 5, 0)},
	}

	for _, tt := range tests {
		_, err := ResolveACPINode(provider, tt.node)
		Expect(err).To(MatchError(pkg.ErrUnresolvableACPI), tt.name)
	}
}

func TestAttachACPI_HandlesAndFailuresAreLocal(t *testing.T) {
	RegisterTestingT(t)

	machine := sim.NewMachine()
	machine.AddFunction(0, 2, 0).SetIdentity(0x8086, 0x100E)
	machine.AddFunction(0, 4, 0).SetIdentity(0x10EC, 0x8139)

	root := sim.NewRootBridgeNode(0)
	resolved := sim.NewDeviceNode(root, 2, 0)
	orphan := sim.NewDeviceNode(sim.NewScopeNode(nil), 4, 0)
	firmware := sim.NewFirmware()
	firmware.Add(root, resolved, orphan)

	m := newSimManager(machine, firmware, nil)
	Expect(m.Boot()).To(Succeed())

	dev, found := m.FindDevice(Address{Bus: 0, Slot: 2, Func: 0})
	Expect(found).To(BeTrue())
	Expect(dev.ACPINode()).To(BeIdenticalTo(resolved))

	// The orphaned node's device is still enumerated, just without a handle.
	other, found := m.FindDevice(Address{Bus: 0, Slot: 4, Func: 0})
	Expect(found).To(BeTrue())
	Expect(other.ACPINode()).To(BeNil())
}
