package pci

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/jslinux/JsOs/pci/hal"
	"github.com/jslinux/JsOs/pci/hal/sim"
	"github.com/jslinux/JsOs/pkg"
)

// newSimManager builds a manager over a simulated machine with in-memory
// resource ranges. Firmware and driver collaborators are optional.
func newSimManager(machine *sim.Machine, firmware hal.ACPI, drivers hal.DriverRegistry) *Manager {
	return NewManager(Config{
		Ports:     machine,
		Memory:    sim.NewMemoryRange(),
		IO:        sim.NewIORange(),
		IRQ:       sim.NewIRQRange(),
		ACPI:      firmware,
		Drivers:   drivers,
		Allocator: sim.NewAllocator(0x1000000),
	})
}

func TestManager_AddDevice_Duplicate(t *testing.T) {
	RegisterTestingT(t)

	machine := sim.NewMachine()
	machine.AddFunction(0, 2, 0).SetIdentity(0x8086, 0x100E)
	m := newSimManager(machine, nil, nil)

	acc, err := m.Provider().Get(Address{Bus: 0, Slot: 2, Func: 0})
	Expect(err).ToNot(HaveOccurred())

	first, err := newDevice(m, Address{Bus: 0, Slot: 2, Func: 0}, acc)
	Expect(err).ToNot(HaveOccurred())
	Expect(m.AddDevice(first)).To(Succeed())

	second, err := newDevice(m, Address{Bus: 0, Slot: 2, Func: 0}, acc)
	Expect(err).ToNot(HaveOccurred())
	Expect(m.AddDevice(second)).To(MatchError(pkg.ErrDuplicateDevice))

	dev, found := m.FindDevice(Address{Bus: 0, Slot: 2, Func: 0})
	Expect(found).To(BeTrue())
	Expect(dev).To(BeIdenticalTo(first))
}

func TestManager_FindDevice_Miss(t *testing.T) {
	RegisterTestingT(t)

	m := newSimManager(sim.NewMachine(), nil, nil)
	_, found := m.FindDevice(Address{Bus: 0, Slot: 9, Func: 0})
	Expect(found).To(BeFalse())
}

func TestManager_Boot_RegistersAllFunctions(t *testing.T) {
	RegisterTestingT(t)

	machine := sim.NewMachine()
	machine.AddFunction(0, 2, 0).SetIdentity(0x8086, 0x100E)
	bridge := machine.AddFunction(0, 3, 0)
	bridge.SetIdentity(0x8086, 0x244E)
	bridge.SetHeaderType(HeaderKindBridge)
	bridge.SetSecondaryBus(1)
	machine.AddFunction(1, 5, 0).SetIdentity(0x10EC, 0x8139)

	m := newSimManager(machine, nil, nil)
	Expect(m.Boot()).To(Succeed())
	Expect(m.DeviceCount()).To(Equal(3))

	visited := 0
	m.Each(func(*Device) { visited++ })
	Expect(visited).To(Equal(3))
}

func TestManager_ListDevices_EndToEnd(t *testing.T) {
	RegisterTestingT(t)

	machine := sim.NewMachine()
	nic := machine.AddFunction(0, 2, 0)
	nic.SetIdentity(0x8086, 0x100E)
	nic.SetClass(0x02, 0x00, 0x00, 0x03)
	nic.SetInterrupt(0, 1) // INTA#
	nic.SetSubsystem(0x1028, 0x002E)
	nic.SetBAR(0, 0xFE000000, 0xFFF00000)
	nic.SetBAR(1, 0xC001, 0xFFFFFFC1)

	bridge := machine.AddFunction(0, 3, 0)
	bridge.SetIdentity(0x8086, 0x244E)
	bridge.SetHeaderType(HeaderKindBridge)

	root := sim.NewRootBridgeNode(0)
	root.SetRoutingTable([]hal.IRQRoute{{SlotID: 2, Pin: 0, IRQ: 11}})
	firmware := sim.NewFirmware()
	firmware.Add(root, sim.NewDeviceNode(root, 2, 0))

	m := newSimManager(machine, firmware, nil)
	Expect(m.Boot()).To(Succeed())

	summaries, err := m.ListDevices()
	Expect(err).ToNot(HaveOccurred())
	Expect(summaries).To(HaveLen(1))

	s := summaries[0]
	Expect(s.Address()).To(Equal(Address{Bus: 0, Slot: 2, Func: 0}))
	Expect(s.VendorID).To(Equal(uint16(0x8086)))
	Expect(s.DeviceID).To(Equal(uint16(0x100E)))
	Expect(s.ClassCode).To(Equal(uint8(0x02)))
	Expect(s.Subclass).To(Equal(uint8(0x00)))
	Expect(s.ClassName).To(Equal("Network Controller"))
	Expect(s.Subsystem).To(Equal(SubsystemData{VendorID: 0x1028, DeviceID: 0x002E}))
	Expect(s.Pin).To(Equal(uint8(1)))
	Expect(s.IRQ).ToNot(BeNil())
	Expect(*s.IRQ).To(Equal(uint8(11)))

	Expect(s.BARs[0]).ToNot(BeNil())
	Expect(s.BARs[0].Kind).To(Equal(BARKindMemory32))
	Expect(s.BARs[0].Base).To(Equal(uint32(0xFE000000)))
	Expect(s.BARs[0].Size).To(Equal(uint32(0x100000)))

	Expect(s.BARs[1]).ToNot(BeNil())
	Expect(s.BARs[1].Kind).To(Equal(BARKindIO))
	Expect(s.BARs[1].Base).To(Equal(uint32(0xC000)))
	Expect(s.BARs[1].Size).To(Equal(uint32(0x40)))

	for i := 2; i < BARCount; i++ {
		Expect(s.BARs[i]).To(BeNil())
	}
}

func TestManager_ListDevices_Sorted(t *testing.T) {
	RegisterTestingT(t)

	machine := sim.NewMachine()
	machine.AddFunction(1, 4, 0).SetIdentity(0x10EC, 0x8139)
	machine.AddFunction(0, 7, 0).SetIdentity(0x8086, 0x7000)
	machine.AddFunction(0, 2, 0).SetIdentity(0x8086, 0x100E)

	m := newSimManager(machine, nil, nil)
	Expect(m.Boot()).To(Succeed())

	summaries, err := m.ListDevices()
	Expect(err).ToNot(HaveOccurred())
	Expect(summaries).To(HaveLen(3))
	Expect(summaries[0].Address()).To(Equal(Address{Bus: 0, Slot: 2, Func: 0}))
	Expect(summaries[1].Address()).To(Equal(Address{Bus: 0, Slot: 7, Func: 0}))
	Expect(summaries[2].Address()).To(Equal(Address{Bus: 1, Slot: 4, Func: 0}))
}

func TestManager_ListDevices_UnroutedIRQIsNil(t *testing.T) {
	RegisterTestingT(t)

	machine := sim.NewMachine()
	fn := machine.AddFunction(0, 2, 0)
	fn.SetIdentity(0x8086, 0x100E)
	fn.SetInterrupt(0, 1)

	m := newSimManager(machine, nil, nil)
	Expect(m.Boot()).To(Succeed())

	summaries, err := m.ListDevices()
	Expect(err).ToNot(HaveOccurred())
	Expect(summaries).To(HaveLen(1))
	Expect(summaries[0].IRQ).To(BeNil())
	Expect(summaries[0].Pin).To(Equal(uint8(1)))
}
