package pci

import (
	"fmt"

	"github.com/jslinux/JsOs/pci/hal"
	"github.com/jslinux/JsOs/pkg"
)

// ResolveACPINode maps a firmware device node to its true PCI address by
// walking ACPI parentage. The slot and function come from the node's _ADR
// encoding; the bus is recovered from the nearest root bridge, or from the
// secondary-bus register of each intermediate bridge.
//
// An unresolvable node (non-device node, missing or non-device parent, an
// ancestor chain that never reaches a root bridge, or a parent whose header
// is not bridge-typed) fails with [pkg.ErrUnresolvableACPI]. Resolution
// failures are local: callers skip the node and continue.
func ResolveACPINode(provider *AccessorProvider, node hal.ACPINode) (Address, error) {
	if node == nil || !node.IsDevice() {
		return Address{}, fmt.Errorf("not a device node: %w", pkg.ErrUnresolvableACPI)
	}

	encoded := node.Address()
	slot := encoded >> 16 & 0xFFFF
	fn := encoded & 0xFFFF
	if slot > MaxSlot || fn > MaxFunc {
		return Address{}, fmt.Errorf("encoded address %#x: %w", encoded, pkg.ErrUnresolvableACPI)
	}

	// Base case: the node itself decodes a root bus.
	if node.IsRootBridge() {
		return Address{Bus: node.RootBridgeBusNumber(), Slot: uint8(slot), Func: uint8(fn)}, nil
	}

	parent := node.Parent()
	if parent == nil || !parent.IsDevice() {
		return Address{}, fmt.Errorf("no device parent: %w", pkg.ErrUnresolvableACPI)
	}

	if parent.IsRootBridge() {
		return Address{Bus: parent.RootBridgeBusNumber(), Slot: uint8(slot), Func: uint8(fn)}, nil
	}

	// The parent is an intermediate bridge: resolve it recursively and
	// read its secondary-bus register.
	parentAddr, err := ResolveACPINode(provider, parent)
	if err != nil {
		return Address{}, err
	}
	acc, err := provider.Get(parentAddr)
	if err != nil {
		return Address{}, fmt.Errorf("parent %s: %w", parentAddr, pkg.ErrUnresolvableACPI)
	}
	header, err := acc.ReadField(FieldHeaderType)
	if err != nil {
		return Address{}, err
	}
	kind := uint8(header) & HeaderKindMask
	if kind != HeaderKindBridge && kind != HeaderKindCardBus {
		return Address{}, fmt.Errorf("parent %s is not bridge-typed: %w",
			parentAddr, pkg.ErrUnresolvableACPI)
	}
	secondary, err := acc.ReadField(FieldSecondaryBus)
	if err != nil {
		return Address{}, err
	}

	return Address{Bus: uint8(secondary), Slot: uint8(slot), Func: uint8(fn)}, nil
}

// attachACPI resolves every firmware PCI node, attaches handles to the
// matching devices, and registers per-bus interrupt routing tables.
func (m *Manager) attachACPI() {
	if m.acpi == nil {
		return
	}

	for _, node := range m.acpi.PCIDevices() {
		addr, err := ResolveACPINode(m.provider, node)
		if err != nil {
			pkg.LogWarn(pkg.ComponentACPI, "node left unresolved", "error", err)
			continue
		}

		dev, found := m.FindDevice(addr)
		if found {
			if err := dev.SetACPINode(node); err != nil {
				pkg.LogWarn(pkg.ComponentACPI, "handle attach failed",
					"address", addr.String(), "error", err)
			} else {
				pkg.LogDebug(pkg.ComponentACPI, "handle attached", "address", addr.String())
			}
		} else {
			pkg.LogWarn(pkg.ComponentACPI, "no device at resolved address",
				"address", addr.String())
		}

		m.registerRouting(node, dev)
	}
}

// registerRouting records the node's interrupt routing table against the
// bus it serves: the root bridge's decoded bus, or a bridge device's
// secondary bus. The first table registered for a bus wins.
func (m *Manager) registerRouting(node hal.ACPINode, dev *Device) {
	table := node.IRQRoutingTable()
	if len(table) == 0 {
		return
	}

	var bus uint8
	switch {
	case node.IsRootBridge():
		bus = node.RootBridgeBusNumber()
	case dev != nil && dev.IsBridge():
		secondary, err := dev.SecondaryBus()
		if err != nil {
			pkg.LogWarn(pkg.ComponentACPI, "secondary bus read failed",
				"address", dev.addr.String(), "error", err)
			return
		}
		bus = secondary
	default:
		return
	}

	if _, exists := m.routing[bus]; exists {
		return
	}
	m.routing[bus] = table
	pkg.LogDebug(pkg.ComponentACPI, "routing table registered",
		"bus", bus, "entries", len(table))
}
