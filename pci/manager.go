package pci

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/jslinux/JsOs/pci/hal"
	"github.com/jslinux/JsOs/pkg"
)

// Config carries the hardware collaborators the manager is built over.
// Ports, Memory, IO, and IRQ are required; ACPI, Drivers, and Allocator
// may be nil, in which case the corresponding boot stages are skipped.
type Config struct {
	Ports     hal.PortIO
	Memory    hal.MemoryRange
	IO        hal.IORange
	IRQ       hal.IRQRange
	ACPI      hal.ACPI
	Drivers   hal.DriverRegistry
	Allocator hal.Allocator
}

// Manager owns the device registry and runs the boot-time enumeration
// pipeline: bus walk, ACPI attachment, interrupt routing, and driver
// dispatch. The registry is built once and never pruned; there is no
// hot-plug.
type Manager struct {
	provider  *AccessorProvider
	mem       hal.MemoryRange
	io        hal.IORange
	irq       hal.IRQRange
	acpi      hal.ACPI
	drivers   hal.DriverRegistry
	allocator hal.Allocator

	devices map[Address]*Device
	routing map[uint8][]hal.IRQRoute
}

// NewManager creates a manager over the given collaborators.
func NewManager(cfg Config) *Manager {
	return &Manager{
		provider:  NewAccessorProvider(cfg.Ports),
		mem:       cfg.Memory,
		io:        cfg.IO,
		irq:       cfg.IRQ,
		acpi:      cfg.ACPI,
		drivers:   cfg.Drivers,
		allocator: cfg.Allocator,
		devices:   make(map[Address]*Device),
		routing:   make(map[uint8][]hal.IRQRoute),
	}
}

// Provider returns the manager's accessor factory.
func (m *Manager) Provider() *AccessorProvider {
	return m.provider
}

// AddDevice registers a device. An address collision fails with
// [pkg.ErrDuplicateDevice].
func (m *Manager) AddDevice(dev *Device) error {
	if _, exists := m.devices[dev.addr]; exists {
		return fmt.Errorf("%s: %w", dev.addr, pkg.ErrDuplicateDevice)
	}
	m.devices[dev.addr] = dev
	return nil
}

// FindDevice returns the device registered at the given address.
func (m *Manager) FindDevice(addr Address) (*Device, bool) {
	dev, ok := m.devices[addr]
	return dev, ok
}

// Each invokes fn for every registered device. Traversal order is
// unspecified.
func (m *Manager) Each(fn func(*Device)) {
	for _, dev := range m.devices {
		fn(dev)
	}
}

// DeviceCount returns the number of registered devices.
func (m *Manager) DeviceCount() int {
	return len(m.devices)
}

// Boot runs the full enumeration pipeline. Protocol and registration
// violations abort the pass; ACPI resolution failures are local and leave
// the affected devices without firmware handles or routed IRQs.
func (m *Manager) Boot() error {
	if err := m.discover(); err != nil {
		return errors.Wrap(err, "bus enumeration")
	}
	m.attachACPI()
	m.routeInterrupts()
	m.dispatchDrivers()

	pkg.LogInfo(pkg.ComponentPCI, "boot enumeration complete",
		"devices", len(m.devices),
		"routedBuses", len(m.routing))
	return nil
}

// discover walks configuration space and populates the registry.
func (m *Manager) discover() error {
	return m.provider.Walk(func(addr Address, acc *Accessor) error {
		dev, err := newDevice(m, addr, acc)
		if err != nil {
			return err
		}
		if err := m.AddDevice(dev); err != nil {
			return err
		}
		pkg.LogInfo(pkg.ComponentPCI, "device registered",
			"address", addr.String(),
			"vendor", fmt.Sprintf("%#04x", dev.vendorID),
			"device", fmt.Sprintf("%#04x", dev.deviceID),
			"bridge", dev.IsBridge())
		return nil
	})
}
