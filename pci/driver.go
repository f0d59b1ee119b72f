package pci

import (
	"github.com/jslinux/JsOs/pci/hal"
	"github.com/jslinux/JsOs/pkg"
)

// dispatchDrivers binds resolved resources to matched driver modules and
// invokes their entry points. Bridges are never dispatched; BAR decoding
// applies only to general device headers.
//
// Dispatch is fire-and-forget: once resources are handed over and, when
// requested, bus mastering is enabled, the engine owes the driver no
// further coordination. Startup failures stay inside the driver.
func (m *Manager) dispatchDrivers() {
	if m.drivers == nil {
		return
	}

	m.Each(func(dev *Device) {
		if dev.IsBridge() {
			return
		}

		match, ok := m.drivers.Lookup(dev.vendorID, dev.deviceID)
		if !ok || !match.Enabled || match.Driver == nil {
			return
		}

		res, err := m.resolveResources(dev)
		if err != nil {
			pkg.LogError(pkg.ComponentDriver, "resource resolution failed",
				"address", dev.addr.String(), "error", err)
			return
		}

		if match.BusMaster {
			if err := dev.SetCommandFlag(CommandBusMaster); err != nil {
				pkg.LogError(pkg.ComponentDriver, "bus-master enable failed",
					"address", dev.addr.String(), "error", err)
				return
			}
			if err := dev.SetCommandFlag(CommandMemorySpace); err != nil {
				pkg.LogError(pkg.ComponentDriver, "memory-space enable failed",
					"address", dev.addr.String(), "error", err)
				return
			}
		}

		pkg.LogInfo(pkg.ComponentDriver, "driver dispatched",
			"address", dev.addr.String(),
			"busMaster", match.BusMaster)
		match.Driver.Attach(res)
	})
}

// resolveResources decodes all six BARs, resolves the routed IRQ handle,
// and gathers class and subsystem identification for a device.
func (m *Manager) resolveResources(dev *Device) (*hal.Resources, error) {
	res := &hal.Resources{Allocator: m.allocator}

	if vector, assigned := dev.IRQVector(); assigned && m.irq != nil {
		res.IRQ = m.irq.IRQ(vector)
	}

	for i := 0; i < BARCount; i++ {
		bar, err := dev.BAR(i)
		if err != nil {
			return nil, err
		}
		res.BARs[i] = bar.Resource()
	}

	classCode, err := dev.ClassCode()
	if err != nil {
		return nil, err
	}
	subclass, err := dev.Subclass()
	if err != nil {
		return nil, err
	}
	subsystemVendor, err := dev.SubsystemVendorID()
	if err != nil {
		return nil, err
	}
	subsystemID, err := dev.SubsystemID()
	if err != nil {
		return nil, err
	}

	res.Class = hal.DeviceClass{
		ClassCode:       classCode,
		Subclass:        subclass,
		ClassName:       ClassName(classCode),
		SubsystemVendor: subsystemVendor,
		SubsystemID:     subsystemID,
	}
	return res, nil
}
