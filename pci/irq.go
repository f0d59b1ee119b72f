package pci

import "github.com/jslinux/JsOs/pkg"

// routeInterrupts assigns IRQ vectors to non-bridge devices on buses with
// a registered routing table.
//
// The configuration-space interrupt-pin register is 1-based (0 means the
// function uses no interrupt); ACPI routing entries carry 0-based pins, so
// an entry matches when entry.Pin+1 equals the device pin. The first
// matching entry wins; overlapping entries for the same slot and pin are
// resolved by table order.
func (m *Manager) routeInterrupts() {
	m.Each(func(dev *Device) {
		if dev.IsBridge() {
			return
		}
		table, ok := m.routing[dev.addr.Bus]
		if !ok {
			return
		}
		pin, err := dev.InterruptPin()
		if err != nil {
			pkg.LogWarn(pkg.ComponentIRQ, "interrupt pin read failed",
				"address", dev.addr.String(), "error", err)
			return
		}
		if pin == 0 {
			return
		}

		for _, entry := range table {
			if entry.SlotID != dev.addr.Slot || entry.Pin+1 != pin {
				continue
			}
			if err := dev.SetIRQVector(entry.IRQ); err != nil {
				pkg.LogWarn(pkg.ComponentIRQ, "vector assignment failed",
					"address", dev.addr.String(), "error", err)
				return
			}
			pkg.LogInfo(pkg.ComponentIRQ, "irq routed",
				"address", dev.addr.String(),
				"pin", pin,
				"irq", entry.IRQ)
			return
		}
	})
}
