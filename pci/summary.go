package pci

import (
	"sort"

	"github.com/pkg/errors"
)

// SubsystemData carries a device's subsystem identification.
type SubsystemData struct {
	VendorID uint16 `json:"vendorId" yaml:"vendorId"`
	DeviceID uint16 `json:"deviceId" yaml:"deviceId"`
}

// DeviceSummary is the query-interface view of one non-bridge device.
// IRQ is nil when no vector was routed; BARs always has six entries with
// nil marking absent registers.
type DeviceSummary struct {
	Bus       uint8          `json:"bus" yaml:"bus"`
	Slot      uint8          `json:"slot" yaml:"slot"`
	Func      uint8          `json:"func" yaml:"func"`
	VendorID  uint16         `json:"vendorId" yaml:"vendorId"`
	DeviceID  uint16         `json:"deviceId" yaml:"deviceId"`
	ClassCode uint8          `json:"classCode" yaml:"classCode"`
	Subclass  uint8          `json:"subclass" yaml:"subclass"`
	ClassName string         `json:"className" yaml:"className"`
	Subsystem SubsystemData  `json:"subsystem" yaml:"subsystem"`
	IRQ       *uint8         `json:"irq" yaml:"irq"`
	Pin       uint8          `json:"pin" yaml:"pin"`
	BARs      [BARCount]*BAR `json:"bars" yaml:"bars"`
}

// Address returns the summary's bus/slot/function triple.
func (s *DeviceSummary) Address() Address {
	return Address{Bus: s.Bus, Slot: s.Slot, Func: s.Func}
}

// ListDevices returns a fresh snapshot of the non-bridge device inventory,
// sorted by address. Bridge devices are excluded. BAR decoding re-executes
// the size-probe sequence on every call: the result is functionally
// idempotent but not hardware-timing-neutral.
func (m *Manager) ListDevices() ([]DeviceSummary, error) {
	summaries := make([]DeviceSummary, 0, len(m.devices))

	var failure error
	m.Each(func(dev *Device) {
		if failure != nil || dev.IsBridge() {
			return
		}
		summary, err := m.summarize(dev)
		if err != nil {
			failure = errors.Wrapf(err, "summarize %s", dev.addr)
			return
		}
		summaries = append(summaries, summary)
	})
	if failure != nil {
		return nil, failure
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.Bus != b.Bus {
			return a.Bus < b.Bus
		}
		if a.Slot != b.Slot {
			return a.Slot < b.Slot
		}
		return a.Func < b.Func
	})
	return summaries, nil
}

// summarize builds the query view of one non-bridge device.
func (m *Manager) summarize(dev *Device) (DeviceSummary, error) {
	classCode, err := dev.ClassCode()
	if err != nil {
		return DeviceSummary{}, err
	}
	subclass, err := dev.Subclass()
	if err != nil {
		return DeviceSummary{}, err
	}
	subsystemVendor, err := dev.SubsystemVendorID()
	if err != nil {
		return DeviceSummary{}, err
	}
	subsystemID, err := dev.SubsystemID()
	if err != nil {
		return DeviceSummary{}, err
	}
	pin, err := dev.InterruptPin()
	if err != nil {
		return DeviceSummary{}, err
	}

	summary := DeviceSummary{
		Bus:       dev.addr.Bus,
		Slot:      dev.addr.Slot,
		Func:      dev.addr.Func,
		VendorID:  dev.vendorID,
		DeviceID:  dev.deviceID,
		ClassCode: classCode,
		Subclass:  subclass,
		ClassName: ClassName(classCode),
		Subsystem: SubsystemData{VendorID: subsystemVendor, DeviceID: subsystemID},
		Pin:       pin,
	}

	if vector, assigned := dev.IRQVector(); assigned {
		v := vector
		summary.IRQ = &v
	}

	for i := 0; i < BARCount; i++ {
		bar, err := dev.BAR(i)
		if err != nil {
			return DeviceSummary{}, err
		}
		summary.BARs[i] = bar
	}
	return summary, nil
}
