package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jslinux/JsOs/pci/hal"
)

// BARSpec describes one simulated base address register.
type BARSpec struct {
	Index int    `yaml:"index"`
	Value uint32 `yaml:"value"`
	Probe uint32 `yaml:"probe"`
}

// FunctionSpec describes one simulated PCI function.
type FunctionSpec struct {
	Bus             uint8            `yaml:"bus"`
	Slot            uint8            `yaml:"slot"`
	Func            uint8            `yaml:"func"`
	Vendor          uint16           `yaml:"vendor"`
	Device          uint16           `yaml:"device"`
	Header          uint8            `yaml:"header"`
	Class           uint8            `yaml:"class"`
	Subclass        uint8            `yaml:"subclass"`
	ProgIF          uint8            `yaml:"progIF"`
	Revision        uint8            `yaml:"revision"`
	Pin             uint8            `yaml:"pin"`
	Line            uint8            `yaml:"line"`
	SubsystemVendor uint16           `yaml:"subsystemVendor"`
	SubsystemID     uint16           `yaml:"subsystemId"`
	SecondaryBus    *uint8           `yaml:"secondaryBus"`
	BARs            []BARSpec        `yaml:"bars"`
	Registers       map[uint8]uint32 `yaml:"registers"`
}

// RouteSpec describes one interrupt routing entry. Pin is 0-based.
type RouteSpec struct {
	Slot uint8 `yaml:"slot"`
	Pin  uint8 `yaml:"pin"`
	IRQ  uint8 `yaml:"irq"`
}

// NodeSpec describes one simulated ACPI node. Parent refers to an earlier
// node by list index; root bridges have no parent.
type NodeSpec struct {
	RootBridge bool        `yaml:"rootBridge"`
	Scope      bool        `yaml:"scope"`
	Bus        uint8       `yaml:"bus"`
	Slot       uint8       `yaml:"slot"`
	Func       uint8       `yaml:"func"`
	Parent     *int        `yaml:"parent"`
	Routing    []RouteSpec `yaml:"routing"`
}

// Snapshot is a YAML-loadable machine description: configuration-space
// register files plus a firmware tree.
type Snapshot struct {
	Functions []FunctionSpec `yaml:"functions"`
	ACPI      []NodeSpec     `yaml:"acpi"`
}

// LoadSnapshot reads and builds a snapshot from a YAML file.
func LoadSnapshot(path string) (*Machine, *Firmware, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return ParseSnapshot(data)
}

// ParseSnapshot builds a machine and firmware tree from YAML data.
func ParseSnapshot(data []byte) (*Machine, *Firmware, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return snap.Build()
}

// Build materializes the snapshot.
func (s *Snapshot) Build() (*Machine, *Firmware, error) {
	machine := NewMachine()
	for i, spec := range s.Functions {
		if spec.Slot > 31 || spec.Func > 7 {
			return nil, nil, fmt.Errorf("function %d: slot %d func %d out of range",
				i, spec.Slot, spec.Func)
		}
		f := machine.AddFunction(spec.Bus, spec.Slot, spec.Func)
		f.SetIdentity(spec.Vendor, spec.Device)
		f.SetHeaderType(spec.Header)
		f.SetClass(spec.Class, spec.Subclass, spec.ProgIF, spec.Revision)
		f.SetInterrupt(spec.Line, spec.Pin)
		f.SetSubsystem(spec.SubsystemVendor, spec.SubsystemID)
		if spec.SecondaryBus != nil {
			f.SetSecondaryBus(*spec.SecondaryBus)
		}
		for _, bar := range spec.BARs {
			if bar.Index < 0 || bar.Index >= barCount {
				return nil, nil, fmt.Errorf("function %d: bar index %d out of range",
					i, bar.Index)
			}
			f.SetBAR(bar.Index, bar.Value, bar.Probe)
		}
		for offset, value := range spec.Registers {
			f.SetRegister(offset, value)
		}
	}

	firmware := NewFirmware()
	nodes := make([]*Node, len(s.ACPI))
	for i, spec := range s.ACPI {
		var parent *Node
		if spec.Parent != nil {
			idx := *spec.Parent
			if idx < 0 || idx >= i {
				return nil, nil, fmt.Errorf("acpi node %d: parent index %d must precede it",
					i, idx)
			}
			parent = nodes[idx]
		}

		var node *Node
		switch {
		case spec.RootBridge:
			node = NewRootBridgeNode(spec.Bus)
		case spec.Scope:
			node = NewScopeNode(parent)
		default:
			node = NewDeviceNode(parent, spec.Slot, spec.Func)
		}

		if len(spec.Routing) > 0 {
			routes := make([]hal.IRQRoute, len(spec.Routing))
			for j, r := range spec.Routing {
				routes[j] = hal.IRQRoute{SlotID: r.Slot, Pin: r.Pin, IRQ: r.IRQ}
			}
			node.SetRoutingTable(routes)
		}

		nodes[i] = node
		firmware.Add(node)
	}

	return machine, firmware, nil
}
