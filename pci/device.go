package pci

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/jslinux/JsOs/pci/hal"
	"github.com/jslinux/JsOs/pkg"
)

// Device represents one enumerated PCI function. The record is immutable
// after discovery except for two assign-once fields: the attached ACPI
// node and the routed IRQ vector. A second assignment attempt on either
// fails with [pkg.ErrAlreadyAssigned].
type Device struct {
	mgr  *Manager
	addr Address
	acc  *Accessor

	vendorID   uint16
	deviceID   uint16
	headerType uint8

	acpiNode    hal.ACPINode
	irqVector   uint8
	irqAssigned bool
}

// newDevice reads the identification registers and builds a device record.
func newDevice(mgr *Manager, addr Address, acc *Accessor) (*Device, error) {
	vendor, err := acc.ReadField(FieldVendorID)
	if err != nil {
		return nil, errors.Wrapf(err, "read vendor id at %s", addr)
	}
	device, err := acc.ReadField(FieldDeviceID)
	if err != nil {
		return nil, errors.Wrapf(err, "read device id at %s", addr)
	}
	header, err := acc.ReadField(FieldHeaderType)
	if err != nil {
		return nil, errors.Wrapf(err, "read header type at %s", addr)
	}

	return &Device{
		mgr:        mgr,
		addr:       addr,
		acc:        acc,
		vendorID:   uint16(vendor),
		deviceID:   uint16(device),
		headerType: uint8(header),
	}, nil
}

// Address returns the device's bus/slot/function address.
func (d *Device) Address() Address {
	return d.addr
}

// VendorID returns the vendor identifier.
func (d *Device) VendorID() uint16 {
	return d.vendorID
}

// DeviceID returns the device identifier.
func (d *Device) DeviceID() uint16 {
	return d.deviceID
}

// HeaderType returns the raw header-type register value, including the
// multifunction bit.
func (d *Device) HeaderType() uint8 {
	return d.headerType
}

// IsBridge reports whether the function carries a bridge header
// (header kind 1 or 2).
func (d *Device) IsBridge() bool {
	kind := d.headerType & HeaderKindMask
	return kind == HeaderKindBridge || kind == HeaderKindCardBus
}

// SetACPINode attaches the firmware node resolved for this device.
// The attachment is assign-once.
func (d *Device) SetACPINode(node hal.ACPINode) error {
	if d.acpiNode != nil {
		return fmt.Errorf("acpi node at %s: %w", d.addr, pkg.ErrAlreadyAssigned)
	}
	d.acpiNode = node
	return nil
}

// ACPINode returns the attached firmware node, or nil if resolution never
// reached this device.
func (d *Device) ACPINode() hal.ACPINode {
	return d.acpiNode
}

// SetIRQVector assigns the routed interrupt vector. The assignment is
// assign-once; a failed second attempt leaves the first value intact.
func (d *Device) SetIRQVector(vector uint8) error {
	if d.irqAssigned {
		return fmt.Errorf("irq vector at %s: %w", d.addr, pkg.ErrAlreadyAssigned)
	}
	d.irqVector = vector
	d.irqAssigned = true
	return nil
}

// IRQVector returns the routed vector and whether one was assigned.
func (d *Device) IRQVector() (uint8, bool) {
	return d.irqVector, d.irqAssigned
}

// InterruptPin returns the interrupt-pin register: 1-4 select INTA#-INTD#,
// 0 means the function uses no interrupt.
func (d *Device) InterruptPin() (uint8, error) {
	pin, err := d.acc.ReadField(FieldInterruptPin)
	if err != nil {
		return 0, err
	}
	return uint8(pin), nil
}

// InterruptLine returns the legacy interrupt-line register.
func (d *Device) InterruptLine() (uint8, error) {
	line, err := d.acc.ReadField(FieldInterruptLine)
	if err != nil {
		return 0, err
	}
	return uint8(line), nil
}

// requireDeviceHeader fails unless the function carries a general device
// header.
func (d *Device) requireDeviceHeader() error {
	if d.IsBridge() {
		return fmt.Errorf("device-header access on bridge %s: %w", d.addr, pkg.ErrWrongDeviceKind)
	}
	return nil
}

// ClassCode returns the PCI base class code. Bridges reject the query.
func (d *Device) ClassCode() (uint8, error) {
	if err := d.requireDeviceHeader(); err != nil {
		return 0, err
	}
	class, err := d.acc.ReadField(FieldClassCode)
	if err != nil {
		return 0, err
	}
	return uint8(class), nil
}

// Subclass returns the PCI subclass code. Bridges reject the query.
func (d *Device) Subclass() (uint8, error) {
	if err := d.requireDeviceHeader(); err != nil {
		return 0, err
	}
	sub, err := d.acc.ReadField(FieldSubclass)
	if err != nil {
		return 0, err
	}
	return uint8(sub), nil
}

// SubsystemVendorID returns the subsystem vendor identifier. Bridges
// reject the query.
func (d *Device) SubsystemVendorID() (uint16, error) {
	if err := d.requireDeviceHeader(); err != nil {
		return 0, err
	}
	vendor, err := d.acc.ReadField(FieldSubsystemVendorID)
	if err != nil {
		return 0, err
	}
	return uint16(vendor), nil
}

// SubsystemID returns the subsystem device identifier. Bridges reject the
// query.
func (d *Device) SubsystemID() (uint16, error) {
	if err := d.requireDeviceHeader(); err != nil {
		return 0, err
	}
	id, err := d.acc.ReadField(FieldSubsystemID)
	if err != nil {
		return 0, err
	}
	return uint16(id), nil
}

// SecondaryBus returns the bus number on the downstream side of a bridge.
// Non-bridge functions reject the query.
func (d *Device) SecondaryBus() (uint8, error) {
	if !d.IsBridge() {
		return 0, fmt.Errorf("secondary bus on non-bridge %s: %w", d.addr, pkg.ErrWrongDeviceKind)
	}
	bus, err := d.acc.ReadField(FieldSecondaryBus)
	if err != nil {
		return 0, err
	}
	return uint8(bus), nil
}

// SubordinateBus returns the highest bus number reachable through a bridge.
// Non-bridge functions reject the query.
func (d *Device) SubordinateBus() (uint8, error) {
	if !d.IsBridge() {
		return 0, fmt.Errorf("subordinate bus on non-bridge %s: %w", d.addr, pkg.ErrWrongDeviceKind)
	}
	bus, err := d.acc.ReadField(FieldSubordinateBus)
	if err != nil {
		return 0, err
	}
	return uint8(bus), nil
}

// SetCommandFlag ORs a single bit into the command register with a
// read-modify-write cycle. This is a live hardware side effect; callers
// must externally serialize against concurrent writers of the same
// register.
func (d *Device) SetCommandFlag(flag uint16) error {
	command, err := d.acc.ReadField(FieldCommand)
	if err != nil {
		return err
	}
	return d.acc.WriteField(FieldCommand, command|uint32(flag))
}

// BARKind classifies a decoded base address register.
type BARKind uint8

// BAR kinds.
const (
	BARKindIO       BARKind = iota // I/O port window
	BARKindMemory32                // 32-bit memory window
	BARKindMemory64                // 64-bit memory window (unsupported)
)

// String returns a human-readable kind name.
func (k BARKind) String() string {
	switch k {
	case BARKindIO:
		return "io"
	case BARKindMemory32:
		return "mem32"
	case BARKindMemory64:
		return "mem64"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind name for JSON and YAML output.
func (k BARKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// BAR is one decoded base address register. For an I/O BAR the IO handle
// is set; for a 32-bit memory BAR the Memory handle is set. 64-bit memory
// BARs are reported with [BARKindMemory64] and carry no resource handle.
type BAR struct {
	Kind   BARKind          `json:"kind" yaml:"kind"`
	Base   uint32           `json:"base" yaml:"base"`
	Size   uint32           `json:"size" yaml:"size"`
	Memory hal.MemoryHandle `json:"-" yaml:"-"`
	IO     hal.IOHandle     `json:"-" yaml:"-"`
}

// Unsupported reports whether the BAR uses a layout the engine does not
// decode (64-bit memory).
func (b *BAR) Unsupported() bool {
	return b.Kind == BARKindMemory64
}

// Resource converts the BAR into the driver-facing resource form.
func (b *BAR) Resource() hal.BARResource {
	if b == nil {
		return hal.BARResource{}
	}
	return hal.BARResource{Memory: b.Memory, IO: b.IO}
}

// BAR decodes base address register index (0-5) with a non-destructive
// size probe: the register is read, overwritten with all ones, the size
// response is read back, and the original value is restored. The three
// steps form one critical section; no other accessor of the same
// function's configuration space may interleave.
//
// A nil BAR with a nil error means the register is absent (raw value 0,
// probed size 0, or an I/O BAR with base 0). Bridges reject BAR queries.
func (d *Device) BAR(index int) (*BAR, error) {
	if err := d.requireDeviceHeader(); err != nil {
		return nil, err
	}
	if index < 0 || index >= BARCount {
		return nil, fmt.Errorf("bar %d at %s: %w", index, d.addr, pkg.ErrInvalidBarIndex)
	}

	field := barFields[index]
	raw, err := d.acc.ReadField(field)
	if err != nil {
		return nil, err
	}
	if raw == 0 {
		return nil, nil
	}

	// Size probe critical section: all-ones write, size read, restore.
	if err := d.acc.WriteField(field, 0xFFFFFFFF); err != nil {
		return nil, err
	}
	response, err := d.acc.ReadField(field)
	if err != nil {
		return nil, err
	}
	if err := d.acc.WriteField(field, raw); err != nil {
		return nil, err
	}

	switch {
	case raw&0x1 != 0:
		// I/O space BAR: 16-bit port addressing.
		base := raw &^ 0x3
		size := (^(response &^ 0x3) + 1) & 0xFFFF
		if size == 0 || base == 0 {
			return nil, nil
		}
		return &BAR{
			Kind: BARKindIO,
			Base: base,
			Size: size,
			IO:   d.mgr.io.Subrange(uint16(base), uint16(base+size-1)),
		}, nil

	case raw&0x4 != 0:
		// 64-bit memory BAR. Reported but not decoded; no resource handle.
		return &BAR{
			Kind: BARKindMemory64,
			Base: raw & 0xFFFFFFF0,
		}, nil

	default:
		base := raw & 0xFFFFFFF0
		size := ^(response & 0xFFFFFFF0) + 1
		if size == 0 {
			return nil, nil
		}
		return &BAR{
			Kind:   BARKindMemory32,
			Base:   base,
			Size:   size,
			Memory: d.mgr.mem.Block(base, size),
		}, nil
	}
}
