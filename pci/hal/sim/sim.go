package sim

import (
	"github.com/jslinux/JsOs/pci/hal"
	"github.com/jslinux/JsOs/pkg"
)

// Configuration mechanism #1 port assignments mirrored by the machine.
const (
	addressPort = 0xCF8
	dataPort    = 0xCFC

	enableBit = 0x80000000
)

// configDwords is the number of 32-bit registers per function (256 bytes).
const configDwords = 64

// barCount is the number of base address registers in a device header.
const barCount = 6

// funcKey identifies one simulated function.
type funcKey struct {
	bus  uint8
	slot uint8
	fn   uint8
}

// Function is the register file of one simulated PCI function.
//
// A base address register configured with a probe response models the
// hardware size-encoding protocol: a 32-bit all-ones write latches the
// probe response instead of the written value, and any other write stores
// the value as-is, so the probe/restore sequence behaves like silicon.
type Function struct {
	regs     [configDwords]uint32
	barProbe [barCount]uint32
	barSized [barCount]bool
}

// SetRegister stores a raw configuration dword. The offset is truncated to
// its dword index.
func (f *Function) SetRegister(offset uint8, value uint32) {
	f.regs[offset>>2] = value
}

// Register returns a raw configuration dword.
func (f *Function) Register(offset uint8) uint32 {
	return f.regs[offset>>2]
}

// SetIdentity sets the vendor and device identifiers.
func (f *Function) SetIdentity(vendorID, deviceID uint16) {
	f.regs[0] = uint32(deviceID)<<16 | uint32(vendorID)
}

// SetClass sets the class-code dword: base class, subclass, programming
// interface, and revision.
func (f *Function) SetClass(class, subclass, progIF, revision uint8) {
	f.regs[0x08>>2] = uint32(class)<<24 | uint32(subclass)<<16 |
		uint32(progIF)<<8 | uint32(revision)
}

// SetHeaderType sets the header-type register, including the multifunction
// bit if desired.
func (f *Function) SetHeaderType(header uint8) {
	dword := f.regs[0x0C>>2]
	f.regs[0x0C>>2] = dword&^(0xFF<<16) | uint32(header)<<16
}

// SetInterrupt sets the interrupt line and pin registers.
func (f *Function) SetInterrupt(line, pin uint8) {
	dword := f.regs[0x3C>>2]
	f.regs[0x3C>>2] = dword&^0xFFFF | uint32(pin)<<8 | uint32(line)
}

// SetSubsystem sets the subsystem vendor and device identifiers.
func (f *Function) SetSubsystem(vendorID, deviceID uint16) {
	f.regs[0x2C>>2] = uint32(deviceID)<<16 | uint32(vendorID)
}

// SetSecondaryBus sets the bridge secondary-bus register.
func (f *Function) SetSecondaryBus(bus uint8) {
	dword := f.regs[0x18>>2]
	f.regs[0x18>>2] = dword&^(0xFF<<8) | uint32(bus)<<8
}

// SetBAR configures a base address register with its raw value and the
// size-encoding response returned for an all-ones probe write.
func (f *Function) SetBAR(index int, value, probeResponse uint32) {
	f.regs[(0x10+4*index)>>2] = value
	f.barProbe[index] = probeResponse
	f.barSized[index] = true
}

// writeDword stores a full dword, applying BAR size-probe emulation.
func (f *Function) writeDword(offset uint8, value uint32) {
	if offset >= 0x10 && offset < 0x10+4*barCount && offset&3 == 0 {
		index := (offset - 0x10) >> 2
		if f.barSized[index] && value == 0xFFFFFFFF {
			f.regs[offset>>2] = f.barProbe[index]
			return
		}
	}
	f.regs[offset>>2] = value
}

// Machine is a software model of the configuration port pair and the
// register files behind it. It implements [hal.PortIO].
//
// Reads of absent functions return all ones, so a vendor-id probe sees
// the 0xFFFF no-device sentinel.
type Machine struct {
	funcs map[funcKey]*Function
	latch uint32
}

// NewMachine creates an empty machine.
func NewMachine() *Machine {
	return &Machine{funcs: make(map[funcKey]*Function)}
}

// AddFunction creates the register file for a function address and
// returns it for configuration.
func (m *Machine) AddFunction(bus, slot, fn uint8) *Function {
	key := funcKey{bus: bus, slot: slot, fn: fn}
	f := &Function{}
	m.funcs[key] = f
	return f
}

// Function returns the register file at the given address, or nil.
func (m *Machine) Function(bus, slot, fn uint8) *Function {
	return m.funcs[funcKey{bus: bus, slot: slot, fn: fn}]
}

// target decodes the address latch into the selected function and dword
// offset. The function is nil when the latch is disabled or nothing is
// present at the decoded address.
func (m *Machine) target() (*Function, uint8) {
	if m.latch&enableBit == 0 {
		return nil, 0
	}
	key := funcKey{
		bus:  uint8(m.latch >> 16),
		slot: uint8(m.latch >> 11 & 0x1F),
		fn:   uint8(m.latch >> 8 & 0x7),
	}
	return m.funcs[key], uint8(m.latch & 0xFC)
}

// In8 implements [hal.PortIO].
func (m *Machine) In8(port uint16) uint8 {
	if port < dataPort || port > dataPort+3 {
		return 0xFF
	}
	f, offset := m.target()
	if f == nil {
		return 0xFF
	}
	return uint8(f.regs[offset>>2] >> (8 * (port - dataPort)))
}

// In16 implements [hal.PortIO].
func (m *Machine) In16(port uint16) uint16 {
	if port != dataPort && port != dataPort+2 {
		return 0xFFFF
	}
	f, offset := m.target()
	if f == nil {
		return 0xFFFF
	}
	return uint16(f.regs[offset>>2] >> (8 * (port - dataPort)))
}

// In32 implements [hal.PortIO].
func (m *Machine) In32(port uint16) uint32 {
	if port == addressPort {
		return m.latch
	}
	if port != dataPort {
		return 0xFFFFFFFF
	}
	f, offset := m.target()
	if f == nil {
		return 0xFFFFFFFF
	}
	return f.regs[offset>>2]
}

// Out8 implements [hal.PortIO].
func (m *Machine) Out8(port uint16, value uint8) {
	if port < dataPort || port > dataPort+3 {
		return
	}
	f, offset := m.target()
	if f == nil {
		return
	}
	shift := 8 * (port - dataPort)
	dword := f.regs[offset>>2]
	f.writeDword(offset, dword&^(0xFF<<shift)|uint32(value)<<shift)
}

// Out16 implements [hal.PortIO].
func (m *Machine) Out16(port uint16, value uint16) {
	if port != dataPort && port != dataPort+2 {
		return
	}
	f, offset := m.target()
	if f == nil {
		return
	}
	shift := 8 * (port - dataPort)
	dword := f.regs[offset>>2]
	f.writeDword(offset, dword&^(0xFFFF<<shift)|uint32(value)<<shift)
}

// Out32 implements [hal.PortIO].
func (m *Machine) Out32(port uint16, value uint32) {
	if port == addressPort {
		m.latch = value
		return
	}
	if port != dataPort {
		return
	}
	f, offset := m.target()
	if f == nil {
		pkg.LogDebug(pkg.ComponentSim, "write to absent function", "latch", m.latch)
		return
	}
	f.writeDword(offset, value)
}

// compile-time interface check
var _ hal.PortIO = (*Machine)(nil)
