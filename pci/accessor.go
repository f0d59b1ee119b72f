package pci

import (
	"fmt"

	"github.com/jslinux/JsOs/pci/hal"
	"github.com/jslinux/JsOs/pkg"
)

// Configuration mechanism #1 port assignments.
const (
	AddressPort = 0xCF8 // Address-select port
	DataPort    = 0xCFC // Data port (dword-wide window)

	enableBit = 0x80000000
)

// configAddress composes the address-select value for a function's
// configuration dword.
func configAddress(addr Address, offset uint8) uint32 {
	return enableBit |
		uint32(addr.Bus)<<16 |
		uint32(addr.Slot)<<11 |
		uint32(addr.Func)<<8 |
		uint32(offset&0xFC)
}

// Accessor reads and writes named configuration fields of a single PCI
// function. It keeps a per-offset cache of the last raw dword read; any
// write to an offset evicts that offset's entry before the hardware write
// is issued, so interleaved field accesses never observe stale data.
//
// Accessors are created through an [AccessorProvider] and are memoized:
// an equal address always yields the same instance.
type Accessor struct {
	addr  Address
	ports hal.PortIO
	cache map[uint8]uint32
}

// AccessorProvider is the memoizing accessor factory for one configuration
// port pair. It owns the accessor cache; constructing a provider over a
// simulated [hal.PortIO] yields a fully software-testable engine.
type AccessorProvider struct {
	ports     hal.PortIO
	accessors map[Address]*Accessor
}

// NewAccessorProvider creates an accessor factory over the given port space.
func NewAccessorProvider(ports hal.PortIO) *AccessorProvider {
	return &AccessorProvider{
		ports:     ports,
		accessors: make(map[Address]*Accessor),
	}
}

// Get returns the accessor for the given address, creating it on first use.
// Repeated calls with an equal address return the same instance.
func (p *AccessorProvider) Get(addr Address) (*Accessor, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	if acc, ok := p.accessors[addr]; ok {
		return acc, nil
	}
	acc := &Accessor{
		addr:  addr,
		ports: p.ports,
		cache: make(map[uint8]uint32),
	}
	p.accessors[addr] = acc
	return acc, nil
}

// Exists reports whether a function is present at the given address.
// The probe reads the vendor-id register directly from hardware, bypassing
// any accessor cache; a reading of 0xFFFF means no device.
func (p *AccessorProvider) Exists(bus, slot, fn uint8) bool {
	addr := Address{Bus: bus, Slot: slot, Func: fn}
	if addr.Validate() != nil {
		return false
	}
	p.ports.Out32(AddressPort, configAddress(addr, 0))
	return p.ports.In16(DataPort) != VendorInvalid
}

// Address returns the function address this accessor is bound to.
func (a *Accessor) Address() Address {
	return a.addr
}

// Read8 reads a byte from configuration space, uncached.
func (a *Accessor) Read8(offset uint8) uint8 {
	a.ports.Out32(AddressPort, configAddress(a.addr, offset))
	return a.ports.In8(DataPort + uint16(offset&3))
}

// Read16 reads a 16-bit word from configuration space, uncached.
// The offset must be 2-byte aligned.
func (a *Accessor) Read16(offset uint8) (uint16, error) {
	if offset&1 != 0 {
		return 0, fmt.Errorf("%s offset %#x width 2: %w", a.addr, offset, pkg.ErrAlignment)
	}
	a.ports.Out32(AddressPort, configAddress(a.addr, offset))
	return a.ports.In16(DataPort + uint16(offset&2)), nil
}

// Read32 reads a 32-bit dword from configuration space, uncached.
// The offset must be 4-byte aligned.
func (a *Accessor) Read32(offset uint8) (uint32, error) {
	if offset&3 != 0 {
		return 0, fmt.Errorf("%s offset %#x width 4: %w", a.addr, offset, pkg.ErrAlignment)
	}
	a.ports.Out32(AddressPort, configAddress(a.addr, offset))
	return a.ports.In32(DataPort), nil
}

// Write8 writes a byte to configuration space.
func (a *Accessor) Write8(offset uint8, value uint8) {
	a.ports.Out32(AddressPort, configAddress(a.addr, offset))
	a.ports.Out8(DataPort+uint16(offset&3), value)
}

// Write16 writes a 16-bit word to configuration space.
// The offset must be 2-byte aligned.
func (a *Accessor) Write16(offset uint8, value uint16) error {
	if offset&1 != 0 {
		return fmt.Errorf("%s offset %#x width 2: %w", a.addr, offset, pkg.ErrAlignment)
	}
	a.ports.Out32(AddressPort, configAddress(a.addr, offset))
	a.ports.Out16(DataPort+uint16(offset&2), value)
	return nil
}

// Write32 writes a 32-bit dword to configuration space.
// The offset must be 4-byte aligned.
func (a *Accessor) Write32(offset uint8, value uint32) error {
	if offset&3 != 0 {
		return fmt.Errorf("%s offset %#x width 4: %w", a.addr, offset, pkg.ErrAlignment)
	}
	a.ports.Out32(AddressPort, configAddress(a.addr, offset))
	a.ports.Out32(DataPort, value)
	return nil
}

// ReadField reads a named field. The containing dword is fetched from the
// per-offset cache when available, otherwise read from hardware and cached.
func (a *Accessor) ReadField(f Field) (uint32, error) {
	dword, ok := a.cache[f.Offset]
	if !ok {
		var err error
		dword, err = a.Read32(f.Offset)
		if err != nil {
			return 0, err
		}
		a.cache[f.Offset] = dword
	}
	return (dword >> (8 * uint32(f.Shift))) & f.Mask, nil
}

// WriteField writes a named field. The cached dword for the field's offset
// is evicted before the hardware write is issued, so a subsequent read
// through any field of the same dword fetches fresh data. The access width
// is dispatched on the field mask; masks other than 0xFF, 0xFFFF, and
// 0xFFFFFFFF are rejected.
func (a *Accessor) WriteField(f Field, value uint32) error {
	delete(a.cache, f.Offset)
	switch f.Mask {
	case 0xFF:
		a.Write8(f.Offset+f.Shift, uint8(value))
		return nil
	case 0xFFFF:
		return a.Write16(f.Offset+f.Shift, uint16(value))
	case 0xFFFFFFFF:
		return a.Write32(f.Offset, value)
	default:
		return fmt.Errorf("mask %#x: %w", f.Mask, pkg.ErrInvalidFieldMask)
	}
}
