package pci

import (
	"fmt"

	"github.com/jslinux/JsOs/pkg"
)

// Configuration-space topology limits.
const (
	MaxBus  = 255 // Highest bus number
	MaxSlot = 31  // Highest slot number
	MaxFunc = 7   // Highest function number
)

// Address identifies a single PCI function by bus, slot, and function
// number. It is a comparable value type usable directly as a map key.
type Address struct {
	Bus  uint8
	Slot uint8
	Func uint8
}

// NewAddress builds a validated address.
func NewAddress(bus, slot, fn uint8) (Address, error) {
	addr := Address{Bus: bus, Slot: slot, Func: fn}
	if err := addr.Validate(); err != nil {
		return Address{}, err
	}
	return addr, nil
}

// Validate checks the slot and function bounds. The bus number cannot
// exceed its range by construction.
func (a Address) Validate() error {
	if a.Slot > MaxSlot || a.Func > MaxFunc {
		return fmt.Errorf("bus %d slot %d func %d: %w",
			a.Bus, a.Slot, a.Func, pkg.ErrInvalidAddress)
	}
	return nil
}

// String renders the address in bus:device.function form, e.g. "00:02.0".
func (a Address) String() string {
	return fmt.Sprintf("%02x:%02x.%d", a.Bus, a.Slot, a.Func)
}
