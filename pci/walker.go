package pci

import (
	"github.com/pkg/errors"

	"github.com/jslinux/JsOs/pkg"
)

// DiscoveryFunc is invoked once for every present function during a bus
// walk. Returning an error aborts the walk.
type DiscoveryFunc func(addr Address, acc *Accessor) error

// Walk enumerates configuration space in ascending bus, slot, function
// order and invokes discover for every present function. Callers may rely
// on the ordering being deterministic.
//
// A slot is skipped entirely unless function 0 exists. When function 0's
// header-type register has the multifunction bit set, functions 0-7 are
// probed; otherwise only function 0 is reported.
func (p *AccessorProvider) Walk(discover DiscoveryFunc) error {
	for bus := 0; bus < MaxBus; bus++ {
		for slot := 0; slot <= MaxSlot; slot++ {
			if !p.Exists(uint8(bus), uint8(slot), 0) {
				continue
			}

			acc0, err := p.Get(Address{Bus: uint8(bus), Slot: uint8(slot)})
			if err != nil {
				return err
			}
			header, err := acc0.ReadField(FieldHeaderType)
			if err != nil {
				return errors.Wrapf(err, "read header type at %s", acc0.Address())
			}

			funcs := 1
			if header&HeaderTypeMultiFunction != 0 {
				funcs = MaxFunc + 1
			}

			for fn := 0; fn < funcs; fn++ {
				if fn > 0 && !p.Exists(uint8(bus), uint8(slot), uint8(fn)) {
					continue
				}
				addr := Address{Bus: uint8(bus), Slot: uint8(slot), Func: uint8(fn)}
				acc, err := p.Get(addr)
				if err != nil {
					return err
				}
				pkg.LogDebug(pkg.ComponentPCI, "function discovered", "address", addr.String())
				if err := discover(addr, acc); err != nil {
					return errors.Wrapf(err, "discover %s", addr)
				}
			}
		}
	}
	return nil
}
