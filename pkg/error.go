package pkg

import "errors"

// PCI configuration-space protocol errors.
//
// Alignment, bounds, and registration violations signal a logic or hardware
// description defect: the enumeration pass treats them as fatal and aborts
// rather than building a partial device registry.
var (
	// ErrAlignment indicates a configuration-space access that is not
	// naturally aligned to its width.
	ErrAlignment = errors.New("misaligned configuration access")

	// ErrInvalidAddress indicates a bus/slot/function triple outside the
	// valid configuration-space range.
	ErrInvalidAddress = errors.New("invalid pci address")

	// ErrInvalidFieldMask indicates a field mask that is not one of the
	// supported access widths (0xFF, 0xFFFF, 0xFFFFFFFF).
	ErrInvalidFieldMask = errors.New("invalid field mask")

	// ErrInvalidBarIndex indicates a base address register index outside 0-5.
	ErrInvalidBarIndex = errors.New("invalid bar index")

	// ErrWrongDeviceKind indicates an accessor called against an
	// incompatible header kind (e.g. a BAR query on a bridge, or a
	// secondary-bus query on a regular device).
	ErrWrongDeviceKind = errors.New("wrong device kind")

	// ErrDuplicateDevice indicates a registry collision on a PCI address.
	ErrDuplicateDevice = errors.New("duplicate pci device")

	// ErrAlreadyAssigned indicates a second assignment attempt on an
	// assign-once field (ACPI handle or IRQ vector).
	ErrAlreadyAssigned = errors.New("already assigned")

	// ErrUnresolvableACPI indicates an ACPI device node whose ancestry
	// cannot be mapped to a PCI address. Resolution failures are local:
	// the affected device is left without an ACPI handle or routed IRQ
	// and enumeration proceeds.
	ErrUnresolvableACPI = errors.New("unresolvable acpi mapping")

	// ErrNotFound indicates a registry lookup miss.
	ErrNotFound = errors.New("device not found")
)
