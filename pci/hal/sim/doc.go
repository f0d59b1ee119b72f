// Package sim provides a software model of the PCI configuration
// mechanism for testing and offline inspection.
//
// The [Machine] implements [github.com/jslinux/JsOs/pci/hal.PortIO] with
// an address latch and per-function register files, including BAR
// size-probe emulation: an all-ones write to a sized base address register
// latches its size-encoding response, and restoring the original value
// behaves like real silicon. Reads of absent functions return all ones,
// so vendor-id probes see the no-device sentinel.
//
// Simulated resource ranges ([MemoryRange], [IORange], [IRQRange]), a bump
// allocator, and an ACPI tree ([Firmware], [Node]) complete the backend,
// so the whole enumeration pipeline runs without hardware:
//
//	machine := sim.NewMachine()
//	f := machine.AddFunction(0, 2, 0)
//	f.SetIdentity(0x8086, 0x100E)
//	f.SetClass(0x02, 0x00, 0x00, 0x03)
//	f.SetBAR(0, 0xFE000000, 0xFFF00000)
//
// Whole machines can also be described declaratively in YAML and built
// with [LoadSnapshot] or [ParseSnapshot]:
//
//	functions:
//	  - bus: 0
//	    slot: 2
//	    func: 0
//	    vendor: 0x8086
//	    device: 0x100E
//	    class: 0x02
//	    pin: 1
//	    bars:
//	      - index: 0
//	        value: 0xFE000000
//	        probe: 0xFFF00000
//	acpi:
//	  - rootBridge: true
//	    bus: 0
//	    routing:
//	      - slot: 2
//	        pin: 0
//	        irq: 11
package sim
