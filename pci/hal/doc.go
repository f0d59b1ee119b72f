// Package hal defines the hardware abstraction contracts consumed by the
// PCI enumeration engine.
//
// The engine itself is platform-agnostic: everything it needs from the
// machine is expressed as an interface in this package, allowing a real
// port-I/O backend in a kernel build and a simulated backend in tests.
//
// # Contracts
//
//   - [PortIO]: the raw x86 I/O port space carrying the configuration
//     address/data port pair
//   - [MemoryRange], [IORange], [IRQRange]: providers of claimed resource
//     handles for decoded BARs and routed interrupts
//   - [ACPI], [ACPINode]: the firmware device tree used to recover bus
//     topology and interrupt routing
//   - [DriverRegistry], [Driver]: the external driver catalog and the
//     entry-point contract resources are dispatched to
//
// # Critical Sections
//
// The configuration address/data port pair is shared global hardware state.
// Every configuration access is an indivisible address-select write followed
// by the matching data access; BAR probing additionally forms a multi-step
// critical section (write all-ones, read the size response, restore the
// original value). The engine runs single-threaded at boot and issues these
// sequences without suspension, so implementations need no internal locking.
//
// A simulated backend for testing is available in
// [github.com/jslinux/JsOs/pci/hal/sim].
package hal
