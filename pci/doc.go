// Package pci implements a platform-agnostic PCI configuration-space
// enumeration and resource-binding engine.
//
// It interacts with hardware exclusively through the contracts defined in
// [github.com/jslinux/JsOs/pci/hal]: the configuration address/data port
// pair, resource range providers, the ACPI firmware tree, and the external
// driver registry.
//
// # Architecture
//
// The engine is organized into layers matching the boot-time data flow:
//
//   - AccessorProvider memoizes per-function field accessors over the
//     configuration port protocol
//   - Walk enumerates all bus/slot/function addresses in deterministic order
//   - Manager owns the device registry and runs the boot pipeline
//   - ResolveACPINode recovers bus topology from the firmware tree
//   - Interrupt routing matches ACPI tables against device pins
//   - Driver dispatch decodes BARs and hands resolved resources to
//     matched driver modules
//
// # Boot Sequence
//
// Everything is built in a single synchronous boot-time pass; the registry
// lives for the process lifetime and is never pruned (no hot-plug):
//
//	mgr := pci.NewManager(pci.Config{
//	    Ports:  ports,
//	    Memory: memoryRange,
//	    IO:     ioRange,
//	    IRQ:    irqRange,
//	    ACPI:   firmware,
//	})
//	if err := mgr.Boot(); err != nil {
//	    // logic or hardware-description defect; no partial registry
//	}
//	devices, err := mgr.ListDevices()
//
// # Error Model
//
// Alignment, bounds, and duplicate-registration violations are fatal to the
// enumeration pass. ACPI resolution failures are local: the affected device
// stays without a firmware handle or routed IRQ and the pipeline proceeds.
// Driver startup failures are outside the engine's responsibility.
//
// # Unsupported Layouts
//
// 64-bit memory BARs are reported as tagged unsupported results with no
// resource handle. PCIe extended configuration space, MSI/MSI-X delivery,
// and hot-plug are out of scope.
package pci
