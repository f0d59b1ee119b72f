package hal

// PortIO provides raw access to the x86 I/O port space.
//
// The PCI configuration mechanism uses a shared address/data port pair:
// an address-select write to the address port immediately followed by the
// corresponding data port access forms one indivisible critical section.
// The enumeration engine issues both halves back to back on a single
// goroutine; implementations are not required to lock, but no other thread
// of control may touch the pair while an access is in flight or results
// are corrupted.
type PortIO interface {
	// In8 reads a byte from the given port.
	In8(port uint16) uint8

	// In16 reads a 16-bit word from the given port.
	In16(port uint16) uint16

	// In32 reads a 32-bit dword from the given port.
	In32(port uint16) uint32

	// Out8 writes a byte to the given port.
	Out8(port uint16, value uint8)

	// Out16 writes a 16-bit word to the given port.
	Out16(port uint16, value uint16)

	// Out32 writes a 32-bit dword to the given port.
	Out32(port uint16, value uint32)
}

// MemoryHandle is a claimed physical memory window.
type MemoryHandle interface {
	// Base returns the physical base address of the window.
	Base() uint32

	// Size returns the window size in bytes.
	Size() uint32

	// Read8 reads a byte at the given offset into the window.
	Read8(offset uint32) uint8

	// Read16 reads a 16-bit word at the given offset.
	Read16(offset uint32) uint16

	// Read32 reads a 32-bit dword at the given offset.
	Read32(offset uint32) uint32

	// Write8 writes a byte at the given offset.
	Write8(offset uint32, value uint8)

	// Write16 writes a 16-bit word at the given offset.
	Write16(offset uint32, value uint16)

	// Write32 writes a 32-bit dword at the given offset.
	Write32(offset uint32, value uint32)
}

// IOHandle is a claimed I/O port window.
type IOHandle interface {
	// Base returns the first port of the window.
	Base() uint16

	// End returns the last port of the window, inclusive.
	End() uint16

	// Read8 reads a byte at the given offset into the window.
	Read8(offset uint16) uint8

	// Read16 reads a 16-bit word at the given offset.
	Read16(offset uint16) uint16

	// Read32 reads a 32-bit dword at the given offset.
	Read32(offset uint16) uint32

	// Write8 writes a byte at the given offset.
	Write8(offset uint16, value uint8)

	// Write16 writes a 16-bit word at the given offset.
	Write16(offset uint16, value uint16)

	// Write32 writes a 32-bit dword at the given offset.
	Write32(offset uint16, value uint32)
}

// IRQHandle is a claimed platform interrupt vector.
type IRQHandle interface {
	// Vector returns the interrupt vector number.
	Vector() uint8
}

// MemoryRange hands out physical memory windows.
type MemoryRange interface {
	// Block claims the window [base, base+size).
	Block(base, size uint32) MemoryHandle
}

// IORange hands out I/O port windows.
type IORange interface {
	// Port claims a single port.
	Port(n uint16) IOHandle

	// Subrange claims the port window [base, end], inclusive.
	Subrange(base, end uint16) IOHandle
}

// IRQRange hands out interrupt vectors.
type IRQRange interface {
	// IRQ claims the given vector.
	IRQ(vector uint8) IRQHandle
}

// Allocator hands out memory blocks shared with driver modules
// (e.g. for DMA descriptor rings).
type Allocator interface {
	// Allocate returns a zeroed block of at least size bytes with the
	// given power-of-two alignment.
	Allocate(size, align uint32) (MemoryHandle, error)
}

// IRQRoute is one entry of a per-bus ACPI interrupt routing table.
// Pin is 0-based (0 = INTA# through 3 = INTD#), unlike the 1-based
// configuration-space interrupt-pin register.
type IRQRoute struct {
	SlotID uint8 // Device slot the entry applies to
	Pin    uint8 // 0-based interrupt pin (A-D)
	IRQ    uint8 // Platform interrupt vector
}

// ACPINode is a firmware-described topology node. Nodes are used to recover
// bus numbering and interrupt routing that configuration space alone cannot
// provide.
type ACPINode interface {
	// IsDevice reports whether the node describes a device.
	IsDevice() bool

	// IsRootBridge reports whether the node describes a PCI root bridge.
	IsRootBridge() bool

	// Address returns the ACPI _ADR encoding: slot in the high 16 bits,
	// function in the low 16 bits.
	Address() uint32

	// Parent returns the parent node, or nil at the tree root.
	Parent() ACPINode

	// RootBridgeBusNumber returns the bus number the root bridge decodes.
	// Only meaningful when IsRootBridge reports true.
	RootBridgeBusNumber() uint8

	// IRQRoutingTable returns the interrupt routing entries for the bus
	// behind this node, or nil if the firmware provides none.
	IRQRoutingTable() []IRQRoute
}

// ACPI exposes the firmware device tree.
type ACPI interface {
	// PCIDevices returns all PCI-related device nodes in the firmware tree.
	PCIDevices() []ACPINode
}

// DriverMatch describes a driver module registered for a vendor/device pair.
type DriverMatch struct {
	Driver    Driver // Driver entry point
	Enabled   bool   // Disabled matches are skipped during dispatch
	BusMaster bool   // Enable bus mastering before invocation
}

// DriverRegistry maps vendor/device pairs to driver modules.
type DriverRegistry interface {
	// Lookup returns the driver match for the given vendor and device IDs.
	Lookup(vendorID, deviceID uint16) (DriverMatch, bool)
}

// DeviceClass carries the class and subsystem identification handed to a
// driver at attach time.
type DeviceClass struct {
	ClassCode       uint8  // PCI base class code
	Subclass        uint8  // PCI subclass code
	ClassName       string // Human-readable base class name
	SubsystemVendor uint16 // Subsystem vendor ID
	SubsystemID     uint16 // Subsystem device ID
}

// Resources is the bundle of resolved hardware resources handed to a driver
// entry point. BAR handles are index-aligned with the configuration-space
// registers; absent BARs are nil. IRQ is nil when no vector was routed.
type Resources struct {
	BARs      [6]BARResource // Decoded base address registers
	IRQ       IRQHandle      // Routed interrupt, or nil
	Class     DeviceClass    // Class and subsystem identification
	Allocator Allocator      // Shared allocator for driver memory
}

// BARResource is one decoded base address register as seen by a driver.
// Exactly one of Memory and IO is non-nil for a usable BAR; both are nil
// for absent or unsupported (64-bit) BARs.
type BARResource struct {
	Memory MemoryHandle
	IO     IOHandle
}

// Present reports whether the BAR carries a usable resource handle.
func (b BARResource) Present() bool {
	return b.Memory != nil || b.IO != nil
}

// Driver is the entry point contract for a driver module.
//
// Attach is fire-and-forget from the dispatcher's perspective: the engine's
// responsibility ends once resources are resolved and, if requested, bus
// mastering is enabled. Failures during driver startup stay inside the
// driver; they are neither caught nor retried by the dispatcher.
type Driver interface {
	// Attach hands the resolved resources to the driver.
	Attach(res *Resources)
}
