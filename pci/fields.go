package pci

// Field locates a named register within a 32-bit-aligned configuration
// dword. Offset selects the dword, Shift is the byte offset within it, and
// Mask selects the access width (0xFF, 0xFFFF, or 0xFFFFFFFF).
type Field struct {
	Offset uint8  // Dword-aligned byte offset into configuration space
	Shift  uint8  // Byte offset within the dword
	Mask   uint32 // Field width mask
}

// Fields common to every header kind.
var (
	FieldVendorID      = Field{Offset: 0x00, Shift: 0, Mask: 0xFFFF}
	FieldDeviceID      = Field{Offset: 0x00, Shift: 2, Mask: 0xFFFF}
	FieldCommand       = Field{Offset: 0x04, Shift: 0, Mask: 0xFFFF}
	FieldStatus        = Field{Offset: 0x04, Shift: 2, Mask: 0xFFFF}
	FieldRevisionID    = Field{Offset: 0x08, Shift: 0, Mask: 0xFF}
	FieldProgIF        = Field{Offset: 0x08, Shift: 1, Mask: 0xFF}
	FieldSubclass      = Field{Offset: 0x08, Shift: 2, Mask: 0xFF}
	FieldClassCode     = Field{Offset: 0x08, Shift: 3, Mask: 0xFF}
	FieldCacheLineSize = Field{Offset: 0x0C, Shift: 0, Mask: 0xFF}
	FieldLatencyTimer  = Field{Offset: 0x0C, Shift: 1, Mask: 0xFF}
	FieldHeaderType    = Field{Offset: 0x0C, Shift: 2, Mask: 0xFF}
	FieldBIST          = Field{Offset: 0x0C, Shift: 3, Mask: 0xFF}
	FieldInterruptLine = Field{Offset: 0x3C, Shift: 0, Mask: 0xFF}
	FieldInterruptPin  = Field{Offset: 0x3C, Shift: 1, Mask: 0xFF}
)

// Fields specific to the general device header (type 0).
var (
	FieldBAR0              = Field{Offset: 0x10, Shift: 0, Mask: 0xFFFFFFFF}
	FieldBAR1              = Field{Offset: 0x14, Shift: 0, Mask: 0xFFFFFFFF}
	FieldBAR2              = Field{Offset: 0x18, Shift: 0, Mask: 0xFFFFFFFF}
	FieldBAR3              = Field{Offset: 0x1C, Shift: 0, Mask: 0xFFFFFFFF}
	FieldBAR4              = Field{Offset: 0x20, Shift: 0, Mask: 0xFFFFFFFF}
	FieldBAR5              = Field{Offset: 0x24, Shift: 0, Mask: 0xFFFFFFFF}
	FieldSubsystemVendorID = Field{Offset: 0x2C, Shift: 0, Mask: 0xFFFF}
	FieldSubsystemID       = Field{Offset: 0x2C, Shift: 2, Mask: 0xFFFF}
)

// Fields specific to the bridge headers (types 1 and 2).
var (
	FieldPrimaryBus     = Field{Offset: 0x18, Shift: 0, Mask: 0xFF}
	FieldSecondaryBus   = Field{Offset: 0x18, Shift: 1, Mask: 0xFF}
	FieldSubordinateBus = Field{Offset: 0x18, Shift: 2, Mask: 0xFF}
)

// barFields indexes the base address register fields 0-5.
var barFields = [BARCount]Field{
	FieldBAR0, FieldBAR1, FieldBAR2, FieldBAR3, FieldBAR4, FieldBAR5,
}

// BARCount is the number of base address registers in a general device header.
const BARCount = 6

// Header-type register bits.
const (
	// HeaderTypeMultiFunction flags a multifunction device in function 0's
	// header-type register.
	HeaderTypeMultiFunction = 0x80

	// HeaderKindMask selects the header kind from the header-type register.
	HeaderKindMask = 0x7F

	// Header kinds.
	HeaderKindDevice  = 0x00 // General device header
	HeaderKindBridge  = 0x01 // PCI-to-PCI bridge header
	HeaderKindCardBus = 0x02 // CardBus bridge header
)

// Command register bits.
const (
	CommandIOSpace          uint16 = 1 << 0  // Respond to I/O space accesses
	CommandMemorySpace      uint16 = 1 << 1  // Respond to memory space accesses
	CommandBusMaster        uint16 = 1 << 2  // Allow bus mastering
	CommandInterruptDisable uint16 = 1 << 10 // Disable legacy interrupt assertion
)

// VendorInvalid is the vendor-id sentinel meaning no device is present.
const VendorInvalid = 0xFFFF
