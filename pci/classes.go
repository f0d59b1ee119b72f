package pci

// classNames maps PCI base class codes to human-readable names.
var classNames = map[uint8]string{
	0x00: "Unclassified",
	0x01: "Mass Storage Controller",
	0x02: "Network Controller",
	0x03: "Display Controller",
	0x04: "Multimedia Controller",
	0x05: "Memory Controller",
	0x06: "Bridge",
	0x07: "Communication Controller",
	0x08: "Base System Peripheral",
	0x09: "Input Device Controller",
	0x0A: "Docking Station",
	0x0B: "Processor",
	0x0C: "Serial Bus Controller",
	0x0D: "Wireless Controller",
	0x0E: "Intelligent Controller",
	0x0F: "Satellite Communications Controller",
	0x10: "Encryption Controller",
	0x11: "Signal Processing Controller",
	0x12: "Processing Accelerator",
	0x13: "Non-Essential Instrumentation",
	0x40: "Coprocessor",
}

// ClassName returns the human-readable name for a PCI base class code.
func ClassName(code uint8) string {
	if name, ok := classNames[code]; ok {
		return name
	}
	return "Unknown"
}
