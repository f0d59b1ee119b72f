package pciids

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleDatabase = `# Test PCI IDs
8086  Intel Corporation
	100e  82540EM Gigabit Ethernet Controller
		8086 001e  PRO/1000 MT Desktop Adapter
	100f  82545EM Gigabit Ethernet Controller
10de  NVIDIA Corporation
	0020  NV4 [Riva TNT]
C 02  Network controller
	00  Ethernet controller
	80  Network controller
`

// TestNew verifies that New() creates a Database with default paths.
func TestNew(t *testing.T) {
	db := New()
	if db == nil {
		t.Fatal("New() returned nil")
	}
	if len(db.paths) != len(DefaultPaths) {
		t.Errorf("Expected %d paths, got %d", len(DefaultPaths), len(db.paths))
	}
	if db.vendors == nil || db.devices == nil {
		t.Error("Database maps not initialized")
	}
}

// TestNewWithPaths verifies that NewWithPaths() creates a Database with custom paths.
func TestNewWithPaths(t *testing.T) {
	customPaths := []string{"/custom/path1", "/custom/path2"}
	db := NewWithPaths(customPaths)
	if db == nil {
		t.Fatal("NewWithPaths() returned nil")
	}
	if len(db.paths) != len(customPaths) {
		t.Errorf("Expected %d paths, got %d", len(customPaths), len(db.paths))
	}
	for i, path := range db.paths {
		if path != customPaths[i] {
			t.Errorf("Path %d: expected %q, got %q", i, customPaths[i], path)
		}
	}
}

// TestLoad_FileNotFound verifies that Load() handles missing files gracefully.
func TestLoad_FileNotFound(t *testing.T) {
	db := NewWithPaths([]string{"/nonexistent/path/pci.ids"})
	loaded := db.Load()
	if loaded {
		t.Error("Load() should return false when file not found")
	}
	if !db.IsLoaded() {
		t.Error("IsLoaded() should return true after Load() attempt")
	}
}

// TestLoad_Idempotent verifies that Load() is idempotent.
func TestLoad_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "pci.ids")
	if err := os.WriteFile(testFile, []byte(sampleDatabase), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	db := NewWithPaths([]string{testFile})

	if !db.Load() {
		t.Fatal("first Load() failed")
	}
	count := db.VendorCount()

	if !db.Load() {
		t.Fatal("second Load() failed")
	}
	if db.VendorCount() != count {
		t.Errorf("VendorCount changed after second Load: %d != %d", db.VendorCount(), count)
	}
}

// TestLookupVendor verifies vendor name lookups.
func TestLookupVendor(t *testing.T) {
	db := New()
	db.LoadFrom(strings.NewReader(sampleDatabase))

	tests := []struct {
		vendorID uint16
		want     string
	}{
		{0x8086, "Intel Corporation"},
		{0x10DE, "NVIDIA Corporation"},
		{0xFFFF, ""},
	}

	for _, tt := range tests {
		if got := db.LookupVendor(tt.vendorID); got != tt.want {
			t.Errorf("LookupVendor(%#04x) = %q, want %q", tt.vendorID, got, tt.want)
		}
	}
}

// TestLookupDevice verifies device name lookups.
func TestLookupDevice(t *testing.T) {
	db := New()
	db.LoadFrom(strings.NewReader(sampleDatabase))

	tests := []struct {
		vendorID uint16
		deviceID uint16
		want     string
	}{
		{0x8086, 0x100E, "82540EM Gigabit Ethernet Controller"},
		{0x8086, 0x100F, "82545EM Gigabit Ethernet Controller"},
		{0x10DE, 0x0020, "NV4 [Riva TNT]"},
		{0x8086, 0x0020, ""}, // NVIDIA device ID under the wrong vendor
		{0x1234, 0x100E, ""},
	}

	for _, tt := range tests {
		if got := db.LookupDevice(tt.vendorID, tt.deviceID); got != tt.want {
			t.Errorf("LookupDevice(%#04x, %#04x) = %q, want %q",
				tt.vendorID, tt.deviceID, got, tt.want)
		}
	}
}

// TestClassSection verifies that class sections do not pollute vendor or
// device lookups.
func TestClassSection(t *testing.T) {
	db := New()
	db.LoadFrom(strings.NewReader(sampleDatabase))

	if got := db.LookupVendor(0x0002); got != "" {
		t.Errorf("class section leaked into vendors: %q", got)
	}
	// The "\t00  Ethernet controller" line under "C 02" must not become a
	// device of the previously parsed vendor.
	if got := db.LookupDevice(0x10DE, 0x0000); got != "" {
		t.Errorf("class section leaked into devices: %q", got)
	}
}

// TestCounts verifies vendor and device counts.
func TestCounts(t *testing.T) {
	db := New()
	db.LoadFrom(strings.NewReader(sampleDatabase))

	if got := db.VendorCount(); got != 2 {
		t.Errorf("VendorCount() = %d, want 2", got)
	}
	if got := db.DeviceCount(); got != 3 {
		t.Errorf("DeviceCount() = %d, want 3", got)
	}
}
