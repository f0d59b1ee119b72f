package pciids

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// DefaultPaths lists the standard locations for the PCI ID database.
var DefaultPaths = []string{
	"/usr/share/hwdata/pci.ids",
	"/usr/share/misc/pci.ids",
	"/var/lib/pciutils/pci.ids",
}

// Database caches vendor and device names from the PCI ID database.
type Database struct {
	vendors map[uint16]string // vendor ID -> vendor name
	devices map[uint32]string // (vendor<<16)|device -> device name
	loaded  bool
	mu      sync.RWMutex
	paths   []string
}

// New creates a new PCI ID database that searches the default paths.
func New() *Database {
	return &Database{
		vendors: make(map[uint16]string),
		devices: make(map[uint32]string),
		paths:   DefaultPaths,
	}
}

// NewWithPaths creates a new PCI ID database that searches the specified paths.
func NewWithPaths(paths []string) *Database {
	return &Database{
		vendors: make(map[uint16]string),
		devices: make(map[uint32]string),
		paths:   paths,
	}
}

// Load parses the PCI ID database file. This method is idempotent -
// subsequent calls do nothing if the database is already loaded.
//
// Returns true if the database was loaded (or already loaded), false if no
// database file could be found.
func (db *Database) Load() bool {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.loaded {
		return true
	}

	for _, path := range db.paths {
		file, err := os.Open(path)
		if err == nil {
			defer file.Close()
			db.parseDatabase(file)
			db.loaded = true
			return true
		}
	}

	// Mark as loaded even if file not found to prevent repeated searches
	db.loaded = true
	return false
}

// LoadFrom parses the PCI ID database from the given reader, replacing any
// previously loaded entries. Useful for embedding a database snapshot.
func (db *Database) LoadFrom(r io.Reader) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.parseDatabase(r)
	db.loaded = true
}

// parseDatabase parses the PCI ID database format: vendor lines at the
// left margin, device lines indented by one tab, and subsystem lines by
// two. Class sections start with "C " and are skipped; vendor/device
// lookups never match them.
func (db *Database) parseDatabase(r io.Reader) {
	scanner := bufio.NewScanner(r)
	var currentVendor uint16
	inVendor := false

	for scanner.Scan() {
		line := scanner.Text()

		// Skip empty lines and comments
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		if strings.HasPrefix(line, "\t\t") {
			// Subsystem line - not indexed
			continue
		}

		if line[0] == '\t' {
			// Device line: "\txxxx  Device Name"
			if !inVendor {
				continue
			}
			line = line[1:]
			if len(line) < 6 {
				continue
			}
			id, err := strconv.ParseUint(line[:4], 16, 16)
			if err != nil {
				continue
			}
			if line[4] == ' ' {
				name := strings.TrimLeft(line[5:], " ")
				key := (uint32(currentVendor) << 16) | uint32(id)
				db.devices[key] = name
			}
			continue
		}

		if strings.HasPrefix(line, "C ") {
			// Class section: everything until the next vendor line
			// describes class/subclass codes.
			inVendor = false
			continue
		}

		if len(line) >= 6 {
			// Vendor line: "xxxx  Vendor Name"
			id, err := strconv.ParseUint(line[:4], 16, 16)
			if err != nil {
				inVendor = false
				continue
			}
			currentVendor = uint16(id)
			inVendor = true
			if line[4] == ' ' {
				name := strings.TrimLeft(line[5:], " ")
				db.vendors[currentVendor] = name
			}
		}
	}
}

// LookupVendor returns the vendor name for the given vendor ID.
// Returns an empty string if the vendor is not found or if the database
// has not been loaded.
func (db *Database) LookupVendor(vendorID uint16) string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.vendors[vendorID]
}

// LookupDevice returns the device name for the given vendor/device pair.
// Returns an empty string if the device is not found or if the database
// has not been loaded.
func (db *Database) LookupDevice(vendorID, deviceID uint16) string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	key := (uint32(vendorID) << 16) | uint32(deviceID)
	return db.devices[key]
}

// IsLoaded returns true if the database has been loaded (or load was attempted).
func (db *Database) IsLoaded() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.loaded
}

// VendorCount returns the number of vendors in the database.
func (db *Database) VendorCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.vendors)
}

// DeviceCount returns the number of devices in the database.
func (db *Database) DeviceCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.devices)
}
