// Package pciids provides access to the PCI ID database for looking up
// vendor and device names.
//
// The PCI ID database is a standard file maintained by the PCI ID project
// and distributed with most Linux systems. It maps PCI vendor and device
// identifiers to human-readable names.
//
// This package automatically searches common database locations and
// provides efficient cached lookups.
//
// # Usage
//
// Load the database once at startup:
//
//	db := pciids.New()
//	db.Load()
//
// Then look up vendor and device names:
//
//	vendorName := db.LookupVendor(0x8086)
//	deviceName := db.LookupDevice(0x8086, 0x100E)
//
// # Database Locations
//
// The package searches for the PCI ID database in these locations:
//
//   - /usr/share/hwdata/pci.ids
//   - /usr/share/misc/pci.ids
//   - /var/lib/pciutils/pci.ids
//
// If the database file is not found, lookup methods return empty strings.
//
// # Thread Safety
//
// All methods are safe for concurrent use. The database uses read-write
// locks to allow concurrent lookups while protecting against concurrent
// loads.
package pciids
