// Command pciscan runs the PCI enumeration pipeline against a simulated
// machine snapshot and prints the resulting device inventory.
//
// The snapshot is a YAML description of configuration-space register files
// and an ACPI tree (see the pci/hal/sim package). Output is an lspci-style
// listing, or JSON with --json. Vendor and device names are resolved from
// the PCI ID database when one is available.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jslinux/JsOs/pci"
	"github.com/jslinux/JsOs/pci/hal/sim"
	"github.com/jslinux/JsOs/pkg"
	"github.com/jslinux/JsOs/pkg/pciids"
	"github.com/jslinux/JsOs/pkg/prof"
)

type options struct {
	snapshot   string
	jsonOut    bool
	noColor    bool
	idsPath    string
	logLevel   string
	logJSON    bool
	cpuProfile string
}

func main() {
	var opts options

	cmd := &cobra.Command{
		Use:           "pciscan --snapshot <file>",
		Short:         "Enumerate a simulated PCI machine snapshot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(&opts)
		},
	}

	cmd.Flags().StringVarP(&opts.snapshot, "snapshot", "s", "", "YAML machine snapshot (required)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "emit the inventory as JSON")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	cmd.Flags().StringVar(&opts.idsPath, "ids", "", "path to a pci.ids database (default: standard locations)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&opts.logJSON, "log-json", false, "emit logs as JSON")
	cmd.Flags().StringVar(&opts.cpuProfile, "cpuprofile", "", "write a CPU profile to the given file")
	_ = cmd.MarkFlagRequired("snapshot")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pciscan:", err)
		os.Exit(1)
	}
}

func run(opts *options) error {
	configureLogging(opts)

	if opts.cpuProfile != "" {
		if err := prof.StartCPU(opts.cpuProfile); err != nil {
			return err
		}
		defer prof.StopCPU()
	}

	machine, firmware, err := sim.LoadSnapshot(opts.snapshot)
	if err != nil {
		return err
	}

	mgr := pci.NewManager(pci.Config{
		Ports:     machine,
		Memory:    sim.NewMemoryRange(),
		IO:        sim.NewIORange(),
		IRQ:       sim.NewIRQRange(),
		ACPI:      firmware,
		Allocator: sim.NewAllocator(0x1000000),
	})
	if err := mgr.Boot(); err != nil {
		return err
	}

	devices, err := mgr.ListDevices()
	if err != nil {
		return err
	}

	if opts.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(devices)
	}

	printInventory(devices, loadIDs(opts), opts.noColor)
	return nil
}

func configureLogging(opts *options) {
	if opts.logJSON {
		pkg.SetLogFormat(pkg.LogFormatJSON)
	}
	switch opts.logLevel {
	case "debug":
		pkg.SetLogLevel(slog.LevelDebug)
	case "info":
		pkg.SetLogLevel(slog.LevelInfo)
	case "error":
		pkg.SetLogLevel(slog.LevelError)
	default:
		pkg.SetLogLevel(slog.LevelWarn)
	}
}

// loadIDs opens the PCI ID database, preferring an explicit path.
func loadIDs(opts *options) *pciids.Database {
	var db *pciids.Database
	if opts.idsPath != "" {
		db = pciids.NewWithPaths([]string{opts.idsPath})
	} else {
		db = pciids.New()
	}
	db.Load()
	return db
}

func printInventory(devices []pci.DeviceSummary, ids *pciids.Database, noColor bool) {
	if noColor {
		color.NoColor = true
	}

	addrColor := color.New(color.FgCyan, color.Bold)
	classColor := color.New(color.FgGreen)
	dimColor := color.New(color.Faint)

	for _, dev := range devices {
		name := deviceName(ids, dev.VendorID, dev.DeviceID)
		addrColor.Printf("%s", dev.Address())
		fmt.Printf("  %04x:%04x  ", dev.VendorID, dev.DeviceID)
		classColor.Printf("%s", dev.ClassName)
		if name != "" {
			fmt.Printf("  %s", name)
		}
		fmt.Println()

		if dev.Subsystem.VendorID != 0 || dev.Subsystem.DeviceID != 0 {
			dimColor.Printf("         subsystem %04x:%04x\n",
				dev.Subsystem.VendorID, dev.Subsystem.DeviceID)
		}
		if dev.Pin != 0 {
			if dev.IRQ != nil {
				dimColor.Printf("         %s irq %d\n", pinName(dev.Pin), *dev.IRQ)
			} else {
				dimColor.Printf("         %s unrouted\n", pinName(dev.Pin))
			}
		}
		for i, bar := range dev.BARs {
			if bar == nil {
				continue
			}
			if bar.Unsupported() {
				dimColor.Printf("         bar%d %s base=%#x (unsupported)\n",
					i, bar.Kind, bar.Base)
				continue
			}
			dimColor.Printf("         bar%d %s base=%#x size=%#x\n",
				i, bar.Kind, bar.Base, bar.Size)
		}
	}
}

// deviceName joins the vendor and device names known to the database.
func deviceName(ids *pciids.Database, vendorID, deviceID uint16) string {
	vendor := ids.LookupVendor(vendorID)
	device := ids.LookupDevice(vendorID, deviceID)
	switch {
	case vendor != "" && device != "":
		return vendor + " " + device
	case vendor != "":
		return vendor
	default:
		return device
	}
}

// pinName renders an interrupt-pin register value.
func pinName(pin uint8) string {
	if pin >= 1 && pin <= 4 {
		return fmt.Sprintf("INT%c#", 'A'+pin-1)
	}
	return fmt.Sprintf("pin %d", pin)
}
