// Package pkg provides shared utilities for the PCI stack.
//
// This package contains common functionality used across the enumeration
// engine and its hardware backends, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error values for configuration-space protocol violations
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps [log/slog] with PCI-specific context:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentPCI, "device discovered", "address", addr)
//
// # Errors
//
// Protocol violations are defined as sentinel values:
//
//	if errors.Is(err, pkg.ErrWrongDeviceKind) {
//	    // Queried a device-header field on a bridge
//	}
//
// Contract violations (alignment, bounds, duplicate registration) are fatal
// to the boot-time enumeration pass; ACPI resolution failures are local and
// leave the affected device without a firmware handle or routed IRQ.
package pkg
