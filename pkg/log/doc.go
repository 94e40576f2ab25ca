// Package log provides structured event tracing for the terminal
// subsystem.
//
// This package defines the Logger interface and Event types for
// capturing subsystem operations: pair installation, the open
// protocol, forwarded writes, flow control, and ioctls. It is separate
// from operational logging (slog) - the trace provides a complete
// machine-readable record of what the subsystem did, in order.
//
// # Basic Usage
//
// Callers configure tracing by providing a Logger implementation:
//
//	// For development: log to console via slog
//	opts.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For capture: write to binary file
//	opts.Logger, _ = log.NewFileLogger("/var/log/softtty/trace.tlog")
//
//	// Both: use MultiLogger
//	opts.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Trace files use CBOR encoding with integer keys. Reader iterates a
// capture file, optionally filtered by pair, operation, or time range.
package log
