package tty

import "errors"

// Subsystem errors.
var (
	// ErrNoSuchDevice is returned when an endpoint's peer link cannot
	// be resolved or a lookup misses.
	ErrNoSuchDevice = errors.New("no such device")

	// ErrIO is returned for protocol violations: opening an endpoint
	// whose other side closed, a locked peer, or a second master.
	// It is always paired with setting FlagIOError on the endpoint.
	ErrIO = errors.New("i/o error")

	// ErrNotSupported is returned when an operation is invoked on the
	// wrong endpoint subtype or with an unknown ioctl command.
	ErrNotSupported = errors.New("operation not supported")

	// ErrInvalidArgument is returned for malformed operation payloads.
	ErrInvalidArgument = errors.New("invalid argument")
)
