package tty

import (
	"github.com/softtty/softtty-go/pkg/termios"
	"github.com/softtty/softtty-go/pkg/usermem"
)

// Operations is the per-driver-kind behavior capability. Callers hold
// this interface and never a concrete kind; swapping pty families
// means swapping the value installed on the driver.
type Operations interface {
	// Install is called when a new endpoint is created on the driver.
	// For pseudo-terminals it allocates and links the peer endpoint.
	Install(driver *Driver, tty *TTY) error

	// Open runs the open protocol checks for an endpoint.
	Open(tty *TTY) error

	// Write forwards up to n bytes from buf toward the endpoint's
	// output and returns the accepted count. A short count signals
	// backpressure, not an error.
	Write(tty *TTY, buf []byte, n int) (int, error)

	// WriteRoom returns the endpoint's current write capacity hint.
	WriteRoom(tty *TTY) int

	// FlushBuffer discards unread output and signals the
	// discontinuity to the reading side.
	FlushBuffer(tty *TTY) error

	// Ioctl handles driver-specific control requests. arg addresses
	// the request payload inside mem.
	Ioctl(tty *TTY, cmd uint32, arg uintptr, mem usermem.Memory) error

	// SetTermios is called after the generic layer updated the
	// endpoint's termios, with the previous settings.
	SetTermios(tty *TTY, old termios.Termios) error

	// Start restarts stopped output.
	Start(tty *TTY) error

	// Stop pauses output.
	Stop(tty *TTY) error

	// FlushChars is called after a write burst completes.
	FlushChars(tty *TTY)
}
