package tty

import (
	"fmt"
	"sync"

	"github.com/softtty/softtty-go/pkg/termios"
)

// Subtype distinguishes the two roles of a pseudo-terminal driver.
type Subtype uint8

const (
	// SubtypeMaster is the controlling side of a pair.
	SubtypeMaster Subtype = iota

	// SubtypeSlave is the terminal side of a pair.
	SubtypeSlave
)

// String returns the subtype name.
func (s Subtype) String() string {
	switch s {
	case SubtypeMaster:
		return "MASTER"
	case SubtypeSlave:
		return "SLAVE"
	default:
		return "UNKNOWN"
	}
}

// Driver owns a bounded table of endpoints of one subtype and the
// Operations capability that gives them behavior.
type Driver struct {
	mu sync.RWMutex

	// name identifies the driver in logs and the registry.
	name string

	// subtype fixes the role of every endpoint in the table.
	subtype Subtype

	// major and minorStart are the device-number range base.
	major, minorStart uint32

	// num bounds the index table.
	num int

	// initTermios is copied to new endpoints.
	initTermios termios.Termios

	// ops is the per-driver-kind operation capability.
	ops Operations

	// other is the paired driver carrying the opposite subtype.
	other *Driver

	// ttys is the index table.
	ttys map[int]*TTY
}

// DriverConfig collects the parameters for NewDriver.
type DriverConfig struct {
	Name        string
	Subtype     Subtype
	Major       uint32
	MinorStart  uint32
	Num         int
	InitTermios termios.Termios
	Ops         Operations
}

// NewDriver creates a driver with an empty index table.
func NewDriver(cfg DriverConfig) *Driver {
	return &Driver{
		name:        cfg.Name,
		subtype:     cfg.Subtype,
		major:       cfg.Major,
		minorStart:  cfg.MinorStart,
		num:         cfg.Num,
		initTermios: cfg.InitTermios,
		ops:         cfg.Ops,
		ttys:        make(map[int]*TTY),
	}
}

// Name returns the driver name.
func (d *Driver) Name() string {
	return d.name
}

// Subtype returns the driver subtype.
func (d *Driver) Subtype() Subtype {
	return d.subtype
}

// Major returns the driver's device-number major.
func (d *Driver) Major() uint32 {
	return d.major
}

// MinorStart returns the first minor of the driver's range.
func (d *Driver) MinorStart() uint32 {
	return d.minorStart
}

// Num returns the size of the driver's index space.
func (d *Driver) Num() int {
	return d.num
}

// InitTermios returns the default termios copied to new endpoints.
func (d *Driver) InitTermios() termios.Termios {
	return d.initTermios
}

// Ops returns the driver's operation capability.
func (d *Driver) Ops() Operations {
	return d.ops
}

// Other returns the paired driver of the opposite subtype, or nil for
// drivers that are not part of a pty pair.
func (d *Driver) Other() *Driver {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.other
}

// SetOther wires the paired driver. Registration calls it once on each
// of the two pty drivers.
func (d *Driver) SetOther(other *Driver) {
	d.mu.Lock()
	d.other = other
	d.mu.Unlock()
}

// AddTTY registers an endpoint in the index table.
func (d *Driver) AddTTY(index int, t *TTY) error {
	if index < 0 || index >= d.num {
		return fmt.Errorf("index %d outside [0,%d): %w", index, d.num, ErrInvalidArgument)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.ttys[index]; exists {
		return fmt.Errorf("index %d already installed: %w", index, ErrInvalidArgument)
	}
	d.ttys[index] = t
	return nil
}

// LookupTTY returns the endpoint at index, if installed.
func (d *Driver) LookupTTY(index int) (*TTY, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.ttys[index]
	return t, ok
}

// RemoveTTY drops the endpoint at index from the table.
func (d *Driver) RemoveTTY(index int) {
	d.mu.Lock()
	delete(d.ttys, index)
	d.mu.Unlock()
}

// Installed returns the number of endpoints in the table.
func (d *Driver) Installed() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.ttys)
}
