package tty

import (
	"fmt"
	"sync"
)

// DeviceNumber identifies a character device node.
type DeviceNumber struct {
	Major uint32
	Minor uint32
}

// String returns the conventional major:minor form.
func (d DeviceNumber) String() string {
	return fmt.Sprintf("%d:%d", d.Major, d.Minor)
}

// ControlDevice is a device node whose open request is routed into the
// subsystem rather than to an existing endpoint. The pty control node
// ("ptmx") implements it by installing a fresh pair.
type ControlDevice interface {
	// OpenControl handles an open of the control node and returns the
	// resulting endpoint.
	OpenControl() (*TTY, error)
}

// Registry holds the registered drivers and control nodes of one
// subsystem instance. It is built explicitly at startup and passed to
// call sites; the package keeps no global registry.
type Registry struct {
	mu       sync.RWMutex
	drivers  []*Driver
	controls map[string]controlEntry
}

type controlEntry struct {
	dev    DeviceNumber
	device ControlDevice
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{controls: make(map[string]controlEntry)}
}

// RegisterDriver adds a driver. It fails if the driver's device-number
// range overlaps one already registered.
func (r *Registry) RegisterDriver(d *Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.drivers {
		if existing.Major() != d.Major() {
			continue
		}
		lo, hi := d.MinorStart(), d.MinorStart()+uint32(d.Num())
		elo, ehi := existing.MinorStart(), existing.MinorStart()+uint32(existing.Num())
		if lo < ehi && elo < hi {
			return fmt.Errorf("device range %d:%d-%d overlaps driver %q: %w",
				d.Major(), lo, hi-1, existing.Name(), ErrInvalidArgument)
		}
	}
	r.drivers = append(r.drivers, d)
	return nil
}

// DriverFor resolves the driver owning a device number.
func (r *Registry) DriverFor(dev DeviceNumber) (*Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.drivers {
		if d.Major() != dev.Major {
			continue
		}
		if dev.Minor >= d.MinorStart() && dev.Minor < d.MinorStart()+uint32(d.Num()) {
			return d, nil
		}
	}
	return nil, ErrNoSuchDevice
}

// Drivers returns the registered drivers in registration order.
func (r *Registry) Drivers() []*Driver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Driver, len(r.drivers))
	copy(out, r.drivers)
	return out
}

// RegisterControl adds a named control device node.
func (r *Registry) RegisterControl(name string, dev DeviceNumber, cd ControlDevice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.controls[name]; exists {
		return fmt.Errorf("control node %q already registered: %w", name, ErrInvalidArgument)
	}
	r.controls[name] = controlEntry{dev: dev, device: cd}
	return nil
}

// Control resolves a control node by name.
func (r *Registry) Control(name string) (ControlDevice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.controls[name]
	if !ok {
		return nil, ErrNoSuchDevice
	}
	return entry.device, nil
}

// ControlNumber returns the device number of a named control node.
func (r *Registry) ControlNumber(name string) (DeviceNumber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.controls[name]
	if !ok {
		return DeviceNumber{}, ErrNoSuchDevice
	}
	return entry.dev, nil
}
