package pty

import (
	"fmt"

	"github.com/softtty/softtty-go/pkg/log"
	"github.com/softtty/softtty-go/pkg/termios"
	"github.com/softtty/softtty-go/pkg/tty"
)

// Device-number layout of the Unix98 pty surface.
const (
	// TTYAuxMajor is the major of the auxiliary tty devices.
	TTYAuxMajor uint32 = 5

	// PtmxMinor is the minor of the ptmx control node.
	PtmxMinor uint32 = 2

	// PtyMasterMajor is the major of the ptm driver's range.
	PtyMasterMajor uint32 = 128

	// PtySlaveMajor is the major of the pts driver's range.
	PtySlaveMajor uint32 = 136
)

// MaxPtys caps the number of concurrently installed pairs.
const MaxPtys = 4096

// Options configures a subsystem instance. Zero values select the
// defaults.
type Options struct {
	// MaxPtys bounds the pair index space (default MaxPtys).
	MaxPtys int

	// PortCapacity sizes the per-endpoint receive ports.
	PortCapacity int

	// WriteRoom overrides the static write capacity hint.
	WriteRoom int

	// Logger receives trace events. nil disables tracing.
	Logger log.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxPtys <= 0 || o.MaxPtys > MaxPtys {
		o.MaxPtys = MaxPtys
	}
	if o.Logger == nil {
		o.Logger = log.NoopLogger{}
	}
	return o
}

// Subsystem is one registered instance of the pty pair subsystem: the
// ptm/pts driver pair, the ptmx control node, and the registry they
// live in.
type Subsystem struct {
	registry *tty.Registry
	ptm      *tty.Driver
	pts      *tty.Driver
	ptmx     *Ptmx
}

// Register builds the ptm and pts drivers, wires each as the other's
// peer driver, applies the pty default termios, and registers both
// drivers plus the ptmx control node in a fresh registry. It is the
// subsystem's startup entry point and runs once per instance.
func Register(opts Options) (*Subsystem, error) {
	opts = opts.withDefaults()

	ops := NewUnix98(Unix98Config{
		Logger:       opts.Logger,
		WriteRoom:    opts.WriteRoom,
		PortCapacity: opts.PortCapacity,
	})

	// The master side is a raw 8-bit line; the slave side keeps the
	// standard line settings pinned to the same fixed baud.
	ptsTermios := termios.Default()
	ptsTermios.Cflag = termios.B38400 | termios.CS8 | termios.CREAD

	ptm := tty.NewDriver(tty.DriverConfig{
		Name:        "ptm",
		Subtype:     tty.SubtypeMaster,
		Major:       PtyMasterMajor,
		MinorStart:  0,
		Num:         opts.MaxPtys,
		InitTermios: termios.DefaultPty(),
		Ops:         ops,
	})
	pts := tty.NewDriver(tty.DriverConfig{
		Name:        "pts",
		Subtype:     tty.SubtypeSlave,
		Major:       PtySlaveMajor,
		MinorStart:  0,
		Num:         opts.MaxPtys,
		InitTermios: ptsTermios,
		Ops:         ops,
	})
	ptm.SetOther(pts)
	pts.SetOther(ptm)

	registry := tty.NewRegistry()
	if err := registry.RegisterDriver(ptm); err != nil {
		return nil, fmt.Errorf("register ptm: %w", err)
	}
	if err := registry.RegisterDriver(pts); err != nil {
		return nil, fmt.Errorf("register pts: %w", err)
	}

	ptmx := newPtmx(ptm, opts.MaxPtys)
	ctl := tty.DeviceNumber{Major: TTYAuxMajor, Minor: PtmxMinor}
	if err := registry.RegisterControl("ptmx", ctl, ptmx); err != nil {
		return nil, fmt.Errorf("register ptmx: %w", err)
	}

	return &Subsystem{
		registry: registry,
		ptm:      ptm,
		pts:      pts,
		ptmx:     ptmx,
	}, nil
}

// Registry returns the subsystem's driver registry.
func (s *Subsystem) Registry() *tty.Registry {
	return s.registry
}

// MasterDriver returns the ptm driver.
func (s *Subsystem) MasterDriver() *tty.Driver {
	return s.ptm
}

// SlaveDriver returns the pts driver.
func (s *Subsystem) SlaveDriver() *tty.Driver {
	return s.pts
}

// Ptmx returns the control device.
func (s *Subsystem) Ptmx() *Ptmx {
	return s.ptmx
}

// OpenPair opens the control node and then the slave side, returning
// both opened endpoints of a fresh pair.
func (s *Subsystem) OpenPair() (master, slave *tty.TTY, err error) {
	master, err = s.ptmx.OpenMaster()
	if err != nil {
		return nil, nil, err
	}

	slave, err = master.Link()
	if err != nil {
		return nil, nil, err
	}
	if err := s.pts.Ops().Open(slave); err != nil {
		return nil, nil, err
	}

	return master, slave, nil
}
