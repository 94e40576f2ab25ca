package pty

import (
	"time"

	"github.com/softtty/softtty-go/pkg/log"
	"github.com/softtty/softtty-go/pkg/port"
	"github.com/softtty/softtty-go/pkg/termios"
	"github.com/softtty/softtty-go/pkg/tty"
	"github.com/softtty/softtty-go/pkg/waitqueue"
)

// DefaultWriteRoom is the static capacity hint reported by WriteRoom.
// Exact backpressure is delegated to the peer's port.
const DefaultWriteRoom = 8192

// Unix98 is the operation capability for Unix98-style pseudo-terminal
// pairs. One value serves both the ptm and pts drivers; behavior that
// differs by side dispatches on the endpoint's subtype.
type Unix98 struct {
	logger       log.Logger
	writeRoom    int
	portCapacity int
}

// Unix98Config collects the parameters for NewUnix98. Zero values
// select the defaults.
type Unix98Config struct {
	// Logger receives trace events. nil disables tracing.
	Logger log.Logger

	// WriteRoom overrides the static write capacity hint.
	WriteRoom int

	// PortCapacity sizes the per-endpoint receive ports.
	PortCapacity int
}

// NewUnix98 creates the Unix98 operation capability.
func NewUnix98(cfg Unix98Config) *Unix98 {
	u := &Unix98{
		logger:       cfg.Logger,
		writeRoom:    cfg.WriteRoom,
		portCapacity: cfg.PortCapacity,
	}
	if u.logger == nil {
		u.logger = log.NoopLogger{}
	}
	if u.writeRoom <= 0 {
		u.writeRoom = DefaultWriteRoom
	}
	if u.portCapacity <= 0 {
		u.portCapacity = port.DefaultCapacity
	}
	return u
}

// Install allocates and links the peer endpoint for t.
func (u *Unix98) Install(driver *tty.Driver, t *tty.TTY) error {
	if _, err := CommonInstall(driver, t, false, u.portCapacity); err != nil {
		u.logError(t, log.OpInstall, err)
		return err
	}
	u.logOp(t, log.OpEvent{Op: log.OpInstall})
	return nil
}

// Open runs the pair open protocol for t.
func (u *Unix98) Open(t *tty.TTY) error {
	if err := CommonOpen(t); err != nil {
		u.logError(t, log.OpOpen, err)
		return err
	}
	u.logOp(t, log.OpEvent{Op: log.OpOpen})
	return nil
}

// Write forwards up to n bytes from buf into the peer's port and
// returns the accepted count. A zero length or a stopped flow state
// returns 0 without touching the link.
func (u *Unix98) Write(t *tty.TTY, buf []byte, n int) (int, error) {
	if n == 0 || t.Stopped() {
		return 0, nil
	}

	to, err := t.Link()
	if err != nil {
		u.logError(t, log.OpWrite, err)
		return 0, err
	}
	p := to.Port()
	if p == nil {
		u.logError(t, log.OpWrite, tty.ErrNoSuchDevice)
		return 0, tty.ErrNoSuchDevice
	}

	accepted, err := p.ReceiveBuf(buf, nil, n)
	if err != nil {
		u.logError(t, log.OpWrite, err)
		return accepted, err
	}
	u.logOp(t, log.OpEvent{Op: log.OpWrite, Requested: n, Accepted: accepted})
	return accepted, nil
}

// WriteRoom returns 0 while flow is stopped, otherwise the static
// capacity hint.
func (u *Unix98) WriteRoom(t *tty.TTY) int {
	if t.Stopped() {
		return 0
	}
	return u.writeRoom
}

// FlushBuffer signals a write-side flush to the peer's reader: the
// flush-write indicator is set in the peer's packet status and all of
// the peer's readers are woken. The signal is immediate, not buffered.
func (u *Unix98) FlushBuffer(t *tty.TTY) error {
	to, err := t.Link()
	if err != nil {
		u.logError(t, log.OpFlush, err)
		return err
	}

	to.WithControl(func(c *tty.ControlInfo) {
		c.Pktstatus |= tty.PktFlushWrite
	})
	to.ReadQueue().WakeupAll()

	u.logOp(t, log.OpEvent{Op: log.OpFlush})
	return nil
}

// SetTermios reacts to a termios change on the slave side. When the
// master is in packet mode and the change flips whether ^S/^Q flow
// control is in effect, the do-stop/no-stop indicators are updated and
// the master's readers are woken.
func (u *Unix98) SetTermios(t *tty.TTY, old termios.Termios) error {
	if t.Subtype() != tty.SubtypeSlave {
		return tty.ErrNotSupported
	}

	peer, err := t.Link()
	if err != nil {
		return err
	}
	if !peer.Control().Packet {
		return nil
	}

	cur := t.Termios()
	oldFlow := old.Iflag&termios.IXON != 0 &&
		old.Cc[termios.VSTOP] == 0x13 && old.Cc[termios.VSTART] == 0x11
	newFlow := cur.Iflag&termios.IXON != 0 &&
		cur.Cc[termios.VSTOP] == 0x13 && cur.Cc[termios.VSTART] == 0x11

	if oldFlow != newFlow {
		t.WithControl(func(c *tty.ControlInfo) {
			c.Pktstatus &^= tty.PktDoStop | tty.PktNoStop
			if newFlow {
				c.Pktstatus |= tty.PktDoStop
			} else {
				c.Pktstatus |= tty.PktNoStop
			}
		})
		peer.ReadQueue().Wakeup(waitqueue.EventIn)
		u.logOp(t, log.OpEvent{Op: log.OpSetTermios})
	}
	return nil
}

// Start restarts stopped output on a slave: the stop indicator is
// replaced by the start indicator in the slave's packet status and the
// master's readers are woken.
func (u *Unix98) Start(t *tty.TTY) error {
	if t.Subtype() != tty.SubtypeSlave {
		return tty.ErrNotSupported
	}

	link, err := t.Link()
	if err != nil {
		u.logError(t, log.OpStart, err)
		return err
	}

	t.WithControl(func(c *tty.ControlInfo) {
		c.Pktstatus &^= tty.PktStop
		c.Pktstatus |= tty.PktStart
	})
	link.ReadQueue().Wakeup(waitqueue.EventIn)

	u.logOp(t, log.OpEvent{Op: log.OpStart})
	return nil
}

// Stop pauses output on a slave: the start indicator is replaced by
// the stop indicator in the slave's packet status and the master's
// readers are woken.
func (u *Unix98) Stop(t *tty.TTY) error {
	if t.Subtype() != tty.SubtypeSlave {
		return tty.ErrNotSupported
	}

	link, err := t.Link()
	if err != nil {
		u.logError(t, log.OpStop, err)
		return err
	}

	t.WithControl(func(c *tty.ControlInfo) {
		c.Pktstatus &^= tty.PktStart
		c.Pktstatus |= tty.PktStop
	})
	link.ReadQueue().Wakeup(waitqueue.EventIn)

	u.logOp(t, log.OpEvent{Op: log.OpStop})
	return nil
}

// FlushChars has nothing to do for pseudo-terminals.
func (u *Unix98) FlushChars(*tty.TTY) {}

func (u *Unix98) logOp(t *tty.TTY, op log.OpEvent) {
	u.logger.Log(log.Event{
		Timestamp: time.Now(),
		PairID:    t.PairID(),
		Driver:    t.Driver().Name(),
		Index:     t.Index(),
		Subtype:   logSubtype(t),
		Category:  log.CategoryOp,
		Op:        &op,
	})
}

func (u *Unix98) logError(t *tty.TTY, op log.Op, err error) {
	u.logger.Log(log.Event{
		Timestamp: time.Now(),
		PairID:    t.PairID(),
		Driver:    t.Driver().Name(),
		Index:     t.Index(),
		Subtype:   logSubtype(t),
		Category:  log.CategoryError,
		Error:     &log.ErrorEvent{Op: op, Message: err.Error()},
	})
}

func logSubtype(t *tty.TTY) log.Subtype {
	if t.Subtype() == tty.SubtypeMaster {
		return log.SubtypeMaster
	}
	return log.SubtypeSlave
}

// Compile-time interface satisfaction check.
var _ tty.Operations = (*Unix98)(nil)
