package pty

import (
	"github.com/softtty/softtty-go/pkg/log"
	"github.com/softtty/softtty-go/pkg/tty"
	"github.com/softtty/softtty-go/pkg/usermem"
)

// Ioctl request codes handled by the master side of a pair.
const (
	// TIOCPKT enables or disables packet mode (4-byte flag argument).
	TIOCPKT uint32 = 0x5420

	// TIOCSPTLCK sets or clears the slave lock (4-byte flag argument).
	TIOCSPTLCK uint32 = 0x40045431

	// TIOCGPTN reports the pair index (4-byte result).
	TIOCGPTN uint32 = 0x80045430

	// TIOCGPKT reports the packet mode state (4-byte result).
	TIOCGPKT uint32 = 0x80045438

	// TIOCGPTLCK reports the slave lock state (4-byte result).
	TIOCGPTLCK uint32 = 0x80045439
)

// Ioctl dispatches a control request on t. Only masters carry the pty
// control surface; any request on a slave fails with ErrNotSupported.
// arg addresses the 4-byte request payload inside mem.
func (u *Unix98) Ioctl(t *tty.TTY, cmd uint32, arg uintptr, mem usermem.Memory) error {
	if t.Subtype() != tty.SubtypeMaster {
		return tty.ErrNotSupported
	}
	if mem == nil {
		return tty.ErrInvalidArgument
	}

	var err error
	switch cmd {
	case TIOCSPTLCK:
		err = u.setLock(t, arg, mem)
	case TIOCGPTLCK:
		err = u.getLock(t, arg, mem)
	case TIOCPKT:
		err = u.setPacketMode(t, arg, mem)
	case TIOCGPKT:
		err = u.getPacketMode(t, arg, mem)
	case TIOCGPTN:
		err = mem.WriteU32(arg, uint32(t.Index()))
	default:
		err = tty.ErrNotSupported
	}

	if err != nil {
		u.logError(t, log.OpIoctl, err)
		return err
	}
	u.logOp(t, log.OpEvent{Op: log.OpIoctl, Cmd: cmd})
	return nil
}

// setLock reads the 4-byte flag and sets or clears PTY_LOCK on the
// master, gating the slave's next open.
func (u *Unix98) setLock(t *tty.TTY, arg uintptr, mem usermem.Memory) error {
	v, err := mem.ReadU32(arg)
	if err != nil {
		return err
	}
	if v != 0 {
		t.SetFlag(tty.FlagPtyLock)
	} else {
		t.ClearFlag(tty.FlagPtyLock)
	}
	return nil
}

// getLock reports the PTY_LOCK state as a 4-byte flag.
func (u *Unix98) getLock(t *tty.TTY, arg uintptr, mem usermem.Memory) error {
	var v uint32
	if t.HasFlag(tty.FlagPtyLock) {
		v = 1
	}
	return mem.WriteU32(arg, v)
}

// setPacketMode reads the 4-byte flag and toggles packet mode. Only
// the disabled-to-enabled edge touches the peer: it resets the peer's
// packet status so no stale indicators survive into the new packet
// stream. That reset is the single path allowed to take the peer's
// control lock while holding this endpoint's.
func (u *Unix98) setPacketMode(t *tty.TTY, arg uintptr, mem usermem.Memory) error {
	v, err := mem.ReadU32(arg)
	if err != nil {
		return err
	}

	t.WithControl(func(c *tty.ControlInfo) {
		if v == 0 {
			c.Packet = false
			return
		}
		if c.Packet {
			return
		}
		if peer, lerr := t.Link(); lerr == nil {
			peer.ResetPktStatus()
		}
		c.Packet = true
	})
	return nil
}

// getPacketMode reports the packet mode state as a 4-byte flag.
func (u *Unix98) getPacketMode(t *tty.TTY, arg uintptr, mem usermem.Memory) error {
	var v uint32
	if t.Control().Packet {
		v = 1
	}
	return mem.WriteU32(arg, v)
}
