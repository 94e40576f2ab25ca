package pty

import (
	"errors"
	"testing"

	"github.com/softtty/softtty-go/pkg/tty"
	"github.com/softtty/softtty-go/pkg/usermem"
)

// ioctlPair returns an installed pair plus a user-memory window with
// the given 4-byte value staged at address 0.
func ioctlPair(t *testing.T, staged uint32) (*Subsystem, *tty.TTY, *tty.TTY, *usermem.Buffer) {
	t.Helper()
	s := newSubsystem(t, Options{})
	master, slave := installPair(t, s, 0)
	mem := usermem.NewBuffer(16)
	if err := mem.WriteU32(0, staged); err != nil {
		t.Fatalf("staging value failed: %v", err)
	}
	return s, master, slave, mem
}

func TestIoctlMasterOnly(t *testing.T) {
	s, _, slave, mem := ioctlPair(t, 1)

	err := s.SlaveDriver().Ops().Ioctl(slave, TIOCSPTLCK, 0, mem)
	if !errors.Is(err, tty.ErrNotSupported) {
		t.Errorf("Ioctl on slave = %v, want ErrNotSupported", err)
	}
}

func TestIoctlRejections(t *testing.T) {
	s, master, _, mem := ioctlPair(t, 1)
	ops := s.MasterDriver().Ops()

	t.Run("UnknownCmd", func(t *testing.T) {
		if err := ops.Ioctl(master, 0xDEAD, 0, mem); !errors.Is(err, tty.ErrNotSupported) {
			t.Errorf("unknown cmd = %v, want ErrNotSupported", err)
		}
	})

	t.Run("NilMemory", func(t *testing.T) {
		if err := ops.Ioctl(master, TIOCSPTLCK, 0, nil); !errors.Is(err, tty.ErrInvalidArgument) {
			t.Errorf("nil memory = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("BadAddress", func(t *testing.T) {
		if err := ops.Ioctl(master, TIOCSPTLCK, 4096, mem); !errors.Is(err, usermem.ErrFault) {
			t.Errorf("bad address = %v, want ErrFault", err)
		}
	})
}

func TestLockIoctls(t *testing.T) {
	s, master, _, mem := ioctlPair(t, 1)
	ops := s.MasterDriver().Ops()

	if err := ops.Ioctl(master, TIOCSPTLCK, 0, mem); err != nil {
		t.Fatalf("TIOCSPTLCK failed: %v", err)
	}
	if !master.HasFlag(tty.FlagPtyLock) {
		t.Error("PTY_LOCK should be set after locking")
	}

	if err := ops.Ioctl(master, TIOCGPTLCK, 8, mem); err != nil {
		t.Fatalf("TIOCGPTLCK failed: %v", err)
	}
	if v, _ := mem.ReadU32(8); v != 1 {
		t.Errorf("reported lock = %d, want 1", v)
	}

	// Unlock with a zero value.
	if err := mem.WriteU32(0, 0); err != nil {
		t.Fatal(err)
	}
	if err := ops.Ioctl(master, TIOCSPTLCK, 0, mem); err != nil {
		t.Fatalf("TIOCSPTLCK failed: %v", err)
	}
	if master.HasFlag(tty.FlagPtyLock) {
		t.Error("PTY_LOCK should be cleared after unlocking")
	}
}

func TestLockedMasterBlocksSlaveOpen(t *testing.T) {
	s, master, slave, mem := ioctlPair(t, 1)
	ops := s.MasterDriver().Ops()

	if err := ops.Open(master); err != nil {
		t.Fatalf("open master failed: %v", err)
	}
	if err := ops.Ioctl(master, TIOCSPTLCK, 0, mem); err != nil {
		t.Fatalf("TIOCSPTLCK failed: %v", err)
	}

	if err := s.SlaveDriver().Ops().Open(slave); !errors.Is(err, tty.ErrIO) {
		t.Errorf("open slave with locked master = %v, want ErrIO", err)
	}
	if !slave.HasFlag(tty.FlagIOError) {
		t.Error("failed slave open should set IO_ERROR on the slave")
	}
}

func TestPacketModeIoctls(t *testing.T) {
	s, master, slave, mem := ioctlPair(t, 1)
	ops := s.MasterDriver().Ops()

	// Stale indicators from before packet mode was ever on.
	slave.WithControl(func(c *tty.ControlInfo) {
		c.Pktstatus = tty.PktStop | tty.PktFlushWrite
	})

	t.Run("EnableResetsPeerStatus", func(t *testing.T) {
		if err := ops.Ioctl(master, TIOCPKT, 0, mem); err != nil {
			t.Fatalf("TIOCPKT failed: %v", err)
		}
		if !master.Control().Packet {
			t.Error("packet mode should be enabled")
		}
		if got := slave.Control().Pktstatus; got != 0 {
			t.Errorf("peer pktstatus = %#x, want reset to empty", got)
		}
	})

	t.Run("RedundantEnableLeavesPeerAlone", func(t *testing.T) {
		slave.WithControl(func(c *tty.ControlInfo) { c.Pktstatus = tty.PktStart })

		if err := ops.Ioctl(master, TIOCPKT, 0, mem); err != nil {
			t.Fatalf("TIOCPKT failed: %v", err)
		}
		if got := slave.Control().Pktstatus; got != tty.PktStart {
			t.Errorf("peer pktstatus = %#x, want unchanged %#x", got, tty.PktStart)
		}
	})

	t.Run("DisableLeavesPeerAlone", func(t *testing.T) {
		if err := mem.WriteU32(0, 0); err != nil {
			t.Fatal(err)
		}
		if err := ops.Ioctl(master, TIOCPKT, 0, mem); err != nil {
			t.Fatalf("TIOCPKT failed: %v", err)
		}
		if master.Control().Packet {
			t.Error("packet mode should be disabled")
		}
		if got := slave.Control().Pktstatus; got != tty.PktStart {
			t.Errorf("peer pktstatus = %#x, want unchanged %#x", got, tty.PktStart)
		}
	})

	t.Run("GetReportsState", func(t *testing.T) {
		if err := ops.Ioctl(master, TIOCGPKT, 8, mem); err != nil {
			t.Fatalf("TIOCGPKT failed: %v", err)
		}
		if v, _ := mem.ReadU32(8); v != 0 {
			t.Errorf("reported packet mode = %d, want 0", v)
		}

		if err := mem.WriteU32(0, 1); err != nil {
			t.Fatal(err)
		}
		if err := ops.Ioctl(master, TIOCPKT, 0, mem); err != nil {
			t.Fatal(err)
		}
		if err := ops.Ioctl(master, TIOCGPKT, 8, mem); err != nil {
			t.Fatal(err)
		}
		if v, _ := mem.ReadU32(8); v != 1 {
			t.Errorf("reported packet mode = %d, want 1", v)
		}
	})
}

func TestPacketModeEnableWithAbsentPeer(t *testing.T) {
	s, master, _, mem := ioctlPair(t, 1)
	master.DropLink()

	// The peer reset is skipped, the mode still toggles.
	if err := s.MasterDriver().Ops().Ioctl(master, TIOCPKT, 0, mem); err != nil {
		t.Fatalf("TIOCPKT with absent peer = %v, want success", err)
	}
	if !master.Control().Packet {
		t.Error("packet mode should be enabled even with an absent peer")
	}
}

func TestPtyNumberIoctl(t *testing.T) {
	s := newSubsystem(t, Options{})
	master, _ := installPair(t, s, 3)
	mem := usermem.NewBuffer(8)

	if err := s.MasterDriver().Ops().Ioctl(master, TIOCGPTN, 0, mem); err != nil {
		t.Fatalf("TIOCGPTN failed: %v", err)
	}
	if v, _ := mem.ReadU32(0); v != 3 {
		t.Errorf("reported index = %d, want 3", v)
	}
}
