package pty

import (
	"errors"
	"testing"

	"github.com/softtty/softtty-go/pkg/termios"
	"github.com/softtty/softtty-go/pkg/tty"
	"github.com/softtty/softtty-go/pkg/waitqueue"
)

func TestWriteForwardsIntoPeerPort(t *testing.T) {
	s := newSubsystem(t, Options{})
	master, slave, err := s.OpenPair()
	if err != nil {
		t.Fatalf("OpenPair failed: %v", err)
	}
	ops := s.MasterDriver().Ops()

	n, err := ops.Write(master, []byte("hello"), 5)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != 5 {
		t.Errorf("accepted = %d, want 5", n)
	}

	buf := make([]byte, 8)
	got, err := slave.Port().Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(buf[:got]) != "hello" {
		t.Errorf("slave port received %q, want %q", buf[:got], "hello")
	}

	// The room hint is static; prior writes do not reduce it.
	if room := ops.WriteRoom(master); room != DefaultWriteRoom {
		t.Errorf("WriteRoom = %d, want %d", room, DefaultWriteRoom)
	}
}

func TestWriteGates(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, s *Subsystem) *tty.TTY
		n       int
		want    int
		wantErr error
	}{
		{
			name: "zero length is a no-op even without a link",
			prepare: func(t *testing.T, s *Subsystem) *tty.TTY {
				return tty.New(s.MasterDriver(), 5)
			},
			n:    0,
			want: 0,
		},
		{
			name: "stopped flow accepts nothing",
			prepare: func(t *testing.T, s *Subsystem) *tty.TTY {
				master, _ := installPair(t, s, 0)
				master.SetStopped(true)
				return master
			},
			n:    5,
			want: 0,
		},
		{
			name: "stopped flow wins over a missing link",
			prepare: func(t *testing.T, s *Subsystem) *tty.TTY {
				orphan := tty.New(s.MasterDriver(), 6)
				orphan.SetStopped(true)
				return orphan
			},
			n:    5,
			want: 0,
		},
		{
			name: "unresolved link fails",
			prepare: func(t *testing.T, s *Subsystem) *tty.TTY {
				return tty.New(s.MasterDriver(), 7)
			},
			n:       5,
			wantErr: tty.ErrNoSuchDevice,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newSubsystem(t, Options{})
			src := tc.prepare(t, s)

			n, err := s.MasterDriver().Ops().Write(src, []byte("hello"), tc.n)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Write err = %v, want %v", err, tc.wantErr)
			}
			if n != tc.want {
				t.Errorf("accepted = %d, want %d", n, tc.want)
			}
		})
	}
}

func TestWriteBackpressure(t *testing.T) {
	s := newSubsystem(t, Options{PortCapacity: 4})
	master, slave := installPair(t, s, 0)
	ops := s.MasterDriver().Ops()

	n, err := ops.Write(master, []byte("overflow"), 8)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != 4 {
		t.Errorf("accepted = %d, want 4 (port capacity)", n)
	}
	if slave.Port().Buffered() != 4 {
		t.Errorf("slave buffered = %d, want 4", slave.Port().Buffered())
	}
}

func TestWriteRoomStopped(t *testing.T) {
	s := newSubsystem(t, Options{})
	master, _ := installPair(t, s, 0)
	master.SetStopped(true)

	if room := s.MasterDriver().Ops().WriteRoom(master); room != 0 {
		t.Errorf("WriteRoom while stopped = %d, want 0", room)
	}
}

func TestStopStartPacketIndicators(t *testing.T) {
	tests := []struct {
		name  string
		calls []string
		want  tty.PacketStatus
	}{
		{name: "stop then start", calls: []string{"stop", "start"}, want: tty.PktStart},
		{name: "start then stop", calls: []string{"start", "stop"}, want: tty.PktStop},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newSubsystem(t, Options{})
			_, slave := installPair(t, s, 0)
			ops := s.SlaveDriver().Ops()

			for _, call := range tc.calls {
				var err error
				if call == "stop" {
					err = ops.Stop(slave)
				} else {
					err = ops.Start(slave)
				}
				if err != nil {
					t.Fatalf("%s failed: %v", call, err)
				}
			}

			if got := slave.Control().Pktstatus; got != tc.want {
				t.Errorf("pktstatus = %#x, want exactly %#x", got, tc.want)
			}
		})
	}
}

func TestFlowControlIsSlaveOnly(t *testing.T) {
	s := newSubsystem(t, Options{})
	master, _ := installPair(t, s, 0)
	ops := s.MasterDriver().Ops()

	if err := ops.Stop(master); !errors.Is(err, tty.ErrNotSupported) {
		t.Errorf("Stop on master = %v, want ErrNotSupported", err)
	}
	if err := ops.Start(master); !errors.Is(err, tty.ErrNotSupported) {
		t.Errorf("Start on master = %v, want ErrNotSupported", err)
	}
}

func TestFlowControlNeedsLink(t *testing.T) {
	s := newSubsystem(t, Options{})
	orphan := tty.New(s.SlaveDriver(), 5)
	ops := s.SlaveDriver().Ops()

	if err := ops.Stop(orphan); !errors.Is(err, tty.ErrNoSuchDevice) {
		t.Errorf("Stop without link = %v, want ErrNoSuchDevice", err)
	}
	if got := orphan.Control().Pktstatus; got != 0 {
		t.Errorf("pktstatus = %#x, want untouched", got)
	}
}

func TestFlowControlWakesPeerReaders(t *testing.T) {
	s := newSubsystem(t, Options{})
	master, slave := installPair(t, s, 0)

	ch := master.ReadQueue().Subscribe()
	defer master.ReadQueue().Unsubscribe(ch)

	if err := s.SlaveDriver().Ops().Stop(slave); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	select {
	case mask := <-ch:
		if mask&waitqueue.EventIn == 0 {
			t.Errorf("wake mask = %#x, want EventIn", mask)
		}
	default:
		t.Fatal("master readers were not woken")
	}
}

func TestFlushBufferSignalsPeer(t *testing.T) {
	s := newSubsystem(t, Options{})
	master, slave := installPair(t, s, 0)

	ch := slave.ReadQueue().Subscribe()
	defer slave.ReadQueue().Unsubscribe(ch)

	if err := s.MasterDriver().Ops().FlushBuffer(master); err != nil {
		t.Fatalf("FlushBuffer failed: %v", err)
	}

	if !slave.Control().Pktstatus.Has(tty.PktFlushWrite) {
		t.Error("peer pktstatus should carry the flush-write indicator")
	}
	select {
	case <-ch:
	default:
		t.Error("peer readers should be woken by flush")
	}

	orphan := tty.New(s.MasterDriver(), 5)
	if err := s.MasterDriver().Ops().FlushBuffer(orphan); !errors.Is(err, tty.ErrNoSuchDevice) {
		t.Errorf("FlushBuffer without link = %v, want ErrNoSuchDevice", err)
	}
}

func TestSetTermiosPacketFlowIndicators(t *testing.T) {
	s := newSubsystem(t, Options{})
	master, slave := installPair(t, s, 0)
	ops := s.SlaveDriver().Ops()

	t.Run("MasterSideRejected", func(t *testing.T) {
		if err := ops.SetTermios(master, termios.Default()); !errors.Is(err, tty.ErrNotSupported) {
			t.Errorf("SetTermios on master = %v, want ErrNotSupported", err)
		}
	})

	t.Run("IgnoredOutsidePacketMode", func(t *testing.T) {
		old := slave.Termios()
		next := old
		next.Iflag |= termios.IXON
		slave.SetTermios(next)

		if err := ops.SetTermios(slave, old); err != nil {
			t.Fatalf("SetTermios failed: %v", err)
		}
		if got := slave.Control().Pktstatus; got != 0 {
			t.Errorf("pktstatus = %#x, want untouched without packet mode", got)
		}
	})

	t.Run("FlowEdgeSignalsMaster", func(t *testing.T) {
		master.WithControl(func(c *tty.ControlInfo) { c.Packet = true })

		// Start from a state with ^S/^Q flow off.
		base := slave.Termios()
		base.Iflag &^= termios.IXON
		slave.SetTermios(base)

		old := slave.Termios()
		next := old
		next.Iflag |= termios.IXON
		next.Cc[termios.VSTOP] = 0x13
		next.Cc[termios.VSTART] = 0x11
		slave.SetTermios(next)

		ch := master.ReadQueue().Subscribe()
		defer master.ReadQueue().Unsubscribe(ch)

		if err := ops.SetTermios(slave, old); err != nil {
			t.Fatalf("SetTermios failed: %v", err)
		}
		if !slave.Control().Pktstatus.Has(tty.PktDoStop) {
			t.Error("pktstatus should carry do-stop after enabling ^S/^Q flow")
		}
		select {
		case <-ch:
		default:
			t.Error("master readers should be woken by the flow edge")
		}

		// And back off again: do-stop is replaced by no-stop.
		old = slave.Termios()
		next = old
		next.Iflag &^= termios.IXON
		slave.SetTermios(next)

		if err := ops.SetTermios(slave, old); err != nil {
			t.Fatalf("SetTermios failed: %v", err)
		}
		status := slave.Control().Pktstatus
		if !status.Has(tty.PktNoStop) || status.Has(tty.PktDoStop) {
			t.Errorf("pktstatus = %#x, want no-stop without do-stop", status)
		}
	})
}
