package tty

import "strings"

// Flag is the endpoint flag set.
type Flag uint32

const (
	// FlagOtherClosed marks that the peer endpoint has closed. Only
	// the peer's open clears it; the endpoint never clears it on
	// itself.
	FlagOtherClosed Flag = 1 << iota

	// FlagPtyLock blocks the peer from opening until cleared.
	FlagPtyLock

	// FlagIOError records that the endpoint failed an open protocol
	// check; cleared by the next successful open.
	FlagIOError

	// FlagThrottled means the endpoint's reader is not currently
	// draining input.
	FlagThrottled
)

// Has reports whether all bits of other are set in f.
func (f Flag) Has(other Flag) bool {
	return f&other == other
}

// String returns the set flag names joined by "|".
func (f Flag) String() string {
	var names []string
	for _, e := range []struct {
		bit  Flag
		name string
	}{
		{FlagOtherClosed, "OTHER_CLOSED"},
		{FlagPtyLock, "PTY_LOCK"},
		{FlagIOError, "IO_ERROR"},
		{FlagThrottled, "THROTTLED"},
	} {
		if f.Has(e.bit) {
			names = append(names, e.name)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, "|")
}

// PacketStatus is the out-of-band status bitset delivered on a master's
// read stream when packet mode is enabled. The bit values are the
// classic TIOCPKT status byte values.
type PacketStatus uint8

const (
	// PktData is the status byte prefixed to ordinary data.
	PktData PacketStatus = 0x00

	// PktFlushRead signals the slave's read queue was flushed.
	PktFlushRead PacketStatus = 0x01

	// PktFlushWrite signals the slave's write queue was flushed.
	PktFlushWrite PacketStatus = 0x02

	// PktStop signals output was stopped.
	PktStop PacketStatus = 0x04

	// PktStart signals output was restarted.
	PktStart PacketStatus = 0x08

	// PktNoStop signals stop/start characters are not ^S/^Q.
	PktNoStop PacketStatus = 0x10

	// PktDoStop signals stop/start characters are ^S/^Q.
	PktDoStop PacketStatus = 0x20

	// PktIoctl signals a termios change on the slave side.
	PktIoctl PacketStatus = 0x40
)

// Has reports whether all bits of other are set in s.
func (s PacketStatus) Has(other PacketStatus) bool {
	return s&other == other
}

// ControlInfo is the packet-mode state of an endpoint. Pktstatus is
// meaningful only while Packet is true.
type ControlInfo struct {
	Packet    bool
	Pktstatus PacketStatus
}

// FlowInfo is the flow-control state of an endpoint.
type FlowInfo struct {
	// Stopped gates the forwarding write path: while set, writes
	// accept nothing.
	Stopped bool

	// TcoStopped mirrors a stop requested by the TCOOFF ioctl rather
	// than the stop character.
	TcoStopped bool
}
