package termios

// Input mode flags (Iflag).
const (
	IGNBRK uint32 = 0x0001 // ignore break condition
	BRKINT uint32 = 0x0002 // break generates interrupt
	IGNPAR uint32 = 0x0004 // ignore parity errors
	PARMRK uint32 = 0x0008 // mark parity errors
	INPCK  uint32 = 0x0010 // enable input parity check
	ISTRIP uint32 = 0x0020 // strip eighth bit
	INLCR  uint32 = 0x0040 // map NL to CR on input
	IGNCR  uint32 = 0x0080 // ignore CR
	ICRNL  uint32 = 0x0100 // map CR to NL on input
	IXON   uint32 = 0x0400 // enable output flow control
	IXANY  uint32 = 0x0800 // any character restarts output
	IXOFF  uint32 = 0x1000 // enable input flow control
)

// Output mode flags (Oflag).
const (
	OPOST uint32 = 0x0001 // enable output processing
	ONLCR uint32 = 0x0004 // map NL to CR-NL on output
)

// Control mode flags (Cflag).
const (
	CS8    uint32 = 0x0030 // 8-bit characters
	CSTOPB uint32 = 0x0040 // two stop bits
	CREAD  uint32 = 0x0080 // enable receiver
	PARENB uint32 = 0x0100 // enable parity
	HUPCL  uint32 = 0x0400 // hang up on last close
)

// Local mode flags (Lflag).
const (
	ISIG   uint32 = 0x0001 // enable signal generation
	ICANON uint32 = 0x0002 // canonical input processing
	ECHO   uint32 = 0x0008 // enable echo
	ECHOE  uint32 = 0x0010 // echo erase as backspace
	ECHOK  uint32 = 0x0020 // echo kill
	ECHONL uint32 = 0x0040 // echo NL even without ECHO
	IEXTEN uint32 = 0x8000 // enable extended processing
)

// Baud rate selectors (stored in Ispeed/Ospeed).
const (
	B0     uint32 = 0x0000
	B9600  uint32 = 0x000D
	B19200 uint32 = 0x000E
	B38400 uint32 = 0x000F
)

// Control character indices into Cc.
const (
	VINTR  = 0
	VQUIT  = 1
	VERASE = 2
	VKILL  = 3
	VEOF   = 4
	VTIME  = 5
	VMIN   = 6
	VSTART = 8
	VSTOP  = 9
	VSUSP  = 10
	VEOL   = 11

	// NCCS is the number of control character slots.
	NCCS = 19
)

// Termios describes the mode of a terminal line.
type Termios struct {
	Iflag  uint32
	Oflag  uint32
	Cflag  uint32
	Lflag  uint32
	Line   uint8
	Cc     [NCCS]uint8
	Ispeed uint32
	Ospeed uint32
}

// Default returns the standard line settings used for new terminals:
// canonical mode with echo and signals enabled.
func Default() Termios {
	t := Termios{
		Iflag:  ICRNL | IXON,
		Oflag:  OPOST | ONLCR,
		Cflag:  B38400 | CS8 | CREAD | HUPCL,
		Lflag:  ISIG | ICANON | ECHO | ECHOE | ECHOK | ECHONL | IEXTEN,
		Ispeed: B38400,
		Ospeed: B38400,
	}
	t.Cc[VINTR] = 0x03  // ^C
	t.Cc[VQUIT] = 0x1C  // ^\
	t.Cc[VERASE] = 0x7F // DEL
	t.Cc[VKILL] = 0x15  // ^U
	t.Cc[VEOF] = 0x04   // ^D
	t.Cc[VMIN] = 1
	t.Cc[VSTART] = 0x11 // ^Q
	t.Cc[VSTOP] = 0x13  // ^S
	t.Cc[VSUSP] = 0x1A  // ^Z
	return t
}

// DefaultPty returns the line settings applied to pseudo-terminal
// drivers at registration: a raw 8-bit virtual line with echo and
// flow control disabled and a fixed nominal baud rate.
func DefaultPty() Termios {
	t := Default()
	t.Iflag = 0
	t.Oflag = 0
	t.Lflag = 0
	t.Cflag = B38400 | CS8 | CREAD
	t.Ispeed = B38400
	t.Ospeed = B38400
	return t
}

// Copy returns an independent copy of t. Termios is a value type, so
// plain assignment copies too; Copy exists for call sites that want to
// make the copy explicit.
func (t Termios) Copy() Termios {
	return t
}

// CharsEqual reports whether the control character tables of a and b
// are identical.
func CharsEqual(a, b Termios) bool {
	return a.Cc == b.Cc
}
