package log

import "time"

// Event represents one trace event emitted by the terminal subsystem.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// PairID uniquely identifies the installed pair (UUID).
	PairID string `cbor:"2,keyasint,omitempty"`

	// Driver is the name of the driver owning the endpoint.
	Driver string `cbor:"3,keyasint,omitempty"`

	// Index is the endpoint index within its driver.
	Index int `cbor:"4,keyasint"`

	// Subtype indicates the endpoint role.
	Subtype Subtype `cbor:"5,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"6,keyasint"`

	// Type-specific payload (one of these will be set).
	Op    *OpEvent    `cbor:"7,keyasint,omitempty"`  // Completed operation
	State *StateEvent `cbor:"8,keyasint,omitempty"`  // Flag/state transition
	Error *ErrorEvent `cbor:"9,keyasint,omitempty"`  // Failed operation
}

// Subtype indicates the endpoint role in a trace event.
type Subtype uint8

const (
	// SubtypeMaster is the controlling side of a pair.
	SubtypeMaster Subtype = 0
	// SubtypeSlave is the terminal side of a pair.
	SubtypeSlave Subtype = 1
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

// Category classifies the event type.
type Category uint8

const (
	// CategoryOp indicates a completed subsystem operation.
	CategoryOp Category = 0
	// CategoryState indicates an endpoint state transition.
	CategoryState Category = 1
	// CategoryError indicates a failed operation.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryOp:
		return "OP"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Op identifies a subsystem operation.
type Op uint8

const (
	// OpInstall is pair installation.
	OpInstall Op = 0
	// OpOpen is the endpoint open protocol.
	OpOpen Op = 1
	// OpWrite is a forwarded write.
	OpWrite Op = 2
	// OpFlush is a buffer flush.
	OpFlush Op = 3
	// OpIoctl is a control request.
	OpIoctl Op = 4
	// OpStart is flow-control start.
	OpStart Op = 5
	// OpStop is flow-control stop.
	OpStop Op = 6
	// OpSetTermios is a termios update.
	OpSetTermios Op = 7
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpInstall:
		return "INSTALL"
	case OpOpen:
		return "OPEN"
	case OpWrite:
		return "WRITE"
	case OpFlush:
		return "FLUSH"
	case OpIoctl:
		return "IOCTL"
	case OpStart:
		return "START"
	case OpStop:
		return "STOP"
	case OpSetTermios:
		return "SET_TERMIOS"
	default:
		return "UNKNOWN"
	}
}

// OpEvent captures a completed operation.
type OpEvent struct {
	// Op is the operation performed.
	Op Op `cbor:"1,keyasint"`

	// Requested is the requested byte count (writes only).
	Requested int `cbor:"2,keyasint,omitempty"`

	// Accepted is the accepted byte count (writes only). A value
	// below Requested records backpressure.
	Accepted int `cbor:"3,keyasint,omitempty"`

	// Cmd is the request code (ioctls only).
	Cmd uint32 `cbor:"4,keyasint,omitempty"`
}

// StateEvent captures an endpoint state transition.
type StateEvent struct {
	// What names the state group that changed (flags, packet, flow).
	What string `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`
}

// ErrorEvent captures a failed operation.
type ErrorEvent struct {
	// Op is the operation that failed.
	Op Op `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`
}
