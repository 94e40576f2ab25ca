package tty

import (
	"sync"
	"sync/atomic"

	"github.com/softtty/softtty-go/pkg/port"
	"github.com/softtty/softtty-go/pkg/termios"
	"github.com/softtty/softtty-go/pkg/waitqueue"
)

// TTY is one endpoint of a terminal line. For pseudo-terminals two
// endpoints form a pair, each owned by one of the two paired drivers.
type TTY struct {
	// index is the endpoint's slot in its driver's table.
	index int

	// driver owns this endpoint and fixes its subtype.
	driver *Driver

	// pairID identifies the installed pair in trace logs. Set once
	// during installation, identical on both endpoints.
	pairID string

	flagsMu sync.Mutex
	flags   Flag

	ctrlMu sync.Mutex
	ctrl   ControlInfo

	flowMu sync.Mutex
	flow   FlowInfo

	// count is the open-reference count. Teardown on the final
	// decrement belongs to the generic lifecycle outside this core.
	count atomic.Int32

	linkMu sync.Mutex
	link   *TTY

	portMu sync.Mutex
	port   port.Port

	termiosMu sync.RWMutex
	termios   termios.Termios

	readWq waitqueue.Queue
}

// New creates an endpoint on the given driver at the given index.
// The endpoint starts with the driver's default termios, no link, no
// port, and an open count of zero.
func New(driver *Driver, index int) *TTY {
	return &TTY{
		index:   index,
		driver:  driver,
		termios: driver.InitTermios(),
	}
}

// Index returns the endpoint's index within its driver.
func (t *TTY) Index() int {
	return t.index
}

// Driver returns the owning driver.
func (t *TTY) Driver() *Driver {
	return t.driver
}

// Subtype returns the owning driver's subtype.
func (t *TTY) Subtype() Subtype {
	return t.driver.Subtype()
}

// PairID returns the pair identity assigned at installation, or ""
// before the endpoint is part of an installed pair.
func (t *TTY) PairID() string {
	return t.pairID
}

// SetPairID records the pair identity. Called once by installation.
func (t *TTY) SetPairID(id string) {
	t.pairID = id
}

// Link resolves the peer endpoint. It returns ErrNoSuchDevice when no
// peer was ever linked or the peer has been torn down.
func (t *TTY) Link() (*TTY, error) {
	t.linkMu.Lock()
	defer t.linkMu.Unlock()
	if t.link == nil {
		return nil, ErrNoSuchDevice
	}
	return t.link, nil
}

// SetLink establishes the peer relation. Installation calls it once on
// each endpoint; the relation is never re-pointed afterwards.
func (t *TTY) SetLink(peer *TTY) {
	t.linkMu.Lock()
	t.link = peer
	t.linkMu.Unlock()
}

// DropLink marks the peer as gone. The external teardown path calls it
// on the survivor when one endpoint is destroyed; every later Link
// resolves to ErrNoSuchDevice.
func (t *TTY) DropLink() {
	t.linkMu.Lock()
	t.link = nil
	t.linkMu.Unlock()
}

// Flags returns the current flag set.
func (t *TTY) Flags() Flag {
	t.flagsMu.Lock()
	defer t.flagsMu.Unlock()
	return t.flags
}

// SetFlag sets the given flag bits.
func (t *TTY) SetFlag(f Flag) {
	t.flagsMu.Lock()
	t.flags |= f
	t.flagsMu.Unlock()
}

// ClearFlag clears the given flag bits.
func (t *TTY) ClearFlag(f Flag) {
	t.flagsMu.Lock()
	t.flags &^= f
	t.flagsMu.Unlock()
}

// HasFlag reports whether all bits of f are set.
func (t *TTY) HasFlag(f Flag) bool {
	return t.Flags().Has(f)
}

// WithControl runs fn with the control info locked. fn must not block
// and must not acquire this endpoint's other locks; acquiring the
// peer's control lock inside fn is permitted only on the packet-mode
// enable edge.
func (t *TTY) WithControl(fn func(c *ControlInfo)) {
	t.ctrlMu.Lock()
	fn(&t.ctrl)
	t.ctrlMu.Unlock()
}

// Control returns a snapshot of the control info.
func (t *TTY) Control() ControlInfo {
	t.ctrlMu.Lock()
	defer t.ctrlMu.Unlock()
	return t.ctrl
}

// ResetPktStatus clears the packet status bitset.
func (t *TTY) ResetPktStatus() {
	t.WithControl(func(c *ControlInfo) { c.Pktstatus = 0 })
}

// WithFlow runs fn with the flow info locked. fn must not block.
func (t *TTY) WithFlow(fn func(f *FlowInfo)) {
	t.flowMu.Lock()
	fn(&t.flow)
	t.flowMu.Unlock()
}

// Stopped reports whether the endpoint's output flow is stopped.
func (t *TTY) Stopped() bool {
	t.flowMu.Lock()
	defer t.flowMu.Unlock()
	return t.flow.Stopped
}

// SetStopped sets or clears the stopped flow flag.
func (t *TTY) SetStopped(stopped bool) {
	t.flowMu.Lock()
	t.flow.Stopped = stopped
	t.flowMu.Unlock()
}

// Count returns the open-reference count.
func (t *TTY) Count() int {
	return int(t.count.Load())
}

// IncCount increments the open-reference count.
func (t *TTY) IncCount() {
	t.count.Add(1)
}

// DecCount decrements the open-reference count and returns the new
// value. Reaching zero does not tear the endpoint down here; that is
// owned by the generic lifecycle.
func (t *TTY) DecCount() int {
	return int(t.count.Add(-1))
}

// Port returns the endpoint's bound receive port, or nil before
// installation binds one.
func (t *TTY) Port() port.Port {
	t.portMu.Lock()
	defer t.portMu.Unlock()
	return t.port
}

// SetPort binds the endpoint's receive port and attaches the
// endpoint's read queue to it.
func (t *TTY) SetPort(p port.Port) {
	t.portMu.Lock()
	t.port = p
	t.portMu.Unlock()
	if p != nil {
		p.Bind(&t.readWq)
	}
}

// ReadQueue returns the endpoint's read wait queue. Readers park on it
// and the peer's operations wake it.
func (t *TTY) ReadQueue() *waitqueue.Queue {
	return &t.readWq
}

// Termios returns a copy of the endpoint's termios.
func (t *TTY) Termios() termios.Termios {
	t.termiosMu.RLock()
	defer t.termiosMu.RUnlock()
	return t.termios
}

// SetTermios replaces the endpoint's termios.
func (t *TTY) SetTermios(tm termios.Termios) {
	t.termiosMu.Lock()
	t.termios = tm
	t.termiosMu.Unlock()
}

// Info is a point-in-time snapshot of an endpoint, encodable with
// integer CBOR keys for compact capture files.
type Info struct {
	Driver    string       `cbor:"1,keyasint"`
	Index     int          `cbor:"2,keyasint"`
	Subtype   Subtype      `cbor:"3,keyasint"`
	PairID    string       `cbor:"4,keyasint,omitempty"`
	Count     int          `cbor:"5,keyasint"`
	Flags     Flag         `cbor:"6,keyasint"`
	Packet    bool         `cbor:"7,keyasint,omitempty"`
	Pktstatus PacketStatus `cbor:"8,keyasint,omitempty"`
	Stopped   bool         `cbor:"9,keyasint,omitempty"`
	Buffered  int          `cbor:"10,keyasint"`
}

// Info returns a snapshot of the endpoint's observable state.
func (t *TTY) Info() Info {
	ctrl := t.Control()
	info := Info{
		Driver:    t.driver.Name(),
		Index:     t.index,
		Subtype:   t.Subtype(),
		PairID:    t.pairID,
		Count:     t.Count(),
		Flags:     t.Flags(),
		Packet:    ctrl.Packet,
		Pktstatus: ctrl.Pktstatus,
		Stopped:   t.Stopped(),
	}
	if p := t.Port(); p != nil {
		info.Buffered = p.Buffered()
	}
	return info
}
