// Package port implements the byte-sink side of a terminal endpoint.
//
// A Port is the buffering stage between a writer on one side of a
// terminal pair and the reader on the other side. The forwarding path
// pushes bytes in with ReceiveBuf; the owning endpoint's reader drains
// them with Read. A port accepts as much as its buffer can hold and
// reports the accepted count — a short accept is backpressure, not an
// error.
package port

import (
	"errors"
	"sync"

	"github.com/softtty/softtty-go/pkg/waitqueue"
)

// DefaultCapacity is the buffer size used by NewBuffered when the
// caller does not pick one. It matches the write-room hint advertised
// by pty writers.
const DefaultCapacity = 8192

// ErrClosed is returned by Read after Close once the buffer is empty.
var ErrClosed = errors.New("port closed")

// Port accepts bytes forwarded toward one endpoint's reader.
// Implemented by Buffered.
type Port interface {
	// ReceiveBuf delivers up to n bytes of data into the port and
	// returns how many were accepted. aux optionally carries one
	// out-of-band status byte per data byte; ports that do not
	// distinguish may ignore it.
	ReceiveBuf(data []byte, aux []byte, n int) (int, error)

	// Bind attaches the read wait queue of the endpoint that drains
	// this port. Accepted bytes wake it with EventIn.
	Bind(readWq *waitqueue.Queue)

	// Read drains buffered bytes into p.
	Read(p []byte) (int, error)

	// Buffered returns the number of bytes waiting to be read.
	Buffered() int

	// Capacity returns the total buffer size.
	Capacity() int

	// Flush discards all buffered bytes.
	Flush()

	// Close marks the port closed. Further ReceiveBuf calls accept
	// nothing; Read drains the remainder and then reports ErrClosed.
	Close() error
}

// Buffered is a fixed-capacity ring-buffer port.
type Buffered struct {
	mu     sync.Mutex
	buf    []byte
	start  int
	length int
	closed bool
	readWq *waitqueue.Queue
}

// NewBuffered creates a port with the given buffer capacity.
// A capacity of 0 or less selects DefaultCapacity.
func NewBuffered(capacity int) *Buffered {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffered{buf: make([]byte, capacity)}
}

// Bind attaches the reader's wait queue. Bind must be called before
// the port is shared between goroutines.
func (b *Buffered) Bind(readWq *waitqueue.Queue) {
	b.mu.Lock()
	b.readWq = readWq
	b.mu.Unlock()
}

// ReceiveBuf copies up to n bytes from data into the buffer and
// returns the accepted count. It never fails on a full buffer; it
// accepts what fits and lets the caller observe the short count.
func (b *Buffered) ReceiveBuf(data []byte, _ []byte, n int) (int, error) {
	if n > len(data) {
		n = len(data)
	}
	if n <= 0 {
		return 0, nil
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return 0, nil
	}
	free := len(b.buf) - b.length
	if n > free {
		n = free
	}
	for i := 0; i < n; i++ {
		b.buf[(b.start+b.length+i)%len(b.buf)] = data[i]
	}
	b.length += n
	wq := b.readWq
	b.mu.Unlock()

	if n > 0 && wq != nil {
		wq.Wakeup(waitqueue.EventIn)
	}
	return n, nil
}

// Read drains up to len(p) buffered bytes into p. It does not block;
// an empty open port returns 0, nil and the caller is expected to park
// on the bound wait queue.
func (b *Buffered) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(p)
	if n > b.length {
		n = b.length
	}
	for i := 0; i < n; i++ {
		p[i] = b.buf[(b.start+i)%len(b.buf)]
	}
	b.start = (b.start + n) % len(b.buf)
	b.length -= n

	if n == 0 && b.closed {
		return 0, ErrClosed
	}
	return n, nil
}

// Buffered returns the number of bytes waiting to be read.
func (b *Buffered) Buffered() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.length
}

// Capacity returns the total buffer size.
func (b *Buffered) Capacity() int {
	return len(b.buf)
}

// Flush discards all buffered bytes.
func (b *Buffered) Flush() {
	b.mu.Lock()
	b.start = 0
	b.length = 0
	b.mu.Unlock()
}

// Close marks the port closed and wakes the reader so it can observe
// the end of the stream. Close is idempotent.
func (b *Buffered) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	wq := b.readWq
	b.mu.Unlock()

	if wq != nil {
		wq.Wakeup(waitqueue.EventHup)
	}
	return nil
}

// Compile-time interface satisfaction check.
var _ Port = (*Buffered)(nil)
