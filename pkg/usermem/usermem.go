// Package usermem provides bounds-checked typed access to caller-owned
// memory, standing in for the user-space marshaling layer that ioctl
// handlers read their arguments through.
//
// Every access is validated against the memory's bounds before any
// byte moves; an invalid address fails with ErrFault and leaves the
// memory untouched.
package usermem

import (
	"encoding/binary"
	"errors"
	"sync"
)

// ErrFault is returned for any access outside the memory's bounds.
var ErrFault = errors.New("bad address")

// Memory is a bounds-checked window of caller-owned memory.
// Implemented by Buffer.
type Memory interface {
	// ReadU32 reads the 32-bit little-endian value at addr.
	ReadU32(addr uintptr) (uint32, error)

	// WriteU32 writes a 32-bit little-endian value at addr.
	WriteU32(addr uintptr, v uint32) error

	// Size returns the number of addressable bytes.
	Size() int
}

// Buffer is a Memory backed by a byte slice, addressed from 0.
type Buffer struct {
	mu  sync.Mutex
	mem []byte
}

// NewBuffer creates a Buffer with size addressable bytes.
func NewBuffer(size int) *Buffer {
	return &Buffer{mem: make([]byte, size)}
}

// ReadU32 reads the 32-bit value at addr.
func (b *Buffer) ReadU32(addr uintptr) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inBounds(addr, 4) {
		return 0, ErrFault
	}
	return binary.LittleEndian.Uint32(b.mem[addr:]), nil
}

// WriteU32 writes a 32-bit value at addr.
func (b *Buffer) WriteU32(addr uintptr, v uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inBounds(addr, 4) {
		return ErrFault
	}
	binary.LittleEndian.PutUint32(b.mem[addr:], v)
	return nil
}

// Size returns the number of addressable bytes.
func (b *Buffer) Size() int {
	return len(b.mem)
}

// inBounds guards against wrap-around on addr+n as well as plain
// out-of-range addresses.
func (b *Buffer) inBounds(addr uintptr, n int) bool {
	size := uintptr(len(b.mem))
	return addr <= size && uintptr(n) <= size-addr
}

// Compile-time interface satisfaction check.
var _ Memory = (*Buffer)(nil)
