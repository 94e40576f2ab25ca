// Package pty implements Unix98 pseudo-terminal pair semantics on top
// of the core tty objects.
//
// # Pairing
//
// A pair is created by opening the ptmx control node: an index is
// allocated, a master endpoint is created on the ptm driver, and
// installation allocates the slave endpoint on the pts driver at the
// same index. The two endpoints are cross-linked with non-owning
// links and each is bound to the port that buffers bytes headed for
// its reader.
//
// # Data Flow
//
// A write on one endpoint resolves the peer and delivers into the
// peer's bound port; the port's accepted count is the write's return
// value. A short count is backpressure, not an error. Flow control
// (start/stop), buffer flushes, and packet mode signal the reading
// side out of band through the packet status bitset and the read wait
// queues.
//
// # Locking
//
// Endpoint state groups each have their own lock and no operation
// holds one endpoint's lock while taking the peer's, with one
// exception: enabling packet mode resets the peer's packet status
// under both control locks.
package pty
