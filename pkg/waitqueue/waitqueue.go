// Package waitqueue provides the wait/notify primitive used by terminal
// endpoints to park readers and writers until the peer makes progress.
//
// Wakeups are edge-triggered, at-most-once notifications: a waiter that
// is woken must re-check the condition it was waiting on, and a wakeup
// delivered while nobody waits is dropped. Nothing in this package
// blocks while holding its lock.
package waitqueue

import (
	"context"
	"sync"
)

// Event mask bits carried by masked wakeups. The values mirror the
// poll/epoll readiness bits so callers can pass them straight through
// to a poll implementation.
const (
	EventIn  uint32 = 0x0001 // data available to read
	EventOut uint32 = 0x0004 // room available to write
	EventErr uint32 = 0x0008 // error condition
	EventHup uint32 = 0x0010 // peer hung up
)

// Queue is a set of parked waiters attached to one endpoint.
// The zero value is ready to use.
type Queue struct {
	mu      sync.Mutex
	waiters map[chan uint32]struct{}
}

// Subscribe registers a new waiter and returns its notification
// channel. The channel has a one-slot buffer so a single wakeup is
// retained even if the waiter has not reached its receive yet.
func (q *Queue) Subscribe() chan uint32 {
	ch := make(chan uint32, 1)
	q.mu.Lock()
	if q.waiters == nil {
		q.waiters = make(map[chan uint32]struct{})
	}
	q.waiters[ch] = struct{}{}
	q.mu.Unlock()
	return ch
}

// Unsubscribe removes a waiter previously returned by Subscribe.
// It is safe to call with a channel that was already removed.
func (q *Queue) Unsubscribe(ch chan uint32) {
	q.mu.Lock()
	delete(q.waiters, ch)
	q.mu.Unlock()
}

// Wakeup notifies all current waiters with the given event mask.
// Delivery is non-blocking: a waiter whose buffer slot is already
// occupied keeps the earlier notification and misses this one, which
// is acceptable because waiters re-check state after every wake.
func (q *Queue) Wakeup(mask uint32) {
	q.mu.Lock()
	for ch := range q.waiters {
		select {
		case ch <- mask:
		default:
		}
	}
	q.mu.Unlock()
}

// WakeupAll notifies all current waiters with every readiness bit set.
func (q *Queue) WakeupAll() {
	q.Wakeup(EventIn | EventOut | EventErr | EventHup)
}

// Wait parks the caller until a wakeup arrives or ctx is done.
// It returns the event mask of the wakeup that released it.
func (q *Queue) Wait(ctx context.Context) (uint32, error) {
	ch := q.Subscribe()
	defer q.Unsubscribe(ch)

	select {
	case mask := <-ch:
		return mask, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Len returns the number of parked waiters.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiters)
}
