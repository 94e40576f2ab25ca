package pty

import (
	"errors"
	"sync"
)

// ErrExhausted is returned when the pair index space is full.
var ErrExhausted = errors.New("pty index space exhausted")

// indexAllocator hands out the lowest free pair index below its limit.
type indexAllocator struct {
	mu    sync.Mutex
	used  map[int]struct{}
	limit int
}

func newIndexAllocator(limit int) *indexAllocator {
	return &indexAllocator{
		used:  make(map[int]struct{}),
		limit: limit,
	}
}

// Alloc reserves and returns the lowest free index.
func (a *indexAllocator) Alloc() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := 0; i < a.limit; i++ {
		if _, taken := a.used[i]; !taken {
			a.used[i] = struct{}{}
			return i, nil
		}
	}
	return 0, ErrExhausted
}

// Release frees an index. Releasing a free index is a no-op.
func (a *indexAllocator) Release(i int) {
	a.mu.Lock()
	delete(a.used, i)
	a.mu.Unlock()
}

// InUse returns the number of reserved indices.
func (a *indexAllocator) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.used)
}
