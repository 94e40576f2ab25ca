package pty

import (
	"fmt"
	"sort"
	"sync"

	"github.com/softtty/softtty-go/pkg/tty"
)

// Ptmx is the pty control device. Opening it allocates a pair index,
// creates a master endpoint on the ptm driver, and runs installation,
// which produces the linked slave. Ptmx also keeps the name surface
// for live slaves ("pts/N").
type Ptmx struct {
	mu     sync.Mutex
	ptm    *tty.Driver
	ida    *indexAllocator
	slaves map[int]*tty.TTY
}

func newPtmx(ptm *tty.Driver, limit int) *Ptmx {
	return &Ptmx{
		ptm:    ptm,
		ida:    newIndexAllocator(limit),
		slaves: make(map[int]*tty.TTY),
	}
}

// OpenControl routes an open of the control node into pair
// installation.
func (p *Ptmx) OpenControl() (*tty.TTY, error) {
	return p.OpenMaster()
}

// OpenMaster creates a new pair and returns its opened master
// endpoint. The slave is reachable through the master's link and
// through Slave.
func (p *Ptmx) OpenMaster() (*tty.TTY, error) {
	index, err := p.ida.Alloc()
	if err != nil {
		return nil, err
	}

	master := tty.New(p.ptm, index)
	ops := p.ptm.Ops()

	if err := ops.Install(p.ptm, master); err != nil {
		p.ida.Release(index)
		return nil, fmt.Errorf("install pair %d: %w", index, err)
	}
	if err := ops.Open(master); err != nil {
		p.ida.Release(index)
		return nil, fmt.Errorf("open master %d: %w", index, err)
	}

	slave, err := master.Link()
	if err != nil {
		p.ida.Release(index)
		return nil, err
	}

	p.mu.Lock()
	p.slaves[index] = slave
	p.mu.Unlock()

	return master, nil
}

// Slave returns the live slave endpoint at index.
func (p *Ptmx) Slave(index int) (*tty.TTY, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.slaves[index]
	if !ok {
		return nil, tty.ErrNoSuchDevice
	}
	return s, nil
}

// Names lists the live slave nodes as "pts/N", sorted by index.
func (p *Ptmx) Names() []string {
	p.mu.Lock()
	indices := make([]int, 0, len(p.slaves))
	for i := range p.slaves {
		indices = append(indices, i)
	}
	p.mu.Unlock()

	sort.Ints(indices)
	names := make([]string, len(indices))
	for i, idx := range indices {
		names[i] = fmt.Sprintf("pts/%d", idx)
	}
	return names
}

// Count returns the number of live pairs.
func (p *Ptmx) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slaves)
}

// Release tears a pair down on behalf of the external lifecycle: both
// ports are closed, both links dropped, and the index returns to the
// allocator. Endpoints that survive in callers resolve their peer as
// absent from here on.
func (p *Ptmx) Release(index int) error {
	p.mu.Lock()
	slave, ok := p.slaves[index]
	delete(p.slaves, index)
	p.mu.Unlock()

	if !ok {
		return tty.ErrNoSuchDevice
	}

	if master, err := slave.Link(); err == nil {
		if mp := master.Port(); mp != nil {
			_ = mp.Close()
		}
		master.SetFlag(tty.FlagOtherClosed)
		master.DropLink()
	}
	if sp := slave.Port(); sp != nil {
		_ = sp.Close()
	}
	slave.SetFlag(tty.FlagOtherClosed)
	slave.DropLink()

	p.ida.Release(index)
	return nil
}

// Compile-time interface satisfaction check.
var _ tty.ControlDevice = (*Ptmx)(nil)
