package pty

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/softtty/softtty-go/pkg/port"
	"github.com/softtty/softtty-go/pkg/tty"
)

// CommonInstall allocates the peer endpoint for t from the paired
// driver at the same index, binds a fresh port to each endpoint,
// cross-links the two, and takes the installation reference on both.
// In legacy mode both endpoints are additionally registered in their
// drivers' index tables; in Unix98 mode registration belongs to the
// allocation path. It returns the peer endpoint.
//
// Installation cannot fail after both endpoints exist.
func CommonInstall(driver *tty.Driver, t *tty.TTY, legacy bool, portCapacity int) (*tty.TTY, error) {
	other := driver.Other()
	if other == nil {
		return nil, fmt.Errorf("driver %q has no paired driver: %w", driver.Name(), tty.ErrNoSuchDevice)
	}

	peer := tty.New(other, t.Index())
	port0 := port.NewBuffered(portCapacity)
	port1 := port.NewBuffered(portCapacity)

	t.SetTermios(driver.InitTermios())
	peer.SetTermios(other.InitTermios())

	if legacy {
		if err := other.AddTTY(t.Index(), peer); err != nil {
			return nil, err
		}
		if err := driver.AddTTY(t.Index(), t); err != nil {
			other.RemoveTTY(t.Index())
			return nil, err
		}
	}

	// The links are resolve-or-absent references, never owning ones.
	t.SetLink(peer)
	peer.SetLink(t)

	// Each endpoint's bound port is the other endpoint's forwarding
	// target: writes on t resolve the peer and land in port0, writes
	// on the peer land in port1.
	peer.SetPort(port0)
	t.SetPort(port1)

	pairID := uuid.New().String()
	t.SetPairID(pairID)
	peer.SetPairID(pairID)

	t.IncCount()
	peer.IncCount()

	return peer, nil
}

// CommonOpen runs the pair open protocol for t. The checks apply in a
// fixed order and the first failure wins:
//
//  1. unresolved peer
//  2. own OTHER_CLOSED
//  3. peer PTY_LOCK
//  4. slave opening while the master count is not exactly 1
//
// Failures 2-4 set IO_ERROR on t. On success IO_ERROR is cleared on t,
// OTHER_CLOSED is cleared on the peer, and t starts throttled.
func CommonOpen(t *tty.TTY) error {
	peer, err := t.Link()
	if err != nil {
		return err
	}

	if t.HasFlag(tty.FlagOtherClosed) {
		t.SetFlag(tty.FlagIOError)
		return fmt.Errorf("other side closed: %w", tty.ErrIO)
	}

	if peer.HasFlag(tty.FlagPtyLock) {
		t.SetFlag(tty.FlagIOError)
		return fmt.Errorf("peer locked: %w", tty.ErrIO)
	}

	// Only one master: a slave may open only while exactly the
	// installation reference is held on the master side.
	if t.Subtype() == tty.SubtypeSlave && peer.Count() != 1 {
		t.SetFlag(tty.FlagIOError)
		return fmt.Errorf("master reference count %d: %w", peer.Count(), tty.ErrIO)
	}

	t.ClearFlag(tty.FlagIOError)
	peer.ClearFlag(tty.FlagOtherClosed)
	t.SetFlag(tty.FlagThrottled)

	return nil
}
