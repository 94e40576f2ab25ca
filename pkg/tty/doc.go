// Package tty implements the core data model of the terminal subsystem.
//
// # Object Hierarchy
//
// The subsystem is built from three kinds of objects:
//
//	Registry > Driver > TTY (endpoint)
//
// A Driver owns a bounded table of TTY endpoints of one subtype
// (master or slave) and carries the Operations capability that gives
// the endpoints their behavior. A Registry holds the registered
// drivers and the control device nodes, and is built explicitly at
// subsystem startup — it is injected into call sites, never reached
// through package globals.
//
// # Endpoint State
//
// Each TTY groups its mutable state into independently locked parts:
// the flag set, the control info (packet mode and packet status), and
// the flow info (stopped). The open-reference count is atomic. An
// operation never holds one endpoint's lock while acquiring the same
// lock on its peer, with a single documented exception in the packet
// mode ioctl.
//
// # Peer Links
//
// Paired endpoints reference each other through a resolve-or-absent
// link: Link returns the peer or ErrNoSuchDevice once the peer has
// been torn down. The link is never an owning reference, so a pair
// cannot keep itself alive as a cycle.
package tty
