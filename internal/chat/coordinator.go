// Package chat implements the presence and room messaging core: who is
// online, which rooms exist and who belongs to them, what was said in each
// room, and who has to hear about every change.
//
// Handlers are pure with respect to the transport. Each one mutates the
// shared Registry, Directory and History and returns the Outbound events the
// caller must deliver. Every structure guards itself with a single lock and
// no handler holds two store locks at once.
package chat

import (
	"sync"
	"time"
)

// Coordinator ties the Registry, Directory and History together and
// implements routing, broadcasting and the connection lifecycle.
type Coordinator struct {
	registry  *Registry
	directory *Directory
	history   *History
	now       func() time.Time
	ids       *messageIDs

	// lifecycle serialises registration in Connect with the
	// superseded-session check and cleanup in Disconnect. Store locks are
	// still taken one at a time inside it.
	lifecycle sync.Mutex
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock overrides the clock used for direct messages and join notices.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCoordinator wires the three shared stores into a Coordinator.
func NewCoordinator(reg *Registry, dir *Directory, hist *History, opts ...Option) *Coordinator {
	c := &Coordinator{
		registry:  reg,
		directory: dir,
		history:   hist,
		now:       time.Now,
		ids:       newMessageIDs(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the connection registry.
func (c *Coordinator) Registry() *Registry { return c.registry }

// Directory returns the room directory.
func (c *Coordinator) Directory() *Directory { return c.directory }

// History returns the message history store.
func (c *Coordinator) History() *History { return c.history }

// Stats counts what the server currently holds.
type Stats struct {
	Users int `json:"users"`
	Rooms int `json:"rooms"`
}

// Snapshot returns the current online-user and room counts.
func (c *Coordinator) Snapshot() Stats {
	return Stats{Users: c.registry.Len(), Rooms: c.directory.Len()}
}
