package chat

import (
	"slices"
	"strings"
	"sync"
)

// Handle identifies one live transport connection. The registry stores it
// without interpreting it.
type Handle string

type registration struct {
	handle   Handle
	username string
}

// Registry maps user ids to their live connection and is the source of truth
// for who is online.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registration)}
}

// Register inserts or silently overwrites the entry for userID. It reports
// the handle that was replaced, if any.
func (r *Registry) Register(h Handle, userID, username string) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, replaced := r.entries[userID]
	r.entries[userID] = registration{handle: h, username: username}
	return prev.handle, replaced
}

// Lookup returns the current handle for userID.
func (r *Registry) Lookup(userID string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[userID]
	return e.handle, ok
}

// Deregister removes userID. Absent ids are ignored.
func (r *Registry) Deregister(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, userID)
}

// DeregisterHandle removes userID only while it is still bound to h, so a
// superseded connection cannot evict its replacement.
func (r *Registry) DeregisterHandle(userID string, h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[userID]
	if !ok || e.handle != h {
		return false
	}
	delete(r.entries, userID)
	return true
}

// ListOnline returns a snapshot of registered identities sorted by id.
func (r *Registry) ListOnline() []Identity {
	r.mu.RLock()
	out := make([]Identity, 0, len(r.entries))
	for id, e := range r.entries {
		out = append(out, Identity{ID: id, Username: e.username})
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b Identity) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Handles returns the handles of every registered connection.
func (r *Registry) Handles() []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Handle, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.handle)
	}
	return out
}

// HandlesOf resolves user ids to handles, skipping users that are offline.
func (r *Registry) HandlesOf(userIDs []string) []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Handle, 0, len(userIDs))
	for _, id := range userIDs {
		if e, ok := r.entries[id]; ok {
			out = append(out, e.handle)
		}
	}
	return out
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
