// Package server keeps the registry of active game sessions shared by every
// connection handler.
package server

import (
	"sort"
	"sync"

	"github.com/Tyrowin/wordhunt/internal/game"
)

// registration is one active connection: its game session and the transport
// used to notify and close it on shutdown.
type registration struct {
	session *game.Session
	conn    transport
}

// Registry maps client ids to active sessions. Every operation holds the
// mutex only for the map access itself, never across socket I/O.
type Registry struct {
	mu      sync.Mutex
	entries map[string]registration
	closed  bool
}

// NewRegistry returns an empty, open Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registration)}
}

// add registers id. It fails with ErrServerClosed once the registry has been
// drained and with ErrServerFull when limit is positive and reached.
func (r *Registry) add(id string, reg registration, limit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrServerClosed
	}
	if limit > 0 && len(r.entries) >= limit {
		return ErrServerFull
	}
	r.entries[id] = reg
	return nil
}

// Remove deletes id and reports whether it was present. Removing an unknown
// or already drained id is a no-op.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[id]
	return ok
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// IDs returns the registered client ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	sort.Strings(ids)
	return ids
}

// drain empties the registry, refuses further registrations, and returns the
// removed entries so the caller can notify them outside the lock.
func (r *Registry) drain() []registration {
	r.mu.Lock()
	defer r.mu.Unlock()

	drained := make([]registration, 0, len(r.entries))
	for id, reg := range r.entries {
		drained = append(drained, reg)
		delete(r.entries, id)
	}
	r.closed = true
	return drained
}
