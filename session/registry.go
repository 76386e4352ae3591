package session

import (
	"errors"
	"sync"
)

// ErrSessionNotFound is returned for an unknown session ID.
var ErrSessionNotFound = errors.New("session not found")

// Registry keeps isolated sessions by ID. Sessions share nothing but the
// factory that creates them.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Orchestrator
	newFn    func() *Orchestrator
}

// NewRegistry creates a registry whose sessions come from newFn.
func NewRegistry(newFn func() *Orchestrator) *Registry {
	return &Registry{
		sessions: make(map[string]*Orchestrator),
		newFn:    newFn,
	}
}

// Create starts a new empty session.
func (r *Registry) Create() *Orchestrator {
	o := r.newFn()
	r.mu.Lock()
	r.sessions[o.ID()] = o
	r.mu.Unlock()
	return o
}

// Get looks up a session.
func (r *Registry) Get(id string) (*Orchestrator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return o, nil
}

// Delete ends a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
