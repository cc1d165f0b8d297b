package forms

import (
	"sync"

	"github.com/google/uuid"
)

// Instance is the registry's view of a live form regardless of entity type.
type Instance interface {
	ID() uuid.UUID
	Dismiss()
	Closed() bool
}

// Registry tracks the live form instances of one admin session. Dismissing or
// dropping an instance bumps its generation so in-flight results die with it.
type Registry struct {
	mu    sync.Mutex
	forms map[uuid.UUID]Instance
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{forms: make(map[uuid.UUID]Instance)}
}

// Add registers a form instance.
func (r *Registry) Add(form Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forms[form.ID()] = form
}

// Get returns the live instance for an id, or nil when it is unknown or
// already closed.
func (r *Registry) Get(id uuid.UUID) Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	form, ok := r.forms[id]
	if !ok || form.Closed() {
		delete(r.forms, id)
		return nil
	}
	return form
}

// Drop dismisses and removes a form instance.
func (r *Registry) Drop(id uuid.UUID) {
	r.mu.Lock()
	form, ok := r.forms[id]
	delete(r.forms, id)
	r.mu.Unlock()
	if ok {
		form.Dismiss()
	}
}

// Len reports how many instances are still registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms)
}
