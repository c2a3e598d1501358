package project

import (
	"iter"
	"sync"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

// DuplicateProjectError reports a second registration under the same name.
type DuplicateProjectError struct {
	Name string
}

func (e *DuplicateProjectError) Error() string { return "duplicate project: " + e.Name }

// Registry holds projects keyed by name in insertion order.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Project
	order  []*Project
	frozen bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Project)}
}

// Register adds p exactly once. A duplicate name yields a fatal project error
// wrapping DuplicateProjectError; registration after Freeze is a lifecycle error.
func (r *Registry) Register(p *Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return errors.LifecycleError("project registered after declaration phase").
			WithProject(p.Name()).Build()
	}
	if _, exists := r.byName[p.Name()]; exists {
		return errors.ProjectError("duplicate project name").
			WithProject(p.Name()).
			WithCause(&DuplicateProjectError{Name: p.Name()}).Build()
	}
	r.byName[p.Name()] = p
	r.order = append(r.order, p)
	return nil
}

// Freeze rejects further registration.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Get looks a project up by name.
func (r *Registry) Get(name string) (*Project, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byName[name]
	return p, ok
}

// Len returns the number of registered projects.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// All lazily yields projects in insertion order. Every call starts over.
func (r *Registry) All() iter.Seq[*Project] {
	return func(yield func(*Project) bool) {
		r.mu.RLock()
		snapshot := append([]*Project(nil), r.order...)
		r.mu.RUnlock()
		for _, p := range snapshot {
			if !yield(p) {
				return
			}
		}
	}
}
