// Package task models the per-project task graph: idempotent registration by
// name, dependency and finalizer edges, deterministic ordering and execution
// with dependency short-circuit.
package task

import (
	"context"
	"slices"
	"sync"
)

// Action is the work a task performs. It receives its own task so it can read
// the spec configured on it at execution time.
type Action func(ctx context.Context, t *Task) error

// Task is a named unit of work inside one project's container.
type Task struct {
	mu          sync.RWMutex
	name        string
	description string
	action      Action
	spec        any
	dependsOn   []string
	finalizedBy []string
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Description returns the human readable summary.
func (t *Task) Description() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.description
}

// Describe sets the description.
func (t *Task) Describe(d string) *Task {
	t.mu.Lock()
	t.description = d
	t.mu.Unlock()
	return t
}

// SetAction replaces the action.
func (t *Task) SetAction(a Action) *Task {
	t.mu.Lock()
	t.action = a
	t.mu.Unlock()
	return t
}

// SetSpec attaches the task's typed configuration.
func (t *Task) SetSpec(spec any) *Task {
	t.mu.Lock()
	t.spec = spec
	t.mu.Unlock()
	return t
}

// Spec returns the attached configuration.
func (t *Task) Spec() any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.spec
}

// SpecOf returns the task's spec when it has type T.
func SpecOf[T any](t *Task) (T, bool) {
	v, ok := t.Spec().(T)
	return v, ok
}

// DependsOn adds hard dependency edges. Duplicates are ignored.
func (t *Task) DependsOn(names ...string) *Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, n := range names {
		if n != t.name && !slices.Contains(t.dependsOn, n) {
			t.dependsOn = append(t.dependsOn, n)
		}
	}
	return t
}

// FinalizedBy adds finalizer edges: the named tasks run after t whenever t ran,
// whether it succeeded or failed. Duplicates are ignored.
func (t *Task) FinalizedBy(names ...string) *Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, n := range names {
		if n != t.name && !slices.Contains(t.finalizedBy, n) {
			t.finalizedBy = append(t.finalizedBy, n)
		}
	}
	return t
}

// Dependencies returns a copy of the dependency names in insertion order.
func (t *Task) Dependencies() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.dependsOn)
}

// Finalizers returns a copy of the finalizer names in insertion order.
func (t *Task) Finalizers() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.finalizedBy)
}

func (t *Task) run(ctx context.Context) error {
	t.mu.RLock()
	a := t.action
	t.mu.RUnlock()
	if a == nil {
		return nil
	}
	return a(ctx, t)
}
