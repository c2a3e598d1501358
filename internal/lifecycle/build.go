// Package lifecycle implements the two-phase build protocol. During the
// declaration phase projects register themselves in any order; Evaluate closes
// the phase and fires every configuration callback exactly once, so callbacks
// always observe the final declared state of every project.
package lifecycle

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sync"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/jbuild/internal/project"
)

// ErrBarrierPassed is returned for hooks or declarations arriving after Evaluate.
var ErrBarrierPassed = stdErrors.New("lifecycle: configuration barrier already passed")

// Phase is the current protocol phase.
type Phase int

const (
	Declaration Phase = iota
	Configuration
)

func (p Phase) String() string {
	if p == Declaration {
		return "declaration"
	}
	return "configuration"
}

// Callback runs once after every project finished declaring itself.
type Callback func(ctx context.Context, projects *project.Registry) error

type hook struct {
	name  string
	fn    Callback
	fired bool
}

// Build coordinates one run's declaration and configuration phases.
type Build struct {
	mu       sync.Mutex
	registry *project.Registry
	phase    Phase
	hooks    []*hook
}

// New creates a build in the declaration phase.
func New() *Build {
	return &Build{registry: project.NewRegistry()}
}

// Projects returns the registry.
func (b *Build) Projects() *project.Registry { return b.registry }

// Phase returns the current phase.
func (b *Build) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}

// Declare builds a project declaration through fn and registers the frozen
// result. It is only allowed during the declaration phase.
func (b *Build) Declare(name string, fn func(*project.Declaration) error) (*project.Project, error) {
	if b.Phase() != Declaration {
		return nil, errors.LifecycleError("project declared after configuration barrier").
			WithProject(name).WithCause(ErrBarrierPassed).Build()
	}
	d := &project.Declaration{Name: name}
	if fn != nil {
		if err := fn(d); err != nil {
			if errors.IsClassified(err) {
				return nil, err
			}
			return nil, errors.ProjectError("project declaration failed").
				WithProject(name).WithCause(err).Build()
		}
	}
	if d.Name != name {
		return nil, errors.ProjectError("declaration renamed project").
			WithProject(name).WithContext("renamed", d.Name).Build()
	}
	p := project.New(*d)
	if err := b.registry.Register(p); err != nil {
		return nil, err
	}
	return p, nil
}

// OnAllProjectsReady schedules cb for the barrier. name identifies the hook in
// errors and logs.
func (b *Build) OnAllProjectsReady(name string, cb Callback) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.phase != Declaration {
		return ErrBarrierPassed
	}
	b.hooks = append(b.hooks, &hook{name: name, fn: cb})
	return nil
}

// Evaluate closes the declaration phase and fires the callbacks in
// registration order. A callback fires at most once even when Evaluate is
// called again. The first failing callback aborts evaluation.
func (b *Build) Evaluate(ctx context.Context) error {
	b.mu.Lock()
	b.phase = Configuration
	hooks := append([]*hook(nil), b.hooks...)
	b.mu.Unlock()
	b.registry.Freeze()

	for _, h := range hooks {
		b.mu.Lock()
		fired := h.fired
		h.fired = true
		b.mu.Unlock()
		if fired {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.fn(ctx, b.registry); err != nil {
			if ce, ok := errors.AsClassified(err); ok && ce.IsStructural() {
				return err
			}
			return errors.LifecycleError(fmt.Sprintf("configuration hook %q failed", h.name)).WithCause(err).Build()
		}
	}
	return nil
}
