package docs

import (
	"context"
	"slices"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

// Step names.
const (
	StepColorize     = "colorize"
	StepRenderSource = "render-source"
)

// StepFunc transforms the generated output directory of a task.
type StepFunc func(ctx context.Context, t *Task) error

// Step is a named post-processing transformation.
type Step struct {
	Name   string
	Target State
	Run    StepFunc
}

// AddStep appends a post-processing step. Registration is deduplicated by
// name; it reports whether the step was added.
func (t *Task) AddStep(s Step) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if slices.ContainsFunc(t.steps, func(e Step) bool { return e.Name == s.Name }) {
		return false
	}
	t.steps = append(t.steps, s)
	return true
}

// Steps returns the post-processing steps in order.
func (t *Task) Steps() []Step {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.steps)
}

// StepNames returns the ordered step names.
func (t *Task) StepNames() []string {
	steps := t.Steps()
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Name
	}
	return out
}

// RunStep executes one post-processing step. It refuses to run unless
// generation succeeded and every earlier step completed.
func (t *Task) RunStep(ctx context.Context, name string) error {
	steps := t.Steps()
	i := slices.IndexFunc(steps, func(s Step) bool { return s.Name == name })
	if i < 0 {
		return errors.InternalError("unknown documentation step").WithContext("step", name).Build()
	}
	state := t.State()
	if state == NotConfigured || state == Configured || state == Failed {
		return errors.DocsError("documentation was not generated").
			WithContext("step", name).WithContext("state", string(state)).Build()
	}
	if i > 0 && state == Generated {
		return errors.InternalError("documentation step ran out of order").WithContext("step", name).Build()
	}
	if err := steps[i].Run(ctx, t); err != nil {
		_ = t.Transition(Failed)
		return errors.DocsError("documentation post-processing failed").
			WithContext("step", name).WithCause(err).Build()
	}
	return t.Transition(steps[i].Target)
}
