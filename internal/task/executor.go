package task

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"
)

// Outcome is the terminal state of one planned task.
type Outcome string

const (
	Succeeded Outcome = "succeeded"
	Failed    Outcome = "failed"
	Skipped   Outcome = "skipped"
	Canceled  Outcome = "canceled"
)

// Result records what happened to one task.
type Result struct {
	Task     string
	Outcome  Outcome
	Err      error
	Duration time.Duration
	// Cause names the dependency whose outcome prevented this task from running.
	Cause string
}

// Error attributes a task failure to its project and task.
type Error struct {
	Project string
	Task    string
	Err     error
}

func (e *Error) Error() string { return fmt.Sprintf("%s:%s: %v", e.Project, e.Task, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts a task error from err's chain.
func AsError(err error) (*Error, bool) {
	var te *Error
	if stdErrors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// Observer is notified around every task execution.
type Observer interface {
	TaskStarted(project, task string)
	TaskFinished(project string, r Result)
}

// NoopObserver ignores all notifications.
type NoopObserver struct{}

func (NoopObserver) TaskStarted(string, string)  {}
func (NoopObserver) TaskFinished(string, Result) {}

// Execute plans targets and runs them sequentially. A task runs only when
// every dependency succeeded; a finalizer runs only when the task it
// finalizes was executed. Once ctx is done the remaining tasks are canceled.
// The returned error is non-nil only for planning failures; task failures are
// reported through the results.
func (c *Container) Execute(ctx context.Context, obs Observer, targets ...string) ([]Result, error) {
	plan, err := c.Plan(targets...)
	if err != nil {
		return nil, err
	}
	if obs == nil {
		obs = NoopObserver{}
	}

	finalizes := make(map[string][]string)
	for _, t := range plan {
		for _, fin := range t.Finalizers() {
			finalizes[fin] = append(finalizes[fin], t.name)
		}
	}

	outcomes := make(map[string]Outcome, len(plan))
	results := make([]Result, 0, len(plan))
	record := func(r Result) {
		outcomes[r.Task] = r.Outcome
		results = append(results, r)
	}

	for _, t := range plan {
		if ctx.Err() != nil {
			r := Result{Task: t.name, Outcome: Canceled, Err: ctx.Err()}
			record(r)
			obs.TaskFinished(c.project, r)
			continue
		}
		if cause, blocked := blockedBy(t, outcomes, finalizes[t.name]); blocked {
			r := Result{Task: t.name, Outcome: Skipped, Cause: cause}
			record(r)
			obs.TaskFinished(c.project, r)
			continue
		}

		obs.TaskStarted(c.project, t.name)
		start := time.Now()
		runErr := t.run(ctx)
		r := Result{Task: t.name, Outcome: Succeeded, Duration: time.Since(start)}
		if runErr != nil {
			r.Outcome = Failed
			if stdErrors.Is(runErr, context.Canceled) || stdErrors.Is(runErr, context.DeadlineExceeded) {
				r.Outcome = Canceled
			}
			r.Err = &Error{Project: c.project, Task: t.name, Err: runErr}
		}
		record(r)
		obs.TaskFinished(c.project, r)
	}
	return results, nil
}

func blockedBy(t *Task, outcomes map[string]Outcome, finalized []string) (string, bool) {
	for _, dep := range t.Dependencies() {
		if outcomes[dep] != Succeeded {
			return dep, true
		}
	}
	if len(finalized) == 0 {
		return "", false
	}
	for _, name := range finalized {
		if o := outcomes[name]; o == Succeeded || o == Failed {
			return "", false
		}
	}
	return finalized[0], true
}

// FirstFailure returns the first failed result, if any. Canceled tasks are
// not failures.
func FirstFailure(results []Result) (Result, bool) {
	for _, r := range results {
		if r.Outcome == Failed {
			return r, true
		}
	}
	return Result{}, false
}
