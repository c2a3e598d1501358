package metrics

import (
	"time"

	"git.home.luguber.info/inful/jbuild/internal/task"
)

// BuildOutcome is the final status of a run.
type BuildOutcome string

const (
	BuildSucceeded BuildOutcome = "success"
	BuildFailed    BuildOutcome = "failed"
	BuildCanceled  BuildOutcome = "canceled"
)

// Recorder defines observability hooks for run, project and task metrics.
type Recorder interface {
	ObserveTaskDuration(project, task string, d time.Duration)
	IncTaskResult(task string, outcome task.Outcome)
	IncProjectOutcome(outcome string)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
	SetProjectConcurrency(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveTaskDuration(string, string, time.Duration) {}
func (NoopRecorder) IncTaskResult(string, task.Outcome)                {}
func (NoopRecorder) IncProjectOutcome(string)                          {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)                {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)                      {}
func (NoopRecorder) SetProjectConcurrency(int)                         {}

// TaskObserver feeds task executor events into a Recorder.
type TaskObserver struct {
	Recorder Recorder
}

func (TaskObserver) TaskStarted(string, string) {}

func (o TaskObserver) TaskFinished(project string, r task.Result) {
	if o.Recorder == nil {
		return
	}
	if r.Outcome == task.Succeeded || r.Outcome == task.Failed {
		o.Recorder.ObserveTaskDuration(project, r.Task, r.Duration)
	}
	o.Recorder.IncTaskResult(r.Task, r.Outcome)
}
