package orchestrator

import (
	"log/slog"

	"git.home.luguber.info/inful/jbuild/internal/logfields"
	"git.home.luguber.info/inful/jbuild/internal/task"
)

type observers []task.Observer

func (o observers) TaskStarted(project, name string) {
	for _, obs := range o {
		obs.TaskStarted(project, name)
	}
}

func (o observers) TaskFinished(project string, r task.Result) {
	for _, obs := range o {
		obs.TaskFinished(project, r)
	}
}

type logObserver struct {
	log *slog.Logger
}

func (l logObserver) TaskStarted(project, name string) {
	l.log.Debug("Task started", logfields.Project(project), logfields.Task(name))
}

func (l logObserver) TaskFinished(project string, r task.Result) {
	attrs := []any{
		logfields.Project(project), logfields.Task(r.Task), logfields.Outcome(string(r.Outcome)),
		logfields.DurationMS(float64(r.Duration.Milliseconds())),
	}
	switch r.Outcome {
	case task.Failed:
		l.log.Error("Task failed", append(attrs, logfields.Error(r.Err))...)
	case task.Skipped:
		l.log.Info("Task skipped", append(attrs, slog.String("blocked_by", r.Cause))...)
	default:
		l.log.Info("Task finished", attrs...)
	}
}
