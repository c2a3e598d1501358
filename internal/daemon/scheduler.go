package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

// Scheduler wraps a gocron scheduler. Jobs never overlap: a tick that fires
// while the previous run is still going is rescheduled.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.DaemonError("failed to create scheduler").WithCause(err).Build()
	}
	return &Scheduler{scheduler: s}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler", slog.Int("jobs", len(s.scheduler.Jobs())))
	s.scheduler.Start()
}

// Stop shuts the scheduler down and waits for running jobs.
func (s *Scheduler) Stop(context.Context) error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleEvery runs fn every interval. It returns the job id.
func (s *Scheduler) ScheduleEvery(name string, interval time.Duration, fn func()) (string, error) {
	if interval <= 0 {
		return "", errors.ValidationError("schedule interval must be positive").
			WithContext("interval", interval.String()).Build()
	}
	return s.add(name, gocron.DurationJob(interval), fn)
}

// ScheduleCron runs fn on a five-field cron expression.
func (s *Scheduler) ScheduleCron(name, expr string, fn func()) (string, error) {
	return s.add(name, gocron.CronJob(expr, false), fn)
}

func (s *Scheduler) add(name string, def gocron.JobDefinition, fn func()) (string, error) {
	job, err := s.scheduler.NewJob(def, gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", errors.ValidationError("invalid schedule").WithContext("job", name).WithCause(err).Build()
	}
	return job.ID().String(), nil
}
