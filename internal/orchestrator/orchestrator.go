// Package orchestrator runs one build: it loads and declares every included
// project, passes the configuration barrier, and executes the requested
// targets of independent projects concurrently.
package orchestrator

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/jbuild/internal/buildenv"
	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/docs"
	"git.home.luguber.info/inful/jbuild/internal/eventstore"
	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/jbuild/internal/git"
	"git.home.luguber.info/inful/jbuild/internal/jdk"
	"git.home.luguber.info/inful/jbuild/internal/lifecycle"
	"git.home.luguber.info/inful/jbuild/internal/logfields"
	"git.home.luguber.info/inful/jbuild/internal/metrics"
	"git.home.luguber.info/inful/jbuild/internal/notify"
	"git.home.luguber.info/inful/jbuild/internal/project"
	"git.home.luguber.info/inful/jbuild/internal/publish"
	"git.home.luguber.info/inful/jbuild/internal/report"
	"git.home.luguber.info/inful/jbuild/internal/setup"
	"git.home.luguber.info/inful/jbuild/internal/task"
)

// Options select what a run does and inject its collaborators. Zero values
// select the real toolchain, a captured environment and no metrics, history
// or notifications.
type Options struct {
	// Command names the run in history, e.g. "build".
	Command string
	// Targets are task names run in every project that has them.
	Targets []string
	// Projects restricts execution to the named projects.
	Projects []string
	DryRun   bool

	Toolchain setup.Toolchain
	Env       *buildenv.Env
	Recorder  metrics.Recorder
	History   eventstore.Store
	Notifier  *notify.Notifier
	Lookup    publish.LookupFunc
	Uploader  publish.Uploader
	Signer    *publish.Signer
}

// Result is the outcome of a run.
type Result struct {
	RunID    string
	Reports  []report.ProjectReport
	Duration time.Duration
}

// Failed counts failed projects.
func (r *Result) Failed() int {
	n := 0
	for _, pr := range r.Reports {
		if pr.Failed() {
			n++
		}
	}
	return n
}

// Err summarizes the run as an error when any project failed.
func (r *Result) Err() error {
	if n := r.Failed(); n > 0 {
		return errors.NewError(errors.CategoryTask, "build failed").
			WithContext("failed_projects", n).WithContext("run_id", r.RunID).Build()
	}
	return nil
}

// Orchestrator runs builds for one configuration.
type Orchestrator struct {
	cfg  *config.Config
	opts Options
}

// New creates an orchestrator.
func New(cfg *config.Config, opts Options) *Orchestrator {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Toolchain == nil {
		opts.Toolchain = jdk.New(cfg.Toolchain, nil)
	}
	return &Orchestrator{cfg: cfg, opts: opts}
}

// Prepare loads and declares every project, then evaluates the build so
// every project is fully configured. Structural errors abort before any
// project executes.
func (o *Orchestrator) Prepare(ctx context.Context) (*lifecycle.Build, error) {
	files, err := LoadProjects(ctx, o.cfg)
	if err != nil {
		return nil, err
	}

	b := lifecycle.New()
	mod := setup.New(setup.Options{
		Config:    o.cfg,
		Env:       o.env(ctx),
		Toolchain: o.opts.Toolchain,
		Revision:  o.revision(),
		DryRun:    o.opts.DryRun,
		Lookup:    o.opts.Lookup,
		Uploader:  o.opts.Uploader,
		Signer:    o.opts.Signer,
	})
	if err := b.OnAllProjectsReady("setup", mod.Apply); err != nil {
		return nil, err
	}
	if err := DeclareAll(b, o.cfg, files); err != nil {
		return nil, err
	}
	if err := b.Evaluate(ctx); err != nil {
		return nil, err
	}
	slog.Debug("Build configured", slog.Int("projects", b.Projects().Len()))
	return b, nil
}

func (o *Orchestrator) env(ctx context.Context) buildenv.Env {
	if o.opts.Env != nil {
		return *o.opts.Env
	}
	version, err := jdk.Probe(ctx, o.cfg.Toolchain.Java)
	if err != nil {
		slog.Warn("JDK version unknown", logfields.Error(err))
	}
	return buildenv.Capture(buildenv.Options{CopyrightSince: o.cfg.Library.CopyrightSince, JDK: version})
}

func (o *Orchestrator) revision() string {
	info, err := git.Revision(o.cfg.RootDir)
	if err != nil {
		slog.Debug("No source revision", logfields.Error(err))
		return ""
	}
	return info.Commit
}

// Run prepares the build and executes the targets.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := slog.With(logfields.RunID(runID))

	b, err := o.Prepare(ctx)
	if err != nil {
		o.opts.Recorder.IncBuildOutcome(metrics.BuildFailed)
		return nil, err
	}
	projects, err := o.selected(b.Projects())
	if err != nil {
		return nil, err
	}

	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name()
	}
	o.record(ctx, func() (eventstore.Record, error) {
		return eventstore.NewRunStarted(runID, o.opts.Command, o.opts.Targets, names, o.cfg.Snapshot())
	})
	log.Info("Starting build", slog.String("command", o.opts.Command),
		slog.Any("targets", o.opts.Targets), slog.Int("projects", len(projects)))

	parallelism := max(o.cfg.Build.Parallelism, 1)
	o.opts.Recorder.SetProjectConcurrency(parallelism)

	reports := make([]report.ProjectReport, len(projects))
	obs := observers{metrics.TaskObserver{Recorder: o.opts.Recorder}, logObserver{log: log}}
	var g errgroup.Group
	g.SetLimit(parallelism)
	var mu sync.Mutex
	for i, p := range projects {
		g.Go(func() error {
			r := o.runProject(ctx, p, obs)
			mu.Lock()
			reports[i] = r
			mu.Unlock()
			o.finishProject(ctx, runID, r)
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{RunID: runID, Reports: reports, Duration: time.Since(start)}
	outcome := metrics.BuildSucceeded
	switch {
	case ctx.Err() != nil:
		outcome = metrics.BuildCanceled
	case res.Failed() > 0:
		outcome = metrics.BuildFailed
	}
	o.opts.Recorder.ObserveBuildDuration(res.Duration)
	o.opts.Recorder.IncBuildOutcome(outcome)
	o.record(ctx, func() (eventstore.Record, error) {
		return eventstore.NewRunFinished(runID, string(outcome), res.Failed(), res.Duration)
	})
	log.Info("Build finished", logfields.Outcome(string(outcome)),
		logfields.DurationMS(float64(res.Duration.Milliseconds())), slog.Int("failed", res.Failed()))
	return res, nil
}

func (o *Orchestrator) selected(reg *project.Registry) ([]*project.Project, error) {
	var out []*project.Project
	for p := range reg.All() {
		if len(o.opts.Projects) == 0 || slices.Contains(o.opts.Projects, p.Name()) {
			out = append(out, p)
		}
	}
	for _, name := range o.opts.Projects {
		if _, ok := reg.Get(name); !ok {
			return nil, errors.ValidationError("unknown project").WithProject(name).Build()
		}
	}
	return out, nil
}

func (o *Orchestrator) runProject(ctx context.Context, p *project.Project, obs task.Observer) report.ProjectReport {
	start := time.Now()
	var targets []string
	for _, t := range o.opts.Targets {
		if p.Tasks().Has(t) {
			targets = append(targets, t)
		}
	}
	results, err := []task.Result(nil), error(nil)
	if len(targets) > 0 {
		results, err = p.Tasks().Execute(ctx, obs, targets...)
	}
	state := docs.NotConfigured
	if dt := p.DocTask(); dt != nil {
		state = dt.State()
	}
	r := report.New(p.Name(), p.Metadata().Version, state, results, time.Since(start))
	r.Err = err
	return r
}

func (o *Orchestrator) finishProject(ctx context.Context, runID string, r report.ProjectReport) {
	outcome := r.Outcome()
	o.opts.Recorder.IncProjectOutcome(outcome)

	failedTask := ""
	cause := r.Err
	if r.Failure != nil {
		failedTask = r.Failure.Task
		cause = r.Failure.Err
	}
	o.record(ctx, func() (eventstore.Record, error) {
		return eventstore.NewProjectFinished(runID, r.Project, outcome, failedTask, cause, r.Duration)
	})
	if o.opts.Notifier != nil {
		ev := notify.Event{RunID: runID, Project: r.Project, Version: r.Version, Outcome: outcome, FailedTask: failedTask}
		if cause != nil {
			ev.Error = cause.Error()
		}
		if err := o.opts.Notifier.ProjectFinished(context.WithoutCancel(ctx), ev); err != nil {
			slog.Warn("Outcome notification failed", logfields.Project(r.Project), logfields.Error(err))
		}
	}
}

// record appends a history event; history failures never fail the build.
func (o *Orchestrator) record(ctx context.Context, build func() (eventstore.Record, error)) {
	if o.opts.History == nil {
		return
	}
	rec, err := build()
	if err == nil {
		err = o.opts.History.Append(context.WithoutCancel(ctx), &rec)
	}
	if err != nil {
		slog.Warn("Cannot record run history", logfields.Error(err))
	}
}
