// Package daemon re-runs builds on a schedule or when the build files change.
package daemon

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/jbuild/internal/logfields"
)

// DefaultDebounce coalesces editor save bursts.
const DefaultDebounce = 500 * time.Millisecond

// BuildFunc runs one build for cfg. Its error is logged; the loop continues.
type BuildFunc func(ctx context.Context, cfg *config.Config) error

// Options configure Watch and Serve.
type Options struct {
	ConfigPath string
	Build      BuildFunc
	Debounce   time.Duration
}

func (o Options) load() (*config.Config, error) {
	if o.Build == nil {
		return nil, errors.InternalError("daemon requires a build function").Build()
	}
	return config.Load(o.ConfigPath)
}

func run(ctx context.Context, build BuildFunc, cfg *config.Config, trigger string) {
	start := time.Now()
	err := build(ctx, cfg)
	attrs := []any{slog.String("trigger", trigger), logfields.DurationMS(float64(time.Since(start).Milliseconds()))}
	if err != nil {
		slog.Error("Build failed", append(attrs, logfields.Error(err))...)
		return
	}
	slog.Info("Build succeeded", attrs...)
}

// WatchList returns the files whose change triggers a rebuild: the build
// file and every included project declaration.
func WatchList(cfg *config.Config, configPath string) []string {
	out := []string{configPath}
	for _, inc := range cfg.Include {
		out = append(out, filepath.Join(cfg.ProjectDir(inc), config.ProjectFileName))
	}
	return out
}

// NeedsRebuild reports whether a change to changed requires a new build.
// A project declaration change always does; a build file change only when
// it alters the build-affecting configuration.
func NeedsRebuild(prev, next *config.Config, configPath string, changed []string) bool {
	root, err := filepath.Abs(configPath)
	if err != nil {
		return true
	}
	for _, p := range changed {
		if p != root {
			return true
		}
	}
	return prev.Snapshot() != next.Snapshot()
}

// Watch builds once, then rebuilds whenever a watched file changes, until
// ctx is done. A build file that fails to load keeps the previous
// configuration in effect.
func Watch(ctx context.Context, o Options) error {
	cfg, err := o.load()
	if err != nil {
		return err
	}
	debounce := o.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := NewWatcher(debounce)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	if err := w.Set(WatchList(cfg, o.ConfigPath)); err != nil {
		return err
	}

	run(ctx, o.Build, cfg, "initial")
	slog.Info("Watching for changes", logfields.Path(o.ConfigPath), slog.Int("projects", len(cfg.Include)))

	return w.Run(ctx, func(ctx context.Context, changed []string) {
		next, err := config.Load(o.ConfigPath)
		if err != nil {
			slog.Error("Configuration reload failed; keeping previous", logfields.Error(err))
			return
		}
		if !NeedsRebuild(cfg, next, o.ConfigPath, changed) {
			slog.Info("Configuration unchanged; skipping rebuild")
			return
		}
		cfg = next
		if err := w.Set(WatchList(cfg, o.ConfigPath)); err != nil {
			slog.Warn("Cannot update watched files", logfields.Error(err))
		}
		run(ctx, o.Build, cfg, "change")
	})
}

// Serve runs builds on the daemon schedule until ctx is done. The build
// file is reloaded before every run.
func Serve(ctx context.Context, o Options) error {
	cfg, err := o.load()
	if err != nil {
		return err
	}
	s, err := NewScheduler()
	if err != nil {
		return err
	}

	job := func() {
		next, err := config.Load(o.ConfigPath)
		if err != nil {
			slog.Error("Configuration reload failed; keeping previous", logfields.Error(err))
		} else {
			cfg = next
		}
		run(ctx, o.Build, cfg, "schedule")
	}

	switch {
	case cfg.Daemon.Cron != "":
		_, err = s.ScheduleCron("scheduled-build", cfg.Daemon.Cron, job)
	case cfg.Daemon.Interval != "":
		var iv time.Duration
		if iv, err = time.ParseDuration(cfg.Daemon.Interval); err == nil {
			_, err = s.ScheduleEvery("scheduled-build", iv, job)
		}
	default:
		err = errors.ConfigError("daemon requires daemon.interval or daemon.cron").Build()
	}
	if err != nil {
		_ = s.Stop(ctx)
		return err
	}

	s.Start()
	<-ctx.Done()
	return s.Stop(context.WithoutCancel(ctx))
}
