package commands

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/daemon"
	"git.home.luguber.info/inful/jbuild/internal/orchestrator"
	"git.home.luguber.info/inful/jbuild/internal/publish"
	"git.home.luguber.info/inful/jbuild/internal/setup"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Debounce time.Duration `help:"Quiet period before a rebuild" default:"500ms"`
	Targets  []string      `arg:"" optional:"" help:"Tasks to run (default: build)"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	targets := w.Targets
	if len(targets) == 0 {
		targets = []string{setup.TaskBuild}
	}
	ctx, cancel := signalContext()
	defer cancel()
	return daemon.Watch(ctx, daemon.Options{
		ConfigPath: root.Config,
		Debounce:   w.Debounce,
		Build: func(ctx context.Context, cfg *config.Config) error {
			return RunTargets(ctx, cfg, orchestrator.Options{Command: "watch", Targets: targets})
		},
	})
}

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct{}

func (d *DaemonCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()
	slog.Info("Starting daemon mode", slog.String("config", root.Config))
	return daemon.Serve(ctx, daemon.Options{
		ConfigPath: root.Config,
		Build: func(ctx context.Context, cfg *config.Config) error {
			targets := []string{setup.TaskBuild}
			if cfg.Daemon.Publish && publish.IsSnapshot(cfg.Library.Version) {
				targets = append(targets, publish.TaskPublish)
			}
			return RunTargets(ctx, cfg, orchestrator.Options{Command: "daemon", Targets: targets})
		},
	})
}
