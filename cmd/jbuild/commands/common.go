// Package commands implements the jbuild command line.
package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/eventstore"
	"git.home.luguber.info/inful/jbuild/internal/logfields"
	"git.home.luguber.info/inful/jbuild/internal/metrics"
	"git.home.luguber.info/inful/jbuild/internal/notify"
	"git.home.luguber.info/inful/jbuild/internal/orchestrator"
	"git.home.luguber.info/inful/jbuild/internal/report"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Build file path" default:"jbuild.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Compile, test and assemble every project"`
	Docs    DocsCmd    `cmd:"" help:"Generate API documentation"`
	Publish PublishCmd `cmd:"" help:"Sign and publish artifacts to the Maven repository"`
	Plan    PlanCmd    `cmd:"" help:"Print each project's configured tasks"`
	Init    InitCmd    `cmd:"" help:"Write an example build file"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild whenever a build file changes"`
	Daemon  DaemonCmd  `cmd:"" help:"Run scheduled builds"`
	History HistoryCmd `cmd:"" help:"Show previous runs"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel maps -v and JBUILD_LOG_LEVEL to a level; the flag wins.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("JBUILD_LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// RunTargets executes one build for cfg and prints the summary. It returns
// a task-category error when any project failed.
func RunTargets(ctx context.Context, cfg *config.Config, opts orchestrator.Options) error {
	var reg *prom.Registry
	if cfg.Metrics.Textfile != "" {
		reg = prom.NewRegistry()
		opts.Recorder = metrics.NewPrometheusRecorder(reg)
	}
	if cfg.History.Database != "" && opts.History == nil {
		store, err := eventstore.NewSQLiteStore(cfg.Path(cfg.History.Database))
		if err != nil {
			slog.Warn("Run history disabled", logfields.Error(err))
		} else {
			defer func() { _ = store.Close() }()
			opts.History = store
		}
	}
	if cfg.Events.NATSURL != "" && opts.Notifier == nil {
		n, err := notify.Connect(ctx, cfg.Events)
		if err != nil {
			slog.Warn("Outcome notifications disabled", logfields.Error(err))
		} else {
			defer n.Close()
			opts.Notifier = n
		}
	}

	res, err := orchestrator.New(cfg, opts).Run(ctx)
	if err != nil {
		return err
	}
	report.Render(os.Stdout, res.Reports)

	if reg != nil {
		path := cfg.Path(cfg.Metrics.Textfile)
		if err := metrics.WriteTextfile(path, reg); err != nil {
			slog.Warn("Cannot write metrics", logfields.Error(err))
		} else {
			slog.Debug("Wrote metrics", logfields.Path(path))
		}
	}
	return res.Err()
}
