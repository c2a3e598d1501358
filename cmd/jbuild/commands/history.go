package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/eventstore"
	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/jbuild/internal/report"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int    `short:"n" help:"Number of runs to show" default:"10"`
	RunID string `arg:"" name:"run" optional:"" help:"Show the projects of one run"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if cfg.History.Database == "" {
		return errors.ConfigError("history.database is not configured").Build()
	}
	store, err := eventstore.NewSQLiteStore(cfg.Path(cfg.History.Database))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := signalContext()
	defer cancel()
	proj := eventstore.NewRunHistoryProjection(store, 0)
	if err := proj.Rebuild(ctx); err != nil {
		return err
	}
	if h.RunID != "" {
		run, ok := proj.Get(h.RunID)
		if !ok {
			return errors.NewError(errors.CategoryNotFound, "run not found").WithContext("run_id", h.RunID).Build()
		}
		return WriteRun(os.Stdout, run)
	}
	return WriteHistory(os.Stdout, proj.History(h.Limit))
}

// WriteHistory prints one line per run, newest first.
func WriteHistory(w io.Writer, runs []eventstore.RunSummary) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs recorded")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tCOMMAND\tTARGETS\tSTATUS\tFAILED\tDURATION")
	for _, r := range runs {
		failed := 0
		for _, p := range r.Projects {
			if p.Outcome == report.OutcomeFailed {
				failed++
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d/%d\t%s\n",
			r.RunID, r.StartedAt.Local().Format(time.DateTime), r.Command,
			strings.Join(r.Targets, ","), r.Status, failed, len(r.Projects),
			r.Duration.Round(time.Millisecond))
	}
	return tw.Flush()
}

// WriteRun prints the project outcomes of one run.
func WriteRun(w io.Writer, r eventstore.RunSummary) error {
	fmt.Fprintf(w, "%s %s %s (%s)\n", r.RunID, r.Command, r.Status, r.Duration.Round(time.Millisecond))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROJECT\tOUTCOME\tFAILED TASK\tDURATION\tERROR")
	for _, p := range r.Projects {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.Project, p.Outcome, p.FailedTask, p.Duration.Round(time.Millisecond), p.Error)
	}
	return tw.Flush()
}
