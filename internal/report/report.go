// Package report summarizes a run per project: whether it was configured,
// whether documentation was generated, whether it was published, and which
// task failed.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"git.home.luguber.info/inful/jbuild/internal/docs"
	"git.home.luguber.info/inful/jbuild/internal/publish"
	"git.home.luguber.info/inful/jbuild/internal/task"
)

// Project outcomes, from least to most complete. Failed and Canceled override.
const (
	OutcomeConfigured = "configured"
	OutcomeBuilt      = "built"
	OutcomeGenerated  = "generated"
	OutcomePublished  = "published"
	OutcomeFailed     = "failed"
	OutcomeCanceled   = "canceled"
)

// ProjectReport is the result of one project in a run.
type ProjectReport struct {
	Project   string
	Version   string
	Generated bool
	Published bool
	Results   []task.Result
	Duration  time.Duration
	// Failure is the first failed task, nil when none failed.
	Failure *task.Result
	// Err is a structural error that prevented execution.
	Err error
}

// New derives a report from task results and the documentation state.
func New(project, version string, state docs.State, results []task.Result, d time.Duration) ProjectReport {
	r := ProjectReport{Project: project, Version: version, Results: results, Duration: d}
	switch state {
	case docs.Generated, docs.Colorized, docs.SourceRendered:
		r.Generated = true
	}
	for _, res := range results {
		if res.Task == publish.TaskPublish && res.Outcome == task.Succeeded {
			r.Published = true
		}
	}
	if f, ok := task.FirstFailure(results); ok {
		r.Failure = &f
	}
	return r
}

// Outcome condenses the report into one word.
func (r ProjectReport) Outcome() string {
	switch {
	case r.Err != nil || r.Failure != nil:
		return OutcomeFailed
	case r.canceled():
		return OutcomeCanceled
	case r.Published:
		return OutcomePublished
	case r.Generated:
		return OutcomeGenerated
	case r.succeeded() > 0:
		return OutcomeBuilt
	default:
		return OutcomeConfigured
	}
}

// Failed reports whether the project failed.
func (r ProjectReport) Failed() bool { return r.Outcome() == OutcomeFailed }

func (r ProjectReport) canceled() bool {
	for _, res := range r.Results {
		if res.Outcome == task.Canceled {
			return true
		}
	}
	return false
}

func (r ProjectReport) succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == task.Succeeded {
			n++
		}
	}
	return n
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

func colored(outcome string) string {
	switch outcome {
	case OutcomeFailed:
		return red.Sprint(outcome)
	case OutcomeCanceled:
		return yellow.Sprint(outcome)
	case OutcomePublished, OutcomeGenerated, OutcomeBuilt:
		return green.Sprint(outcome)
	default:
		return cyan.Sprint(outcome)
	}
}

// Render writes the summary table followed by one line per failure.
func Render(w io.Writer, reports []ProjectReport) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROJECT\tVERSION\tOUTCOME\tTASKS\tDOCS\tPUBLISHED\tDURATION")
	failed := 0
	for _, r := range reports {
		outcome := r.Outcome()
		if outcome == OutcomeFailed {
			failed++
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%s\t%s\n",
			r.Project,
			r.Version,
			colored(outcome),
			r.succeeded(), len(r.Results),
			yesNo(r.Generated),
			yesNo(r.Published),
			r.Duration.Round(time.Millisecond),
		)
	}
	_ = tw.Flush()

	for _, r := range reports {
		switch {
		case r.Err != nil:
			red.Fprintf(w, "✗ %s: %v\n", r.Project, r.Err)
		case r.Failure != nil:
			red.Fprintf(w, "✗ %s\n", r.Failure.Err)
			if skipped := skippedBy(r.Results); len(skipped) > 0 {
				fmt.Fprintf(w, "  skipped: %s\n", strings.Join(skipped, ", "))
			}
		}
	}
	if failed == 0 {
		green.Fprintf(w, "✓ %d project(s) succeeded\n", len(reports))
	} else {
		red.Fprintf(w, "%d of %d project(s) failed\n", failed, len(reports))
	}
}

func skippedBy(results []task.Result) []string {
	var out []string
	for _, r := range results {
		if r.Outcome == task.Skipped {
			out = append(out, r.Task)
		}
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
