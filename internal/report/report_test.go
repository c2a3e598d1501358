package report

import (
	"bytes"
	stdErrors "errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/jbuild/internal/docs"
	"git.home.luguber.info/inful/jbuild/internal/task"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestOutcome(t *testing.T) {
	ok := []task.Result{{Task: "compile", Outcome: task.Succeeded}}
	require.Equal(t, OutcomeConfigured, New("b", "1", docs.NotConfigured, nil, 0).Outcome())
	require.Equal(t, OutcomeBuilt, New("b", "1", docs.NotConfigured, ok, 0).Outcome())
	require.Equal(t, OutcomeGenerated, New("a", "1", docs.SourceRendered, ok, 0).Outcome())

	published := append(ok, task.Result{Task: "publish", Outcome: task.Succeeded})
	require.Equal(t, OutcomePublished, New("a", "1", docs.SourceRendered, published, 0).Outcome())

	failing := []task.Result{
		{Task: "javadoc", Outcome: task.Failed, Err: &task.Error{Project: "a", Task: "javadoc", Err: stdErrors.New("boom")}},
		{Task: "colorize", Outcome: task.Skipped, Cause: "javadoc"},
	}
	r := New("a", "1", docs.Failed, failing, 0)
	require.Equal(t, OutcomeFailed, r.Outcome())
	require.Equal(t, "javadoc", r.Failure.Task)

	canceled := []task.Result{{Task: "compile", Outcome: task.Canceled}}
	require.Equal(t, OutcomeCanceled, New("a", "1", docs.NotConfigured, canceled, 0).Outcome())
}

func TestRender(t *testing.T) {
	reports := []ProjectReport{
		New("lattices", "0.1.0", docs.SourceRendered, []task.Result{
			{Task: "javadoc", Outcome: task.Succeeded},
			{Task: "publish", Outcome: task.Succeeded},
		}, 1500*time.Millisecond),
		New("linealgebra", "0.1.0", docs.NotConfigured, []task.Result{
			{Task: "compile", Outcome: task.Failed, Err: &task.Error{Project: "linealgebra", Task: "compile", Err: stdErrors.New("exit status 1")}},
			{Task: "jar", Outcome: task.Skipped, Cause: "compile"},
		}, time.Second),
	}
	var buf bytes.Buffer
	Render(&buf, reports)
	out := buf.String()
	require.Contains(t, out, "PROJECT")
	require.Contains(t, out, "published")
	require.Contains(t, out, "✗ linealgebra:compile: exit status 1")
	require.Contains(t, out, "skipped: jar")
	require.Contains(t, out, "1 of 2 project(s) failed")
}
