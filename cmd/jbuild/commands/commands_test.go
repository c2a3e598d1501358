package commands

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/eventstore"
	"git.home.luguber.info/inful/jbuild/internal/lifecycle"
	"git.home.luguber.info/inful/jbuild/internal/project"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("jbuild"), kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func TestParseCommands(t *testing.T) {
	cli, _ := parse(t, "-c", "/tmp/jbuild.yaml", "build", "-p", "lattices", "jar")
	require.Equal(t, "/tmp/jbuild.yaml", cli.Config)
	require.Equal(t, []string{"lattices"}, cli.Build.Projects)
	require.Equal(t, []string{"jar"}, cli.Build.Targets)

	cli, ctx := parse(t, "publish", "--dry-run")
	require.Equal(t, "publish", ctx.Command())
	require.True(t, cli.Publish.DryRun)

	cli, _ = parse(t, "history", "-n", "3")
	require.Equal(t, 3, cli.History.Limit)

	cli, _ = parse(t, "watch")
	require.Equal(t, 500*time.Millisecond, cli.Watch.Debounce)
}

func TestParseLogLevel(t *testing.T) {
	t.Setenv("JBUILD_LOG_LEVEL", "warn")
	require.Equal(t, slog.LevelWarn, parseLogLevel(false))
	require.Equal(t, slog.LevelDebug, parseLogLevel(true))

	t.Setenv("JBUILD_LOG_LEVEL", "")
	require.Equal(t, slog.LevelInfo, parseLogLevel(false))
}

func TestRunInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.DefaultFile)
	require.NoError(t, RunInit(path, false))
	require.FileExists(t, path)
	require.Error(t, RunInit(path, false))
	require.NoError(t, RunInit(path, true))
}

func TestWritePlan(t *testing.T) {
	b := lifecycle.New()
	p, err := b.Declare("lattices", func(d *project.Declaration) error {
		d.Meta.Version = "1.0.0"
		return nil
	})
	require.NoError(t, err)
	c := p.Tasks()
	compile, _ := c.Register("compile", nil)
	compile.Describe("Compiles sources")
	jar, _ := c.Register("jar", nil)
	jar.DependsOn("compile")

	var buf bytes.Buffer
	require.NoError(t, WritePlan(&buf, p, []string{"jar", "missing"}))
	out := buf.String()
	require.Contains(t, out, "lattices 1.0.0")
	require.Regexp(t, `1\. compile\s+Compiles sources`, out)
	require.Regexp(t, `2\. jar\s+after compile`, out)

	buf.Reset()
	require.NoError(t, WritePlan(&buf, p, []string{"missing"}))
	require.Contains(t, buf.String(), "(no tasks)")
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistory(&buf, nil))
	require.Equal(t, "no runs recorded\n", buf.String())

	buf.Reset()
	runs := []eventstore.RunSummary{{
		RunID:     "run-1",
		Command:   "build",
		Targets:   []string{"build"},
		Status:    "failed",
		StartedAt: time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Projects: []eventstore.ProjectSummary{
			{Project: "lattices", Outcome: "built"},
			{Project: "linealgebra", Outcome: "failed", FailedTask: "compile", Error: "javac: 1 error"},
		},
	}}
	require.NoError(t, WriteHistory(&buf, runs))
	require.Contains(t, buf.String(), "RUN")
	require.Regexp(t, `run-1\s+.*build\s+build\s+failed\s+1/2\s+1.5s`, buf.String())

	buf.Reset()
	require.NoError(t, WriteRun(&buf, runs[0]))
	require.Regexp(t, `linealgebra\s+failed\s+compile`, buf.String())
	require.Contains(t, buf.String(), "javac: 1 error")
}
