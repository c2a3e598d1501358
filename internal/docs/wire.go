package docs

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/jbuild/internal/docs/colorize"
	"git.home.luguber.info/inful/jbuild/internal/docs/srchtml"
	"git.home.luguber.info/inful/jbuild/internal/logfields"
	"git.home.luguber.info/inful/jbuild/internal/task"
)

// Task names registered by Wire.
const (
	TaskJavadoc      = "javadoc"
	TaskColorize     = "colorize"
	TaskRenderSource = "renderSource"
)

// WireOptions selects the post-processing steps.
type WireOptions struct {
	Colorize   bool
	SourceHTML bool
	Style      string
	// Fallback module directory for source pages when the task has no module name.
	ProjectName string
	// Substitute resolves build tokens in rendered sources.
	Substitute func([]byte) []byte
}

// Wire registers the documentation chain on c: javadoc, then colorize, then
// renderSource, each depending on the previous one. It is idempotent.
func Wire(c *task.Container, t *Task, gen Generator, o WireOptions) {
	module := func() string {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.ModuleName != "" {
			return t.ModuleName
		}
		return o.ProjectName
	}

	javadoc, _ := c.Register(TaskJavadoc, func(ctx context.Context, _ *task.Task) error {
		return Generate(ctx, t, gen)
	})
	javadoc.Describe("Generates API documentation").SetSpec(t)
	last := TaskJavadoc

	if o.Colorize {
		t.AddStep(Step{Name: StepColorize, Target: Colorized, Run: func(ctx context.Context, t *Task) error {
			stats, err := colorize.Dir(ctx, t.OutputDir, colorize.Options{
				Module:      module(),
				SourceLinks: o.SourceHTML,
				Style:       o.Style,
			})
			if err == nil {
				slog.Debug("Colorized documentation", logfields.Step(StepColorize),
					slog.Int("scanned", stats.Scanned), slog.Int("rewritten", stats.Rewritten))
			}
			return err
		}})
		col, _ := c.Register(TaskColorize, stepAction(t, StepColorize))
		col.Describe("Highlights code in generated documentation").DependsOn(last)
		last = TaskColorize
	}
	if o.SourceHTML {
		t.AddStep(Step{Name: StepRenderSource, Target: SourceRendered, Run: func(ctx context.Context, t *Task) error {
			t.mu.Lock()
			roots, enc := append([]string(nil), t.SourceRoots...), t.Encoding
			t.mu.Unlock()
			n, err := srchtml.Render(ctx, roots, srchtml.Options{
				OutputDir:  t.OutputDir,
				Module:     module(),
				Encoding:   enc,
				Style:      o.Style,
				Substitute: o.Substitute,
			})
			if err == nil {
				slog.Debug("Rendered sources", logfields.Step(StepRenderSource), slog.Int("pages", n))
			}
			return err
		}})
		rs, _ := c.Register(TaskRenderSource, stepAction(t, StepRenderSource))
		rs.Describe("Renders highlighted source pages").DependsOn(last)
	}
}

func stepAction(t *Task, step string) task.Action {
	return func(ctx context.Context, _ *task.Task) error {
		return t.RunStep(ctx, step)
	}
}

// LastTask returns the final task name of the chain Wire registers for o.
func LastTask(o WireOptions) string {
	switch {
	case o.SourceHTML:
		return TaskRenderSource
	case o.Colorize:
		return TaskColorize
	default:
		return TaskJavadoc
	}
}
