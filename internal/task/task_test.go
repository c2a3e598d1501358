package task

import (
	"context"
	stdErrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

type recordingObserver struct {
	mu       sync.Mutex
	started  []string
	finished []Result
}

func (o *recordingObserver) TaskStarted(_, task string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, task)
}

func (o *recordingObserver) TaskFinished(_ string, r Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, r)
}

func names(tasks []*Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Name()
	}
	return out
}

func outcomes(results []Result) map[string]Outcome {
	out := make(map[string]Outcome, len(results))
	for _, r := range results {
		out[r.Task] = r.Outcome
	}
	return out
}

func ok(context.Context, *Task) error { return nil }

func TestRegisterIsIdempotent(t *testing.T) {
	c := NewContainer("lattices")
	a, created := c.Register("jar", ok)
	require.True(t, created)
	b, created := c.Register("jar", nil)
	require.False(t, created)
	require.Same(t, a, b)
	require.Equal(t, 1, c.Len())

	a.DependsOn("compile", "compile").FinalizedBy("report", "report")
	require.Equal(t, []string{"compile"}, a.Dependencies())
	require.Equal(t, []string{"report"}, a.Finalizers())
}

func TestSelfEdgesIgnored(t *testing.T) {
	c := NewContainer("p")
	a, _ := c.Register("a", ok)
	a.DependsOn("a").FinalizedBy("a")
	require.Empty(t, a.Dependencies())
	require.Empty(t, a.Finalizers())
}

func TestAllIsRestartable(t *testing.T) {
	c := NewContainer("p")
	c.Register("compile", ok)
	c.Register("test", ok)
	c.Register("jar", ok)

	var first, second []string
	for task := range c.All() {
		first = append(first, task.Name())
	}
	for task := range c.All() {
		second = append(second, task.Name())
	}
	require.Equal(t, []string{"compile", "test", "jar"}, first)
	require.Equal(t, first, second)
}

func TestSpecOf(t *testing.T) {
	c := NewContainer("p")
	task, _ := c.Register("compile", ok)
	task.SetSpec(&struct{ Flags []string }{Flags: []string{"-g"}})

	spec, found := SpecOf[*struct{ Flags []string }](task)
	require.True(t, found)
	require.Equal(t, []string{"-g"}, spec.Flags)

	_, found = SpecOf[string](task)
	require.False(t, found)
}

func TestPlanOrdersByDependenciesThenRegistration(t *testing.T) {
	c := NewContainer("p")
	sign, _ := c.Register("sign", ok)
	jar, _ := c.Register("jar", ok)
	c.Register("compile", ok)
	pom, _ := c.Register("pom", ok)
	sign.DependsOn("jar", "pom")
	jar.DependsOn("compile")
	_ = pom

	plan, err := c.Plan("sign")
	require.NoError(t, err)
	require.Equal(t, []string{"compile", "jar", "pom", "sign"}, names(plan))
}

func TestPlanIncludesFinalizers(t *testing.T) {
	c := NewContainer("p")
	c.Register("compile", ok)
	test, _ := c.Register("test", ok)
	c.Register("coverageReport", ok)
	c.Register("jar", ok)
	test.DependsOn("compile").FinalizedBy("coverageReport")

	plan, err := c.Plan("test")
	require.NoError(t, err)
	require.Equal(t, []string{"compile", "test", "coverageReport"}, names(plan))
}

func TestPlanErrors(t *testing.T) {
	c := NewContainer("p")
	_, err := c.Plan("missing")
	require.Error(t, err)
	require.Equal(t, errors.CategoryValidation, errors.GetCategory(err))

	a, _ := c.Register("a", ok)
	a.DependsOn("ghost")
	_, err = c.Plan("a")
	require.Error(t, err)
	require.Equal(t, errors.CategoryInternal, errors.GetCategory(err))

	c2 := NewContainer("p")
	x, _ := c2.Register("x", ok)
	y, _ := c2.Register("y", ok)
	x.DependsOn("y")
	y.DependsOn("x")
	_, err = c2.Plan()
	require.Error(t, err)
	require.True(t, errors.IsStructural(err))
}

func TestExecuteShortCircuitsDependents(t *testing.T) {
	c := NewContainer("lattices")
	var ran []string
	track := func(name string, fail bool) Action {
		return func(context.Context, *Task) error {
			ran = append(ran, name)
			if fail {
				return stdErrors.New(name + " broke")
			}
			return nil
		}
	}
	c.Register("javadoc", track("javadoc", true))
	colorize, _ := c.Register("colorize", track("colorize", false))
	render, _ := c.Register("renderSource", track("renderSource", false))
	c.Register("compile", track("compile", false))
	colorize.DependsOn("javadoc")
	render.DependsOn("colorize")

	obs := &recordingObserver{}
	results, err := c.Execute(t.Context(), obs)
	require.NoError(t, err)
	require.Equal(t, []string{"javadoc", "compile"}, ran)

	got := outcomes(results)
	require.Equal(t, Failed, got["javadoc"])
	require.Equal(t, Skipped, got["colorize"])
	require.Equal(t, Skipped, got["renderSource"])
	require.Equal(t, Succeeded, got["compile"])
	require.Equal(t, []string{"javadoc", "compile"}, obs.started)
	require.Len(t, obs.finished, 4)

	first, found := FirstFailure(results)
	require.True(t, found)
	te, isTaskErr := AsError(first.Err)
	require.True(t, isTaskErr)
	require.Equal(t, "lattices", te.Project)
	require.Equal(t, "javadoc", te.Task)
	require.EqualError(t, first.Err, "lattices:javadoc: javadoc broke")
}

func TestFinalizerRunsAfterFailureButNotAfterSkip(t *testing.T) {
	c := NewContainer("p")
	var ran []string
	c.Register("compile", func(context.Context, *Task) error { ran = append(ran, "compile"); return nil })
	test, _ := c.Register("test", func(context.Context, *Task) error {
		ran = append(ran, "test")
		return stdErrors.New("assertion")
	})
	c.Register("coverageReport", func(context.Context, *Task) error { ran = append(ran, "coverageReport"); return nil })
	test.DependsOn("compile").FinalizedBy("coverageReport")

	results, err := c.Execute(t.Context(), nil, "test")
	require.NoError(t, err)
	require.Equal(t, []string{"compile", "test", "coverageReport"}, ran)
	require.Equal(t, Succeeded, outcomes(results)["coverageReport"])

	c2 := NewContainer("p")
	c2.Register("compile", func(context.Context, *Task) error { return stdErrors.New("javac") })
	test2, _ := c2.Register("test", ok)
	c2.Register("coverageReport", ok)
	test2.DependsOn("compile").FinalizedBy("coverageReport")
	results, err = c2.Execute(t.Context(), nil)
	require.NoError(t, err)
	got := outcomes(results)
	require.Equal(t, Skipped, got["test"])
	require.Equal(t, Skipped, got["coverageReport"])
}

func TestExecuteCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	c := NewContainer("p")
	first, _ := c.Register("first", func(context.Context, *Task) error { cancel(); return nil })
	second, _ := c.Register("second", ok)
	second.DependsOn(first.Name())

	results, err := c.Execute(ctx, nil)
	require.NoError(t, err)
	got := outcomes(results)
	require.Equal(t, Succeeded, got["first"])
	require.Equal(t, Canceled, got["second"])
}

func TestActionReadsSpecAtExecution(t *testing.T) {
	c := NewContainer("p")
	var seen string
	task, _ := c.Register("jar", func(_ context.Context, self *Task) error {
		seen, _ = SpecOf[string](self)
		return nil
	})
	task.SetSpec("first")
	task.SetSpec("second")

	_, err := c.Execute(t.Context(), nil)
	require.NoError(t, err)
	require.Equal(t, "second", seen)
}
