package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/jbuild/internal/task"
)

type testRecorder struct {
	NoopRecorder
	durations map[string]int
	results   map[string]map[task.Outcome]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{durations: map[string]int{}, results: map[string]map[task.Outcome]int{}}
}

func (t *testRecorder) ObserveTaskDuration(_, name string, _ time.Duration) { t.durations[name]++ }

func (t *testRecorder) IncTaskResult(name string, outcome task.Outcome) {
	m, ok := t.results[name]
	if !ok {
		m = map[task.Outcome]int{}
		t.results[name] = m
	}
	m[outcome]++
}

func TestTaskObserverRecordsExecution(t *testing.T) {
	rec := newTestRecorder()
	c := task.NewContainer("lattices")
	c.Register("compile", nil)
	test, _ := c.Register("test", nil)
	test.DependsOn("compile")

	_, err := c.Execute(t.Context(), TaskObserver{Recorder: rec}, "test")
	require.NoError(t, err)
	require.Equal(t, 1, rec.durations["compile"])
	require.Equal(t, 1, rec.results["test"][task.Succeeded])
}

func TestNoopRecorderSatisfiesRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncBuildOutcome(BuildFailed)
	TaskObserver{}.TaskFinished("p", task.Result{Task: "x"})
}
