package metrics

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/jbuild/internal/task"
)

const namespace = "jbuild"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once               sync.Once
	taskDuration       *prom.HistogramVec
	taskResults        *prom.CounterVec
	projectOutcomes    *prom.CounterVec
	buildDuration      prom.Histogram
	buildOutcome       *prom.CounterVec
	projectConcurrency prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.taskDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Duration of executed tasks",
			Buckets:   prom.DefBuckets,
		}, []string{"project", "task"})
		pr.taskResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "task_results_total",
			Help:      "Task results by outcome",
		}, []string{"task", "outcome"})
		pr.projectOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "project_outcomes_total",
			Help:      "Project outcomes by final status",
		}, []string{"outcome"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total run duration",
			Buckets:   prom.DefBuckets,
		})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Run outcomes by final status",
		}, []string{"outcome"})
		pr.projectConcurrency = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "project_concurrency",
			Help:      "Configured project execution concurrency of the last run",
		})
		reg.MustRegister(pr.taskDuration, pr.taskResults, pr.projectOutcomes,
			pr.buildDuration, pr.buildOutcome, pr.projectConcurrency)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveTaskDuration(project, taskName string, d time.Duration) {
	if p == nil || p.taskDuration == nil {
		return
	}
	p.taskDuration.WithLabelValues(project, taskName).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncTaskResult(taskName string, outcome task.Outcome) {
	if p == nil || p.taskResults == nil {
		return
	}
	p.taskResults.WithLabelValues(taskName, string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncProjectOutcome(outcome string) {
	if p == nil || p.projectOutcomes == nil {
		return
	}
	p.projectOutcomes.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetProjectConcurrency(n int) {
	if p == nil || p.projectConcurrency == nil {
		return
	}
	p.projectConcurrency.Set(float64(n))
}

// WriteTextfile writes the gathered metrics to path in the text exposition
// format. The file is replaced atomically.
func WriteTextfile(path string, g prom.Gatherer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.FileSystemError("cannot create metrics directory").WithCause(err).Build()
	}
	if err := prom.WriteToTextfile(path, g); err != nil {
		return errors.FileSystemError("cannot write metrics textfile").WithContext("path", path).WithCause(err).Build()
	}
	return nil
}
