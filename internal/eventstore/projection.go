// Package eventstore records build runs in SQLite and projects them into a
// run history.
package eventstore

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"
)

const runStatusRunning = "running"

// ProjectSummary is one project's recorded outcome.
type ProjectSummary struct {
	Project    string        `json:"project"`
	Outcome    string        `json:"outcome"`
	FailedTask string        `json:"failed_task,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// RunSummary is a read model summarizing a completed or in-progress run.
type RunSummary struct {
	RunID       string           `json:"run_id"`
	Command     string           `json:"command"`
	Targets     []string         `json:"targets"`
	ConfigHash  string           `json:"config_hash"`
	Status      string           `json:"status"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Duration    time.Duration    `json:"duration,omitempty"`
	Projects    []ProjectSummary `json:"projects"`
}

// RunHistoryProjection maintains an in-memory view of run history,
// reconstructed from events stored in the event store.
type RunHistoryProjection struct {
	mu      sync.RWMutex
	store   Store
	runs    map[string]*RunSummary
	order   []*RunSummary // newest first
	maxSize int
}

// NewRunHistoryProjection creates a new projection backed by the given store.
func NewRunHistoryProjection(store Store, maxHistorySize int) *RunHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = 100
	}
	return &RunHistoryProjection{
		store:   store,
		runs:    make(map[string]*RunSummary),
		maxSize: maxHistorySize,
	}
}

// Rebuild reconstructs the projection from all events in the store.
func (p *RunHistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.Since(ctx, time.Time{})
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.runs = make(map[string]*RunSummary)
	p.order = nil
	for _, event := range events {
		p.applyEventLocked(event)
	}
	slices.SortStableFunc(p.order, func(a, b *RunSummary) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	if len(p.order) > p.maxSize {
		for _, dropped := range p.order[p.maxSize:] {
			delete(p.runs, dropped.RunID)
		}
		p.order = p.order[:p.maxSize]
	}
	return nil
}

// Apply processes a single event and updates the projection.
func (p *RunHistoryProjection) Apply(event Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyEventLocked(event)
}

func (p *RunHistoryProjection) applyEventLocked(event Record) {
	runID := event.RunID
	if runID == "" {
		return
	}
	summary, exists := p.runs[runID]
	if !exists {
		summary = &RunSummary{RunID: runID, Status: runStatusRunning, StartedAt: event.At}
		p.runs[runID] = summary
		p.order = append([]*RunSummary{summary}, p.order...)
	}

	switch event.Type {
	case TypeRunStarted:
		var payload RunStarted
		if err := json.Unmarshal(event.Payload, &payload); err == nil {
			summary.Command = payload.Command
			summary.Targets = payload.Targets
			summary.ConfigHash = payload.ConfigHash
		}
		summary.StartedAt = event.At

	case TypeProjectFinished:
		var payload ProjectFinished
		if err := json.Unmarshal(event.Payload, &payload); err == nil {
			summary.Projects = append(summary.Projects, ProjectSummary{
				Project:    payload.Project,
				Outcome:    payload.Outcome,
				FailedTask: payload.FailedTask,
				Error:      payload.Error,
				Duration:   time.Duration(payload.DurationMS) * time.Millisecond,
			})
		}

	case TypeRunFinished:
		now := event.At
		summary.CompletedAt = &now
		summary.Duration = now.Sub(summary.StartedAt)
		var payload RunFinished
		if err := json.Unmarshal(event.Payload, &payload); err == nil {
			summary.Status = payload.Outcome
		}
	}
}

// History returns up to limit runs, newest first. limit <= 0 returns all.
func (p *RunHistoryProjection) History(limit int) []RunSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := len(p.order)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]RunSummary, 0, n)
	for _, s := range p.order[:n] {
		cp := *s
		cp.Projects = slices.Clone(s.Projects)
		out = append(out, cp)
	}
	return out
}

// Get returns the summary of one run.
func (p *RunHistoryProjection) Get(runID string) (RunSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.runs[runID]
	if !ok {
		return RunSummary{}, false
	}
	cp := *s
	cp.Projects = slices.Clone(s.Projects)
	return cp, true
}
