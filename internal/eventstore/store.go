package eventstore

import (
	"context"
	"time"
)

// Record is one stored fact about a build run. Payload is the JSON body of
// one of the event types in events.go.
type Record struct {
	ID      int64
	RunID   string
	Type    string
	Project string // empty for run-level events
	At      time.Time
	Payload []byte
}

// Store persists run records in append order.
type Store interface {
	// Append stores rec, filling in ID and, when zero, At.
	Append(ctx context.Context, rec *Record) error
	// Run returns the records of one run in append order.
	Run(ctx context.Context, runID string) ([]Record, error)
	// Since returns every record at or after t in append order.
	Since(ctx context.Context, t time.Time) ([]Record, error)
	Close() error
}
