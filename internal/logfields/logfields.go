// Package logfields names the slog attributes shared across jbuild.
package logfields

import "log/slog"

// Log keys.
const (
	KeyRunID      = "run_id"
	KeyProject    = "project"
	KeyTask       = "task"
	KeyStep       = "step"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyOutcome    = "outcome"
	KeyError      = "error"
)

func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Project(name string) slog.Attr   { return slog.String(KeyProject, name) }
func Task(name string) slog.Attr      { return slog.String(KeyTask, name) }
func Step(name string) slog.Attr      { return slog.String(KeyStep, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
