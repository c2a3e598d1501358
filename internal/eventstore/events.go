package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

// Record types.
const (
	TypeRunStarted      = "RunStarted"
	TypeProjectFinished = "ProjectFinished"
	TypeRunFinished     = "RunFinished"
)

// RunStarted is recorded when a run begins executing projects.
type RunStarted struct {
	Command    string   `json:"command"`
	Targets    []string `json:"targets"`
	Projects   []string `json:"projects"`
	ConfigHash string   `json:"config_hash"`
}

// ProjectFinished records one project's outcome.
type ProjectFinished struct {
	Project    string `json:"project"`
	Outcome    string `json:"outcome"`
	FailedTask string `json:"failed_task,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// RunFinished is recorded once every selected project completed.
type RunFinished struct {
	Outcome    string `json:"outcome"`
	Failed     int    `json:"failed"`
	DurationMS int64  `json:"duration_ms"`
}

func encode(runID, typ, project string, body any) (Record, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return Record{}, errors.HistoryError("cannot encode history record").
			WithContext("run_id", runID).WithContext("type", typ).WithCause(err).Build()
	}
	return Record{RunID: runID, Type: typ, Project: project, Payload: payload}, nil
}

// NewRunStarted builds a RunStarted record.
func NewRunStarted(runID, command string, targets, projects []string, configHash string) (Record, error) {
	return encode(runID, TypeRunStarted, "", RunStarted{
		Command: command, Targets: targets, Projects: projects, ConfigHash: configHash,
	})
}

// NewProjectFinished builds a ProjectFinished record. cause may be nil.
func NewProjectFinished(runID, project, outcome, failedTask string, cause error, d time.Duration) (Record, error) {
	body := ProjectFinished{Project: project, Outcome: outcome, FailedTask: failedTask, DurationMS: d.Milliseconds()}
	if cause != nil {
		body.Error = cause.Error()
	}
	return encode(runID, TypeProjectFinished, project, body)
}

// NewRunFinished builds a RunFinished record.
func NewRunFinished(runID, outcome string, failed int, d time.Duration) (Record, error) {
	return encode(runID, TypeRunFinished, "", RunFinished{Outcome: outcome, Failed: failed, DurationMS: d.Milliseconds()})
}
