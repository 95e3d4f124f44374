// Package jobs provides the durable background job record, its Postgres
// store, and the progress streaming machinery that pushes job state to
// clients over Server-Sent Events.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a background job. A job moves from
// pending through running into exactly one terminal state and is never
// written again after that.
type Status string

// Job lifecycle statuses. Cancelled is never written by the pipeline
// itself; it is an external actor's status that readers must tolerate.
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status permits no further writes.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Job types.
const (
	TypeQualifyLead = "qualify_lead"
)

// Job is one durable record tracking one qualification run. Progress is
// monotonically non-decreasing while running and reaches 100 only on
// completion. Result is opaque to this package; its shape belongs to the
// pipeline that writes it.
type Job struct {
	ID           uuid.UUID       `json:"id"`
	Type         string          `json:"type"`
	OwnerID      uuid.UUID       `json:"owner_id"`
	Status       Status          `json:"status"`
	Progress     int             `json:"progress"`
	CurrentStep  string          `json:"current_step"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Phase extracts the interim phase marker from the job result, if any.
// The pipeline writes {"phase": ...} markers into the result while the
// job is running; the final result replaces them.
func (j *Job) Phase() string {
	if len(j.Result) == 0 {
		return ""
	}

	var marker struct {
		Phase string `json:"phase"`
	}
	if err := json.Unmarshal(j.Result, &marker); err != nil {
		return ""
	}
	return marker.Phase
}
