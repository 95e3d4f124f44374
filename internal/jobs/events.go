package jobs

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies a progress stream event.
type EventType string

// Progress stream event types. Complete and Error are terminal: the stream
// closes after emitting one of them.
const (
	EventHeartbeat EventType = "heartbeat"
	EventProgress  EventType = "progress"
	EventPhase     EventType = "phase"
	EventStep      EventType = "step"
	EventComplete  EventType = "complete"
	EventError     EventType = "error"
)

// Event is an ephemeral progress notification derived from an observed job
// change. Events are never persisted or mutated, only emitted.
type Event struct {
	Type      EventType
	JobID     uuid.UUID
	Timestamp time.Time
	Data      any
}

func newEvent(t EventType, jobID uuid.UUID, data any) Event {
	return Event{
		Type:      t,
		JobID:     jobID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type progressData struct {
	JobID    uuid.UUID `json:"job_id"`
	Progress int       `json:"progress"`
}

type phaseData struct {
	JobID uuid.UUID `json:"job_id"`
	Phase string    `json:"phase"`
}

type stepData struct {
	JobID uuid.UUID `json:"job_id"`
	Step  string    `json:"step"`
}

type errorData struct {
	JobID   uuid.UUID `json:"job_id"`
	Status  Status    `json:"status,omitempty"`
	Message string    `json:"message"`
}

type heartbeatData struct {
	JobID uuid.UUID `json:"job_id"`
}
