// Package leads implements the lead domain for Prospect. A lead is the
// owning entity of a qualification run: it carries the workflow status
// driven by the pipeline, the durable agent error list, and the aggregated
// qualification result.
package leads

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/prospect-labs/prospect/internal/faults"
)

// Lead represents a prospect company under qualification.
// Qualification holds the aggregated pipeline output as an opaque JSON
// payload; its shape belongs to the agents that produce it, not this domain.
type Lead struct {
	ID            uuid.UUID       `json:"id"`
	Company       string          `json:"company"`
	Website       string          `json:"website"`
	ContactName   *string         `json:"contact_name"`
	ContactEmail  *string         `json:"contact_email"`
	Source        string          `json:"source"`
	Status        Status          `json:"status"`
	AgentErrors   []AgentError    `json:"agent_errors"`
	Qualification json.RawMessage `json:"qualification,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// UnresolvedErrors returns the agent errors still awaiting a user action.
func (l *Lead) UnresolvedErrors() []AgentError {
	var out []AgentError
	for _, e := range l.AgentErrors {
		if !e.Resolved {
			out = append(out, e)
		}
	}
	return out
}

// AgentError is a durable record of an exhausted or non-retryable agent
// failure. Records are appended to the owning lead and resolved in place,
// never deleted: a record is unresolved exactly once between creation and
// the user action that resolves it.
type AgentError struct {
	ID        uuid.UUID       `json:"id"`
	Agent     AgentKind       `json:"agent"`
	Timestamp time.Time       `json:"timestamp"`
	Kind      faults.Kind     `json:"kind"`
	Category  faults.Category `json:"category"`
	Message   string          `json:"message"`
	Details   string          `json:"details,omitempty"`
	Attempts  int             `json:"attempts"`
	// RecommendedAction tells a client which recovery control to offer
	// for this record; it is fixed at classification time.
	RecommendedAction faults.Action `json:"recommended_action"`
	Resolved          bool          `json:"resolved"`
	UserAction        *string       `json:"user_action,omitempty"`
	ResolvedAt        *time.Time    `json:"resolved_at,omitempty"`
}

// NewAgentError builds an unresolved error record from a classified failure.
func NewAgentError(agent AgentKind, cause *faults.Classified, attempts int) AgentError {
	return AgentError{
		ID:                uuid.New(),
		Agent:             agent,
		Timestamp:         time.Now().UTC(),
		Kind:              cause.Kind,
		Category:          cause.Category,
		Message:           cause.Message,
		Details:           cause.Details,
		Attempts:          attempts,
		RecommendedAction: faults.RecommendedAction(cause.Category),
	}
}

// CreateCommand carries the data needed to register a new lead.
type CreateCommand struct {
	Company      string  `json:"company"`
	Website      string  `json:"website"`
	ContactName  *string `json:"contact_name"`
	ContactEmail *string `json:"contact_email"`
	Source       string  `json:"source"`
}
