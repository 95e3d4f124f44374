package leads

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/prospect-labs/prospect/pkg/pagination"
)

// System defines the public contract for lead domain operations.
type System interface {
	Handler(qualifier Qualifier) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Lead], error)

	Find(ctx context.Context, id uuid.UUID) (*Lead, error)
	Create(ctx context.Context, cmd CreateCommand) (*Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// SetStatus transitions the lead workflow status.
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error
	// SetQualification stores the aggregated pipeline output on the lead.
	SetQualification(ctx context.Context, id uuid.UUID, result json.RawMessage) error
	// RecordAgentError appends a durable agent error to the lead.
	RecordAgentError(ctx context.Context, id uuid.UUID, rec AgentError) error

	// Retry resolves the agent's unresolved errors with a retry action and
	// resets the lead to the agent's running status.
	Retry(ctx context.Context, id uuid.UUID, agent AgentKind) (*Lead, error)
	// Skip resolves the agent's unresolved errors with a skip action and
	// advances the lead to the agent's configured skip target. Only valid
	// for skippable agents.
	Skip(ctx context.Context, id uuid.UUID, agent AgentKind) (*Lead, error)
	// ResolveError marks a single agent error resolved without changing
	// the lead status.
	ResolveError(ctx context.Context, id uuid.UUID, errorID uuid.UUID) (*Lead, error)
}
