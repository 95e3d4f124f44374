package agents

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/prospect-labs/prospect/internal/leads"
	"github.com/prospect-labs/prospect/internal/retry"
)

// Recorder is the slice of the lead domain the wrapper needs to make
// failures durable and to park a lead in a failed status.
type Recorder interface {
	RecordAgentError(ctx context.Context, id uuid.UUID, rec leads.AgentError) error
	SetStatus(ctx context.Context, id uuid.UUID, status leads.Status) error
}

// Wrapper runs agent operations under their registered retry policy and
// owns the failure path: every exhausted or non-retryable failure becomes a
// durable error record on the lead before the wrapper returns. The wrapper
// never returns an error; the Result envelope carries the outcome either way.
type Wrapper struct {
	recorder Recorder
	logger   *slog.Logger
}

// NewWrapper creates a Wrapper recording failures through the given recorder.
func NewWrapper(recorder Recorder, logger *slog.Logger) *Wrapper {
	return &Wrapper{
		recorder: recorder,
		logger:   logger.With("system", "agents"),
	}
}

// Run executes op for the named agent under its registered retry policy.
//
// On terminal failure the classified error is recorded on the lead. With a
// fallback the wrapper then reports success carrying the fallback value and
// leaves the lead status untouched. Without one it parks the lead in the
// agent's failed status and returns the failed Result.
func Run[T any](
	ctx context.Context,
	w *Wrapper,
	leadID uuid.UUID,
	kind leads.AgentKind,
	op retry.Operation[T],
	fallback *T,
) retry.Result[T] {
	logger := w.logger.With("agent", kind, "lead_id", leadID)

	result := retry.Do(ctx, retry.ForKind(string(kind)), op,
		func(attempt, maxAttempts int, delay time.Duration) {
			logger.Warn("attempt failed, backing off",
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"delay", delay,
			)
		})

	if result.Success {
		logger.Info("agent succeeded", "attempts", result.Attempts, "duration", result.Duration)
		return result
	}

	logger.Error("agent failed",
		"kind", result.Err.Kind,
		"category", result.Err.Category,
		"attempts", result.Attempts,
		"error", result.Err.Message,
	)

	rec := leads.NewAgentError(kind, result.Err, result.Attempts)
	if err := w.recorder.RecordAgentError(ctx, leadID, rec); err != nil {
		logger.Error("failed to record agent error", "error", err)
	}

	if fallback != nil {
		logger.Info("continuing with fallback result")
		result.Success = true
		result.Data = *fallback
		return result
	}

	if err := w.recorder.SetStatus(ctx, leadID, leads.FailedStatusFor(kind)); err != nil {
		logger.Error("failed to set lead status", "error", err)
	}

	return result
}
