package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/prospect-labs/prospect/pkg/repository"
)

// Store is the durable job record contract. Every mutation is a point
// update by id guarded on status = running, so a terminal record can never
// be written again regardless of caller ordering.
type Store interface {
	// Create inserts a new job already in the running state.
	Create(ctx context.Context, jobType string, ownerID uuid.UUID) (*Job, error)
	Find(ctx context.Context, id uuid.UUID) (*Job, error)
	// SetProgress raises the progress checkpoint and optionally the current
	// step. Progress never decreases: concurrent checkpoint writers can
	// land in any order without violating monotonicity.
	SetProgress(ctx context.Context, id uuid.UUID, progress int, step string) error
	// SetPhase writes an interim phase marker into the job result.
	SetPhase(ctx context.Context, id uuid.UUID, phase string) error
	// Complete finalizes the job with its aggregated result and progress 100.
	Complete(ctx context.Context, id uuid.UUID, result any) error
	// Fail finalizes the job with an error message; progress stays frozen
	// at its last value.
	Fail(ctx context.Context, id uuid.UUID, message string) error
}

const jobColumns = "id, type, owner_id, status, progress, current_step, result, error_message, started_at, completed_at, updated_at"

type store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates a Postgres-backed job store.
func NewStore(db *sql.DB, logger *slog.Logger) Store {
	return &store{
		db:     db,
		logger: logger.With("system", "jobs"),
	}
}

func (s *store) Create(ctx context.Context, jobType string, ownerID uuid.UUID) (*Job, error) {
	q := fmt.Sprintf(`
		INSERT INTO background_jobs(id, type, owner_id, status, progress)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING %s`, jobColumns)

	j, err := repository.QueryOne(
		ctx, s.db, q,
		[]any{uuid.New(), jobType, ownerID, StatusRunning},
		scanJob,
	)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	s.logger.Info("job created", "id", j.ID, "type", j.Type, "owner", j.OwnerID)
	return &j, nil
}

func (s *store) Find(ctx context.Context, id uuid.UUID) (*Job, error) {
	q := fmt.Sprintf("SELECT %s FROM background_jobs WHERE id = $1", jobColumns)

	j, err := repository.QueryOne(ctx, s.db, q, []any{id}, scanJob)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrInvalidJob)
	}
	return &j, nil
}

func (s *store) SetProgress(ctx context.Context, id uuid.UUID, progress int, step string) error {
	q := `
		UPDATE background_jobs
		SET progress = GREATEST(progress, $2),
		    current_step = CASE WHEN $3 <> '' THEN $3 ELSE current_step END,
		    updated_at = now()
		WHERE id = $1 AND status = $4`

	if _, err := s.db.ExecContext(ctx, q, id, progress, step, StatusRunning); err != nil {
		return fmt.Errorf("update job progress: %w", err)
	}
	return nil
}

func (s *store) SetPhase(ctx context.Context, id uuid.UUID, phase string) error {
	q := `
		UPDATE background_jobs
		SET result = jsonb_set(COALESCE(result, '{}'::jsonb), '{phase}', to_jsonb($2::text)),
		    updated_at = now()
		WHERE id = $1 AND status = $3`

	if _, err := s.db.ExecContext(ctx, q, id, phase, StatusRunning); err != nil {
		return fmt.Errorf("update job phase: %w", err)
	}
	return nil
}

func (s *store) Complete(ctx context.Context, id uuid.UUID, result any) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode job result: %w", err)
	}

	q := `
		UPDATE background_jobs
		SET status = $2, progress = 100, result = $3, completed_at = now(), updated_at = now()
		WHERE id = $1 AND status = $4`

	if _, err := s.db.ExecContext(ctx, q, id, StatusCompleted, raw, StatusRunning); err != nil {
		return fmt.Errorf("complete job: %w", err)
	}

	s.logger.Info("job completed", "id", id)
	return nil
}

func (s *store) Fail(ctx context.Context, id uuid.UUID, message string) error {
	q := `
		UPDATE background_jobs
		SET status = $2, error_message = $3, completed_at = now(), updated_at = now()
		WHERE id = $1 AND status = $4`

	if _, err := s.db.ExecContext(ctx, q, id, StatusFailed, message, StatusRunning); err != nil {
		return fmt.Errorf("fail job: %w", err)
	}

	s.logger.Warn("job failed", "id", id, "error", message)
	return nil
}

func scanJob(sc repository.Scanner) (Job, error) {
	var (
		j   Job
		raw []byte
	)

	if err := sc.Scan(
		&j.ID,
		&j.Type,
		&j.OwnerID,
		&j.Status,
		&j.Progress,
		&j.CurrentStep,
		&raw,
		&j.ErrorMessage,
		&j.StartedAt,
		&j.CompletedAt,
		&j.UpdatedAt,
	); err != nil {
		return j, err
	}

	if len(raw) > 0 {
		j.Result = json.RawMessage(raw)
	}

	return j, nil
}
