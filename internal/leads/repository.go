package leads

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/prospect-labs/prospect/internal/faults"
	"github.com/prospect-labs/prospect/pkg/pagination"
	"github.com/prospect-labs/prospect/pkg/query"
	"github.com/prospect-labs/prospect/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a lead repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "leads"),
		pagination: pagination,
	}
}

func (r *repo) Handler(qualifier Qualifier) *Handler {
	return NewHandler(r, qualifier, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Lead], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Company", "Website")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanLead)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Lead, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	l, err := repository.QueryOne(ctx, r.db, q, args, scanLead)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &l, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Lead, error) {
	if cmd.Company == "" || cmd.Website == "" {
		return nil, fmt.Errorf("%w: company and website required", ErrInvalidLead)
	}

	q := `
		INSERT INTO leads(id, company, website, contact_name, contact_email, source, status, agent_errors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, '[]')
		RETURNING id, company, website, contact_name, contact_email, source, status, agent_errors, qualification, created_at, updated_at`

	args := []any{
		uuid.New(),
		cmd.Company,
		cmd.Website,
		cmd.ContactName,
		cmd.ContactEmail,
		cmd.Source,
		StatusNew,
	}

	l, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Lead, error) {
		return repository.QueryOne(ctx, tx, q, args, scanLead)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("lead created", "id", l.ID, "company", l.Company)
	return &l, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"DELETE FROM leads WHERE id = $1",
		id,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("lead deleted", "id", id)
	return nil
}

func (r *repo) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"UPDATE leads SET status = $2, updated_at = now() WHERE id = $1",
		id, status,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("lead status changed", "id", id, "status", status)
	return nil
}

func (r *repo) SetQualification(ctx context.Context, id uuid.UUID, result json.RawMessage) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"UPDATE leads SET qualification = $2, updated_at = now() WHERE id = $1",
		id, []byte(result),
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

func (r *repo) RecordAgentError(ctx context.Context, id uuid.UUID, rec AgentError) error {
	_, err := r.mutate(ctx, id, func(l *Lead) error {
		l.AgentErrors = append(l.AgentErrors, rec)
		return nil
	}, nil)
	if err != nil {
		return err
	}

	r.logger.Warn(
		"agent error recorded",
		"id", id,
		"agent", rec.Agent,
		"kind", rec.Kind,
		"category", rec.Category,
		"attempts", rec.Attempts,
	)
	return nil
}

func (r *repo) Retry(ctx context.Context, id uuid.UUID, agent AgentKind) (*Lead, error) {
	status := RunningStatusFor(agent)

	lead, err := r.mutate(ctx, id, func(l *Lead) error {
		resolveAgentErrors(l, agent, faults.ActionRetry)
		return nil
	}, &status)
	if err != nil {
		return nil, err
	}

	r.logger.Info("agent errors cleared for retry", "id", id, "agent", agent)
	return lead, nil
}

func (r *repo) Skip(ctx context.Context, id uuid.UUID, agent AgentKind) (*Lead, error) {
	target, ok := SkipStatusFor(agent)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotSkippable, agent)
	}

	lead, err := r.mutate(ctx, id, func(l *Lead) error {
		resolveAgentErrors(l, agent, faults.ActionSkip)
		return nil
	}, &target)
	if err != nil {
		return nil, err
	}

	r.logger.Info("agent skipped", "id", id, "agent", agent, "status", target)
	return lead, nil
}

func (r *repo) ResolveError(ctx context.Context, id uuid.UUID, errorID uuid.UUID) (*Lead, error) {
	return r.mutate(ctx, id, func(l *Lead) error {
		for i := range l.AgentErrors {
			if l.AgentErrors[i].ID == errorID {
				resolve(&l.AgentErrors[i], faults.ActionManualInput)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrErrorNotFound, errorID)
	}, nil)
}

// mutate applies a read-modify-write to the lead's error list inside a
// transaction, optionally transitioning the status in the same statement.
func (r *repo) mutate(
	ctx context.Context,
	id uuid.UUID,
	fn func(*Lead) error,
	status *Status,
) (*Lead, error) {
	selectSQL := `
		SELECT id, company, website, contact_name, contact_email, source, status, agent_errors, qualification, created_at, updated_at
		FROM leads WHERE id = $1 FOR UPDATE`

	lead, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Lead, error) {
		l, err := repository.QueryOne(ctx, tx, selectSQL, []any{id}, scanLead)
		if err != nil {
			return l, err
		}

		if err := fn(&l); err != nil {
			return l, err
		}

		raw, err := json.Marshal(l.AgentErrors)
		if err != nil {
			return l, fmt.Errorf("encode agent_errors: %w", err)
		}

		if status != nil {
			l.Status = *status
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE leads SET agent_errors = $2, status = $3, updated_at = now() WHERE id = $1",
			id, raw, l.Status,
		); err != nil {
			return l, err
		}

		return l, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return &lead, nil
}

// resolveAgentErrors resolves every unresolved record for the agent.
// Already-resolved records are untouched, which keeps the recovery
// actions idempotent.
func resolveAgentErrors(l *Lead, agent AgentKind, action faults.Action) {
	for i := range l.AgentErrors {
		if l.AgentErrors[i].Agent == agent && !l.AgentErrors[i].Resolved {
			resolve(&l.AgentErrors[i], action)
		}
	}
}

func resolve(rec *AgentError, action faults.Action) {
	if rec.Resolved {
		return
	}
	now := time.Now().UTC()
	act := string(action)
	rec.Resolved = true
	rec.UserAction = &act
	rec.ResolvedAt = &now
}
