package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prospect-labs/prospect/internal/agents"
	"github.com/prospect-labs/prospect/internal/estimate"
	"github.com/prospect-labs/prospect/internal/jobs"
	"github.com/prospect-labs/prospect/internal/leads"
)

// Progress checkpoints for a qualification run. Values only ever rise; the
// store enforces monotonicity so the three enrichment branches can land
// their checkpoints in any order.
const (
	progressStarted    = 5
	progressExtracting = 10
	progressExtracted  = 40
	progressQuickScan  = 45
	progressTimeline   = 55
	progressDuplicates = 65
	progressAggregate  = 90
)

// Runner drives qualification runs. Start returns as soon as the job record
// exists; the run itself executes on the runner's base context so it
// survives the originating HTTP request.
type Runner struct {
	base    context.Context
	store   jobs.Store
	leads   leads.System
	wrapper *agents.Wrapper
	set     *agents.Set
	logger  *slog.Logger
}

// NewRunner creates a Runner. base is the application lifecycle context;
// cancelling it abandons in-flight runs on shutdown.
func NewRunner(
	base context.Context,
	store jobs.Store,
	sys leads.System,
	wrapper *agents.Wrapper,
	set *agents.Set,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		base:    base,
		store:   store,
		leads:   sys,
		wrapper: wrapper,
		set:     set,
		logger:  logger.With("system", "pipeline"),
	}
}

// Start validates the lead, creates the tracking job, and launches the run
// in the background. The returned job is already in the running state.
func (r *Runner) Start(ctx context.Context, leadID uuid.UUID) (*jobs.Job, error) {
	lead, err := r.leads.Find(ctx, leadID)
	if err != nil {
		return nil, err
	}

	if lead.Website == "" {
		return nil, leads.ErrMissingWebsite
	}

	job, err := r.store.Create(ctx, jobs.TypeQualifyLead, leadID)
	if err != nil {
		return nil, err
	}

	go r.run(r.base, job.ID, lead)

	return job, nil
}

// run executes the full pipeline. It never panics out: any escaped panic is
// folded into a failed job so the record always reaches a terminal state.
func (r *Runner) run(ctx context.Context, jobID uuid.UUID, lead *leads.Lead) {
	logger := r.logger.With("job_id", jobID, "lead_id", lead.ID)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("qualification run panicked", "panic", rec)
			r.fail(ctx, jobID, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	logger.Info("qualification run started")
	r.checkpoint(ctx, jobID, progressStarted, "starting qualification")

	r.setLeadStatus(ctx, lead.ID, leads.RunningStatusFor(leads.AgentExtraction), logger)
	r.checkpoint(ctx, jobID, progressExtracting, "extracting company data")

	extraction := agents.Run(ctx, r.wrapper, lead.ID, leads.AgentExtraction, r.set.Extraction(lead), nil)
	if !extraction.Success {
		logger.Warn("extraction failed, run aborted", "error", extraction.Err.Message)
		r.fail(ctx, jobID, extraction.Err.Message)
		return
	}

	r.checkpoint(ctx, jobID, progressExtracted, "extraction complete")
	r.setPhase(ctx, jobID, "enrichment", logger)
	r.setLeadStatus(ctx, lead.ID, leads.StatusEnriching, logger)

	// Substitutes are installed up front so even a panicking branch leaves
	// a labeled placeholder behind rather than a zero value.
	result := Result{
		JobID:      jobID,
		LeadID:     lead.ID,
		Extraction: extraction.Data,
		QuickScan:  agents.UnavailableQuickScan(),
		Timeline:   agents.UnavailableTimeline(),
		Duplicates: agents.UnavailableDuplicateCheck(),
		Errors:     []string{},
	}

	r.enrich(ctx, jobID, lead, &result)

	r.checkpoint(ctx, jobID, progressAggregate, "aggregating results")

	result.Estimate = estimate.Compute(estimate.FromExtraction(result.Extraction))
	result.Success = len(result.Errors) == 0
	result.CompletedAt = time.Now().UTC()

	r.persist(ctx, jobID, lead.ID, &result, logger)

	logger.Info("qualification run finished",
		"success", result.Success,
		"branch_errors", len(result.Errors),
	)
}

// enrich fans the three best-effort branches out in parallel and waits for
// all of them. Each branch lands its checkpoint on entry so observers see
// the branch start even when it later fails. A failed branch contributes a
// substitute result and an entry in result.Errors; it never cancels its
// siblings.
func (r *Runner) enrich(ctx context.Context, jobID uuid.UUID, lead *leads.Lead, result *Result) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	branchErr := func(agent leads.AgentKind, msg string) {
		mu.Lock()
		defer mu.Unlock()
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", agent, msg))
	}

	wg.Add(3)

	go func() {
		defer wg.Done()
		defer r.guard(leads.AgentQuickScan, branchErr)
		r.checkpoint(ctx, jobID, progressQuickScan, "running quick scan")

		res := agents.Run(ctx, r.wrapper, lead.ID, leads.AgentQuickScan,
			r.set.QuickScan(lead, result.Extraction), nil)
		if res.Success {
			result.QuickScan = res.Data
		} else {
			branchErr(leads.AgentQuickScan, res.Err.Message)
		}
	}()

	go func() {
		defer wg.Done()
		defer r.guard(leads.AgentTimeline, branchErr)
		r.checkpoint(ctx, jobID, progressTimeline, "building company timeline")

		res := agents.Run(ctx, r.wrapper, lead.ID, leads.AgentTimeline,
			r.set.Timeline(lead, result.Extraction), nil)
		if res.Success {
			result.Timeline = res.Data
		} else {
			branchErr(leads.AgentTimeline, res.Err.Message)
		}
	}()

	go func() {
		defer wg.Done()
		defer r.guard(leads.AgentDuplicateCheck, branchErr)
		r.checkpoint(ctx, jobID, progressDuplicates, "checking for duplicates")

		res := agents.Run(ctx, r.wrapper, lead.ID, leads.AgentDuplicateCheck,
			r.set.DuplicateCheck(lead), nil)
		if res.Success {
			result.Duplicates = res.Data
		} else {
			branchErr(leads.AgentDuplicateCheck, res.Err.Message)
		}
	}()

	wg.Wait()
}

// guard converts a branch panic into a branch error so one bad branch can
// never take down the run.
func (r *Runner) guard(agent leads.AgentKind, branchErr func(leads.AgentKind, string)) {
	if rec := recover(); rec != nil {
		r.logger.Error("enrichment branch panicked", "agent", agent, "panic", rec)
		branchErr(agent, fmt.Sprintf("panic: %v", rec))
	}
}

// persist writes the aggregated result to the lead and finalizes the job.
func (r *Runner) persist(ctx context.Context, jobID, leadID uuid.UUID, result *Result, logger *slog.Logger) {
	raw, err := json.Marshal(result)
	if err != nil {
		logger.Error("failed to encode qualification result", "error", err)
		r.fail(ctx, jobID, fmt.Sprintf("encode result: %v", err))
		return
	}

	if err := r.leads.SetQualification(ctx, leadID, raw); err != nil {
		logger.Error("failed to store qualification on lead", "error", err)
	}

	r.setLeadStatus(ctx, leadID, leads.StatusReview, logger)

	if err := r.store.Complete(ctx, jobID, result); err != nil {
		logger.Error("failed to complete job", "error", err)
	}
}

func (r *Runner) checkpoint(ctx context.Context, jobID uuid.UUID, progress int, step string) {
	if err := r.store.SetProgress(ctx, jobID, progress, step); err != nil {
		r.logger.Warn("failed to checkpoint job progress", "job_id", jobID, "error", err)
	}
}

func (r *Runner) setPhase(ctx context.Context, jobID uuid.UUID, phase string, logger *slog.Logger) {
	if err := r.store.SetPhase(ctx, jobID, phase); err != nil {
		logger.Warn("failed to set job phase", "error", err)
	}
}

func (r *Runner) setLeadStatus(ctx context.Context, leadID uuid.UUID, status leads.Status, logger *slog.Logger) {
	if err := r.leads.SetStatus(ctx, leadID, status); err != nil {
		logger.Warn("failed to set lead status", "status", status, "error", err)
	}
}

func (r *Runner) fail(ctx context.Context, jobID uuid.UUID, message string) {
	if err := r.store.Fail(ctx, jobID, message); err != nil {
		r.logger.Error("failed to mark job failed", "job_id", jobID, "error", err)
	}
}
