package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/prospect-labs/prospect/internal/agents"
	"github.com/prospect-labs/prospect/internal/jobs"
	"github.com/prospect-labs/prospect/internal/leads"
	"github.com/prospect-labs/prospect/internal/pipeline"
	"github.com/prospect-labs/prospect/internal/retry"
	"github.com/prospect-labs/prospect/pkg/pagination"
)

type fakeStore struct {
	mu       sync.Mutex
	job      *jobs.Job
	progress []int
	steps    []string
	phases   []string
	result   json.RawMessage
	failMsg  string
	done     chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{done: make(chan struct{})}
}

func (s *fakeStore) Create(_ context.Context, jobType string, ownerID uuid.UUID) (*jobs.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.job = &jobs.Job{
		ID:      uuid.New(),
		Type:    jobType,
		OwnerID: ownerID,
		Status:  jobs.StatusRunning,
	}
	return s.job, nil
}

func (s *fakeStore) Find(_ context.Context, id uuid.UUID) (*jobs.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil || s.job.ID != id {
		return nil, jobs.ErrNotFound
	}
	copy := *s.job
	return &copy, nil
}

func (s *fakeStore) SetProgress(_ context.Context, _ uuid.UUID, progress int, step string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, progress)
	if step != "" {
		s.steps = append(s.steps, step)
	}
	return nil
}

func (s *fakeStore) SetPhase(_ context.Context, _ uuid.UUID, phase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phases = append(s.phases, phase)
	return nil
}

func (s *fakeStore) Complete(_ context.Context, _ uuid.UUID, result any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	s.result = raw
	s.job.Status = jobs.StatusCompleted
	s.job.Progress = 100
	close(s.done)
	return nil
}

func (s *fakeStore) Fail(_ context.Context, _ uuid.UUID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failMsg = message
	s.job.Status = jobs.StatusFailed
	close(s.done)
	return nil
}

type fakeLeads struct {
	mu            sync.Mutex
	lead          leads.Lead
	statuses      []leads.Status
	records       []leads.AgentError
	qualification json.RawMessage
}

func (f *fakeLeads) Handler(leads.Qualifier) *leads.Handler { return nil }

func (f *fakeLeads) List(context.Context, pagination.PageRequest, leads.Filters) (*pagination.PageResult[leads.Lead], error) {
	return &pagination.PageResult[leads.Lead]{}, nil
}

func (f *fakeLeads) Find(_ context.Context, id uuid.UUID) (*leads.Lead, error) {
	if id != f.lead.ID {
		return nil, leads.ErrNotFound
	}
	copy := f.lead
	return &copy, nil
}

func (f *fakeLeads) Create(context.Context, leads.CreateCommand) (*leads.Lead, error) {
	return nil, nil
}

func (f *fakeLeads) Delete(context.Context, uuid.UUID) error { return nil }

func (f *fakeLeads) SetStatus(_ context.Context, _ uuid.UUID, status leads.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeLeads) SetQualification(_ context.Context, _ uuid.UUID, result json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.qualification = result
	return nil
}

func (f *fakeLeads) RecordAgentError(_ context.Context, _ uuid.UUID, rec leads.AgentError) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeLeads) Retry(context.Context, uuid.UUID, leads.AgentKind) (*leads.Lead, error) {
	return nil, nil
}

func (f *fakeLeads) Skip(context.Context, uuid.UUID, leads.AgentKind) (*leads.Lead, error) {
	return nil, nil
}

func (f *fakeLeads) ResolveError(context.Context, uuid.UUID, uuid.UUID) (*leads.Lead, error) {
	return nil, nil
}

func happySet(calls *atomicCalls) *agents.Set {
	return &agents.Set{
		Extraction: func(*leads.Lead) retry.Operation[agents.ExtractionResult] {
			return func(context.Context) (agents.ExtractionResult, error) {
				calls.mark("extraction")
				return agents.ExtractionResult{Company: "Acme", Confidence: 0.9}, nil
			}
		},
		QuickScan: func(*leads.Lead, agents.ExtractionResult) retry.Operation[agents.QuickScanResult] {
			return func(context.Context) (agents.QuickScanResult, error) {
				calls.mark("quick-scan")
				return agents.QuickScanResult{Score: 80, Verdict: "strong"}, nil
			}
		},
		Timeline: func(*leads.Lead, agents.ExtractionResult) retry.Operation[agents.TimelineResult] {
			return func(context.Context) (agents.TimelineResult, error) {
				calls.mark("timeline")
				return agents.TimelineResult{Events: []agents.TimelineEvent{{Date: "2020", Title: "Founded"}}}, nil
			}
		},
		DuplicateCheck: func(*leads.Lead) retry.Operation[agents.DuplicateCheckResult] {
			return func(context.Context) (agents.DuplicateCheckResult, error) {
				calls.mark("duplicate-check")
				return agents.DuplicateCheckResult{Matches: []agents.DuplicateMatch{}}, nil
			}
		},
	}
}

type atomicCalls struct {
	mu    sync.Mutex
	calls map[string]int
}

func newAtomicCalls() *atomicCalls {
	return &atomicCalls{calls: make(map[string]int)}
}

func (c *atomicCalls) mark(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[name]++
}

func (c *atomicCalls) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

func newRunner(store *fakeStore, sys *fakeLeads, set *agents.Set) *pipeline.Runner {
	logger := slog.New(slog.DiscardHandler)
	return pipeline.NewRunner(
		context.Background(),
		store,
		sys,
		agents.NewWrapper(sys, logger),
		set,
		logger,
	)
}

func waitForTerminal(t *testing.T, store *fakeStore) {
	t.Helper()
	select {
	case <-store.done:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not reach a terminal job state")
	}
}

func testLead() leads.Lead {
	return leads.Lead{
		ID:      uuid.New(),
		Company: "Acme",
		Website: "https://acme.test",
		Status:  leads.StatusNew,
	}
}

func TestRunFullSuccess(t *testing.T) {
	store := newFakeStore()
	sys := &fakeLeads{lead: testLead()}
	calls := newAtomicCalls()
	runner := newRunner(store, sys, happySet(calls))

	job, err := runner.Start(context.Background(), sys.lead.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if job.Status != jobs.StatusRunning {
		t.Errorf("job status: got %s, want %s", job.Status, jobs.StatusRunning)
	}

	waitForTerminal(t, store)

	var result pipeline.Result
	if err := json.Unmarshal(store.result, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}

	if !result.Success {
		t.Errorf("expected success, errors: %v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Errorf("errors: got %v, want none", result.Errors)
	}
	if result.Extraction.Company != "Acme" {
		t.Errorf("extraction company: got %q", result.Extraction.Company)
	}
	if result.QuickScan.Score != 80 {
		t.Errorf("quick scan score: got %d", result.QuickScan.Score)
	}

	// the estimate is derived from the extraction during aggregation
	if result.Estimate.TotalHours <= 0 {
		t.Errorf("estimate total hours: got %v, want > 0", result.Estimate.TotalHours)
	}

	// all three enrichment branches ran exactly once
	for _, name := range []string{"quick-scan", "timeline", "duplicate-check"} {
		if n := calls.count(name); n != 1 {
			t.Errorf("%s calls: got %d, want 1", name, n)
		}
	}

	final := sys.statuses[len(sys.statuses)-1]
	if final != leads.StatusReview {
		t.Errorf("final lead status: got %s, want %s", final, leads.StatusReview)
	}
	if sys.qualification == nil {
		t.Error("qualification not written to lead")
	}
}

func TestRunPartialSuccess(t *testing.T) {
	store := newFakeStore()
	sys := &fakeLeads{lead: testLead()}
	calls := newAtomicCalls()

	set := happySet(calls)
	set.Timeline = func(*leads.Lead, agents.ExtractionResult) retry.Operation[agents.TimelineResult] {
		return func(context.Context) (agents.TimelineResult, error) {
			calls.mark("timeline")
			return agents.TimelineResult{}, errors.New("403 forbidden")
		}
	}

	runner := newRunner(store, sys, set)
	if _, err := runner.Start(context.Background(), sys.lead.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	waitForTerminal(t, store)

	if store.job.Status != jobs.StatusCompleted {
		t.Fatalf("job status: got %s, want %s", store.job.Status, jobs.StatusCompleted)
	}

	var result pipeline.Result
	if err := json.Unmarshal(store.result, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}

	if result.Success {
		t.Error("partial run must not report success")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors: got %v, want exactly one", result.Errors)
	}
	if !result.Timeline.Unavailable {
		t.Error("failed branch must leave a labeled substitute")
	}

	// sibling branches still produced real results
	if result.QuickScan.Unavailable || result.QuickScan.Score != 80 {
		t.Errorf("quick scan affected by sibling failure: %+v", result.QuickScan)
	}
	if result.Duplicates.Unavailable {
		t.Error("duplicate check affected by sibling failure")
	}

	// the branch failure is durable on the lead
	if len(sys.records) != 1 || sys.records[0].Agent != leads.AgentTimeline {
		t.Errorf("records: got %+v", sys.records)
	}

	// every branch checkpoints as it starts, so the failed timeline branch
	// still lands its progress mark
	for _, want := range []int{45, 55, 65} {
		if !recordedProgress(store, want) {
			t.Errorf("missing branch start checkpoint %d in %v", want, store.progress)
		}
	}
}

func recordedProgress(store *fakeStore, want int) bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, p := range store.progress {
		if p == want {
			return true
		}
	}
	return false
}

func TestRunRequiredStageFailureAbortsRun(t *testing.T) {
	store := newFakeStore()
	sys := &fakeLeads{lead: testLead()}
	calls := newAtomicCalls()

	set := happySet(calls)
	set.Extraction = func(*leads.Lead) retry.Operation[agents.ExtractionResult] {
		return func(context.Context) (agents.ExtractionResult, error) {
			calls.mark("extraction")
			return agents.ExtractionResult{}, errors.New("401 invalid api key")
		}
	}

	runner := newRunner(store, sys, set)
	if _, err := runner.Start(context.Background(), sys.lead.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	waitForTerminal(t, store)

	if store.job.Status != jobs.StatusFailed {
		t.Fatalf("job status: got %s, want %s", store.job.Status, jobs.StatusFailed)
	}
	if store.failMsg == "" {
		t.Error("expected failure message on job")
	}

	// best-effort branches never run when the required stage fails
	for _, name := range []string{"quick-scan", "timeline", "duplicate-check"} {
		if n := calls.count(name); n != 0 {
			t.Errorf("%s ran %d times after required stage failure", name, n)
		}
	}

	final := sys.statuses[len(sys.statuses)-1]
	if final != leads.StatusExtractionFailed {
		t.Errorf("final lead status: got %s, want %s", final, leads.StatusExtractionFailed)
	}
}

func TestStartUnknownLead(t *testing.T) {
	store := newFakeStore()
	sys := &fakeLeads{lead: testLead()}
	runner := newRunner(store, sys, happySet(newAtomicCalls()))

	if _, err := runner.Start(context.Background(), uuid.New()); !errors.Is(err, leads.ErrNotFound) {
		t.Errorf("got %v, want %v", err, leads.ErrNotFound)
	}
}

func TestStartMissingWebsite(t *testing.T) {
	store := newFakeStore()
	lead := testLead()
	lead.Website = ""
	sys := &fakeLeads{lead: lead}
	runner := newRunner(store, sys, happySet(newAtomicCalls()))

	if _, err := runner.Start(context.Background(), lead.ID); !errors.Is(err, leads.ErrMissingWebsite) {
		t.Errorf("got %v, want %v", err, leads.ErrMissingWebsite)
	}
}
