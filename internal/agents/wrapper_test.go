package agents_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/prospect-labs/prospect/internal/agents"
	"github.com/prospect-labs/prospect/internal/faults"
	"github.com/prospect-labs/prospect/internal/leads"
)

type fakeRecorder struct {
	mu       sync.Mutex
	records  []leads.AgentError
	statuses []leads.Status
}

func (f *fakeRecorder) RecordAgentError(_ context.Context, _ uuid.UUID, rec leads.AgentError) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeRecorder) SetStatus(_ context.Context, _ uuid.UUID, status leads.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRunSuccessLeavesLeadUntouched(t *testing.T) {
	rec := &fakeRecorder{}
	w := agents.NewWrapper(rec, discard())

	result := agents.Run(context.Background(), w, uuid.New(), leads.AgentQuickScan,
		func(ctx context.Context) (string, error) {
			return "data", nil
		}, nil)

	if !result.Success {
		t.Fatalf("expected success, got %v", result.Err)
	}
	if len(rec.records) != 0 {
		t.Errorf("no error records expected, got %d", len(rec.records))
	}
	if len(rec.statuses) != 0 {
		t.Errorf("no status writes expected, got %v", rec.statuses)
	}
}

func TestRunTerminalFailureRecordsAndParksLead(t *testing.T) {
	rec := &fakeRecorder{}
	w := agents.NewWrapper(rec, discard())

	result := agents.Run(context.Background(), w, uuid.New(), leads.AgentExtraction,
		func(ctx context.Context) (string, error) {
			return "", errors.New("401 unauthorized")
		}, nil)

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Attempts != 1 {
		t.Errorf("permanent failure should not retry: got %d attempts", result.Attempts)
	}

	if len(rec.records) != 1 {
		t.Fatalf("records: got %d, want 1", len(rec.records))
	}
	r := rec.records[0]
	if r.Agent != leads.AgentExtraction {
		t.Errorf("agent: got %s", r.Agent)
	}
	if r.Kind != faults.KindAuthentication {
		t.Errorf("kind: got %s, want %s", r.Kind, faults.KindAuthentication)
	}
	if r.Resolved {
		t.Error("record must start unresolved")
	}

	if len(rec.statuses) != 1 || rec.statuses[0] != leads.StatusExtractionFailed {
		t.Errorf("statuses: got %v, want [%s]", rec.statuses, leads.StatusExtractionFailed)
	}
}

func TestRunFallbackRecordsErrorButSucceeds(t *testing.T) {
	rec := &fakeRecorder{}
	w := agents.NewWrapper(rec, discard())

	fallback := "substitute"
	result := agents.Run(context.Background(), w, uuid.New(), leads.AgentTimeline,
		func(ctx context.Context) (string, error) {
			return "", errors.New("schema validation failed")
		}, &fallback)

	if !result.Success {
		t.Fatal("fallback must convert the outcome to success")
	}
	if result.Data != "substitute" {
		t.Errorf("data: got %q, want %q", result.Data, "substitute")
	}

	// the failure is still durable even though the caller proceeds
	if len(rec.records) != 1 {
		t.Errorf("records: got %d, want 1", len(rec.records))
	}

	// fallback path must not move the lead into a failed status
	if len(rec.statuses) != 0 {
		t.Errorf("statuses: got %v, want none", rec.statuses)
	}
}
