package leads_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/prospect-labs/prospect/internal/faults"
	"github.com/prospect-labs/prospect/internal/leads"
)

func TestParseAgentKind(t *testing.T) {
	valid := []string{"duplicate-check", "extraction", "quick-scan", "timeline"}
	for _, s := range valid {
		if _, err := leads.ParseAgentKind(s); err != nil {
			t.Errorf("ParseAgentKind(%q): unexpected error %v", s, err)
		}
	}

	if _, err := leads.ParseAgentKind("sentiment"); err == nil {
		t.Error("expected error for unknown agent kind")
	}
}

func TestAgentCriticality(t *testing.T) {
	if !leads.AgentExtraction.Critical() {
		t.Error("extraction must be critical")
	}

	for _, k := range []leads.AgentKind{leads.AgentDuplicateCheck, leads.AgentQuickScan, leads.AgentTimeline} {
		if k.Critical() {
			t.Errorf("%s must not be critical", k)
		}
	}
}

func TestAgentStatusTables(t *testing.T) {
	tests := []struct {
		agent   leads.AgentKind
		running leads.Status
		failed  leads.Status
	}{
		{leads.AgentExtraction, leads.StatusExtracting, leads.StatusExtractionFailed},
		{leads.AgentQuickScan, leads.StatusEnriching, leads.StatusQuickScanFailed},
		{leads.AgentTimeline, leads.StatusEnriching, leads.StatusTimelineFailed},
		{leads.AgentDuplicateCheck, leads.StatusEnriching, leads.StatusDuplicateFailed},
	}

	for _, tc := range tests {
		t.Run(string(tc.agent), func(t *testing.T) {
			if got := leads.RunningStatusFor(tc.agent); got != tc.running {
				t.Errorf("running: got %s, want %s", got, tc.running)
			}
			if got := leads.FailedStatusFor(tc.agent); got != tc.failed {
				t.Errorf("failed: got %s, want %s", got, tc.failed)
			}
		})
	}
}

func TestSkipStatusFor(t *testing.T) {
	skippable := map[leads.AgentKind]leads.Status{
		leads.AgentDuplicateCheck: leads.StatusReview,
		leads.AgentTimeline:       leads.StatusReview,
	}

	for agent, want := range skippable {
		got, ok := leads.SkipStatusFor(agent)
		if !ok {
			t.Errorf("%s should be skippable", agent)
			continue
		}
		if got != want {
			t.Errorf("%s: got %s, want %s", agent, got, want)
		}
	}

	for _, agent := range []leads.AgentKind{leads.AgentExtraction, leads.AgentQuickScan} {
		if _, ok := leads.SkipStatusFor(agent); ok {
			t.Errorf("%s should not be skippable", agent)
		}
	}
}

func TestNewAgentError(t *testing.T) {
	cause := faults.Classify(errors.New("connection refused"))

	rec := leads.NewAgentError(leads.AgentQuickScan, cause, 3)

	if rec.ID == uuid.Nil {
		t.Error("expected generated id")
	}
	if rec.Agent != leads.AgentQuickScan {
		t.Errorf("agent: got %s", rec.Agent)
	}
	if rec.Kind != faults.KindNetwork {
		t.Errorf("kind: got %s, want %s", rec.Kind, faults.KindNetwork)
	}
	if rec.Attempts != 3 {
		t.Errorf("attempts: got %d, want 3", rec.Attempts)
	}
	if rec.RecommendedAction != faults.ActionRetry {
		t.Errorf("recommended action: got %s, want %s", rec.RecommendedAction, faults.ActionRetry)
	}
	if rec.Resolved {
		t.Error("new record must be unresolved")
	}
	if rec.Timestamp.IsZero() {
		t.Error("expected timestamp")
	}
}

func TestUnresolvedErrors(t *testing.T) {
	cause := faults.Classify(errors.New("timeout"))

	lead := leads.Lead{
		AgentErrors: []leads.AgentError{
			leads.NewAgentError(leads.AgentTimeline, cause, 1),
			leads.NewAgentError(leads.AgentQuickScan, cause, 2),
		},
	}
	lead.AgentErrors[0].Resolved = true

	unresolved := lead.UnresolvedErrors()
	if len(unresolved) != 1 {
		t.Fatalf("unresolved: got %d, want 1", len(unresolved))
	}
	if unresolved[0].Agent != leads.AgentQuickScan {
		t.Errorf("agent: got %s, want %s", unresolved[0].Agent, leads.AgentQuickScan)
	}
}
