package jobs_test

import (
	"encoding/json"
	"testing"

	"github.com/prospect-labs/prospect/internal/jobs"
)

func TestStatusTerminal(t *testing.T) {
	terminal := []jobs.Status{jobs.StatusCompleted, jobs.StatusFailed, jobs.StatusCancelled}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
	}

	for _, s := range []jobs.Status{jobs.StatusPending, jobs.StatusRunning} {
		if s.Terminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
}

func TestJobPhase(t *testing.T) {
	tests := []struct {
		name   string
		result json.RawMessage
		want   string
	}{
		{"empty result", nil, ""},
		{"phase marker", json.RawMessage(`{"phase":"enrichment"}`), "enrichment"},
		{"final result without phase", json.RawMessage(`{"success":true}`), ""},
		{"malformed json", json.RawMessage(`{`), ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			job := jobs.Job{Result: tc.result}
			if got := job.Phase(); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
