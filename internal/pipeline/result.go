// Package pipeline orchestrates lead qualification: one required extraction
// stage followed by three independent enrichment branches running in
// parallel. Runs execute in the background under a durable job record.
package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/prospect-labs/prospect/internal/agents"
	"github.com/prospect-labs/prospect/internal/estimate"
)

// Result is the aggregated output of one qualification run, persisted as
// the job result and as the lead's qualification payload. Success means no
// branch failed; a run with substitute results still completes, it just
// carries the branch failures in Errors. Estimate is derived from the
// extraction inventory during aggregation.
type Result struct {
	JobID       uuid.UUID                   `json:"job_id"`
	LeadID      uuid.UUID                   `json:"lead_id"`
	Success     bool                        `json:"success"`
	Extraction  agents.ExtractionResult     `json:"extraction"`
	QuickScan   agents.QuickScanResult      `json:"quick_scan"`
	Timeline    agents.TimelineResult       `json:"timeline"`
	Duplicates  agents.DuplicateCheckResult `json:"duplicates"`
	Estimate    estimate.Result             `json:"estimate"`
	Errors      []string                    `json:"errors"`
	CompletedAt time.Time                   `json:"completed_at"`
}
