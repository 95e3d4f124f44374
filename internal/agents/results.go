// Package agents implements the qualification agents and the failure
// handling wrapper they run under. Each agent folds a lead plus supporting
// data into a typed result; the wrapper owns retry, durable error records,
// fallbacks, and lead status transitions.
package agents

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionResult is the required stage output: structured company data
// pulled from the lead's website.
type ExtractionResult struct {
	Company      string   `json:"company"`
	Summary      string   `json:"summary"`
	Industry     string   `json:"industry"`
	Products     []string `json:"products"`
	Technologies []string `json:"technologies"`
	Headcount    string   `json:"headcount"`
	Location     string   `json:"location"`
	Confidence   float64  `json:"confidence"`
}

// QuickScanResult scores how well a lead fits the qualification profile.
// Unavailable marks a substitute result emitted when the scan failed and
// the pipeline proceeded without it.
type QuickScanResult struct {
	Score       int      `json:"score"`
	Verdict     string   `json:"verdict"`
	Signals     []string `json:"signals"`
	Concerns    []string `json:"concerns"`
	Unavailable bool     `json:"unavailable,omitempty"`
}

// UnavailableQuickScan returns the substitute emitted when the quick scan
// branch fails.
func UnavailableQuickScan() QuickScanResult {
	return QuickScanResult{Verdict: "unavailable", Unavailable: true}
}

// TimelineEvent is one dated milestone in a company history timeline.
type TimelineEvent struct {
	Date  string `json:"date"`
	Title string `json:"title"`
	Detail string `json:"detail"`
}

// TimelineResult is a best-effort company history reconstruction.
type TimelineResult struct {
	Events      []TimelineEvent `json:"events"`
	Unavailable bool            `json:"unavailable,omitempty"`
}

// UnavailableTimeline returns the substitute emitted when the timeline
// branch fails.
func UnavailableTimeline() TimelineResult {
	return TimelineResult{Events: []TimelineEvent{}, Unavailable: true}
}

// DuplicateMatch points at an existing lead that likely refers to the same
// company.
type DuplicateMatch struct {
	LeadID  uuid.UUID `json:"lead_id"`
	Company string    `json:"company"`
	Website string    `json:"website"`
	Reason  string    `json:"reason"`
}

// DuplicateCheckResult lists likely duplicates of the lead under
// qualification.
type DuplicateCheckResult struct {
	Matches     []DuplicateMatch `json:"matches"`
	CheckedAt   time.Time        `json:"checked_at"`
	Unavailable bool             `json:"unavailable,omitempty"`
}

// UnavailableDuplicateCheck returns the substitute emitted when the
// duplicate check branch fails.
func UnavailableDuplicateCheck() DuplicateCheckResult {
	return DuplicateCheckResult{Matches: []DuplicateMatch{}, Unavailable: true}
}
