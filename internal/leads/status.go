package leads

import "fmt"

// Status is the lead workflow state driven by the qualification pipeline
// and user recovery actions.
type Status string

// Lead workflow statuses.
const (
	StatusNew              Status = "new"
	StatusExtracting       Status = "extracting"
	StatusEnriching        Status = "enriching"
	StatusReview           Status = "review"
	StatusExtractionFailed Status = "extraction_failed"
	StatusQuickScanFailed  Status = "quick_scan_failed"
	StatusTimelineFailed   Status = "timeline_failed"
	StatusDuplicateFailed  Status = "duplicate_check_failed"
)

// AgentKind names an agent in the qualification pipeline.
type AgentKind string

// The four pipeline agents. Extraction is the required stage; the other
// three run best-effort after it.
const (
	AgentDuplicateCheck AgentKind = "duplicate-check"
	AgentExtraction     AgentKind = "extraction"
	AgentQuickScan      AgentKind = "quick-scan"
	AgentTimeline       AgentKind = "timeline"
)

// ParseAgentKind validates an agent name from an external source.
func ParseAgentKind(s string) (AgentKind, error) {
	switch k := AgentKind(s); k {
	case AgentDuplicateCheck, AgentExtraction, AgentQuickScan, AgentTimeline:
		return k, nil
	}
	return "", fmt.Errorf("unknown agent kind %q", s)
}

// Critical reports whether a failure of this agent must block the workflow.
func (k AgentKind) Critical() bool {
	return k == AgentExtraction
}

// The status tables below are the whole lead state machine: each agent maps
// deterministically to the status written when it runs, when it fails, and
// (for skippable agents) when a user skips past its failure.

var agentRunningStatus = map[AgentKind]Status{
	AgentDuplicateCheck: StatusEnriching,
	AgentExtraction:     StatusExtracting,
	AgentQuickScan:      StatusEnriching,
	AgentTimeline:       StatusEnriching,
}

var agentFailedStatus = map[AgentKind]Status{
	AgentDuplicateCheck: StatusDuplicateFailed,
	AgentExtraction:     StatusExtractionFailed,
	AgentQuickScan:      StatusQuickScanFailed,
	AgentTimeline:       StatusTimelineFailed,
}

var agentSkipStatus = map[AgentKind]Status{
	AgentDuplicateCheck: StatusReview,
	AgentTimeline:       StatusReview,
}

// RunningStatusFor returns the status a lead enters while the agent runs.
func RunningStatusFor(k AgentKind) Status {
	return agentRunningStatus[k]
}

// FailedStatusFor returns the status written when the agent's failure blocks
// the lead.
func FailedStatusFor(k AgentKind) Status {
	return agentFailedStatus[k]
}

// SkipStatusFor returns the status a skip action advances the lead to, and
// whether the agent is skippable at all.
func SkipStatusFor(k AgentKind) (Status, bool) {
	s, ok := agentSkipStatus[k]
	return s, ok
}
