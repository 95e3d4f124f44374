package agents

import (
	"github.com/prospect-labs/prospect/internal/leads"
	"github.com/prospect-labs/prospect/internal/retry"
)

// Set binds the four agent operations behind function fields so the
// pipeline depends on the operations, not their construction. Tests swap
// individual fields for canned behavior.
type Set struct {
	Extraction     func(lead *leads.Lead) retry.Operation[ExtractionResult]
	QuickScan      func(lead *leads.Lead, extraction ExtractionResult) retry.Operation[QuickScanResult]
	Timeline       func(lead *leads.Lead, extraction ExtractionResult) retry.Operation[TimelineResult]
	DuplicateCheck func(lead *leads.Lead) retry.Operation[DuplicateCheckResult]
}

// NewSet wires the production agent operations over the given runtime.
func NewSet(rt *Runtime) *Set {
	return &Set{
		Extraction: func(lead *leads.Lead) retry.Operation[ExtractionResult] {
			return ExtractionOp(rt, lead)
		},
		QuickScan: func(lead *leads.Lead, extraction ExtractionResult) retry.Operation[QuickScanResult] {
			return QuickScanOp(rt, lead, extraction)
		},
		Timeline: func(lead *leads.Lead, extraction ExtractionResult) retry.Operation[TimelineResult] {
			return TimelineOp(rt, lead, extraction)
		},
		DuplicateCheck: func(lead *leads.Lead) retry.Operation[DuplicateCheckResult] {
			return DuplicateCheckOp(rt, lead)
		},
	}
}
