package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prospect-labs/prospect/internal/leads"
	"github.com/prospect-labs/prospect/internal/retry"
	"github.com/prospect-labs/prospect/pkg/formatting"
)

const timelinePrompt = `You are a company research analyst. From the company
profile below, reconstruct a timeline of notable company milestones that are
stated or strongly implied. Respond with a JSON object matching this shape:

{
  "events": [
    {"date": "YYYY or YYYY-MM", "title": "short milestone name", "detail": "one sentence"}
  ]
}

Order events oldest first. Return an empty events array when nothing is
supported by the profile. Do not invent facts.

Company profile:

%s`

// TimelineOp returns the best-effort company history operation.
func TimelineOp(rt *Runtime, lead *leads.Lead, extraction ExtractionResult) retry.Operation[TimelineResult] {
	return func(ctx context.Context) (TimelineResult, error) {
		var zero TimelineResult

		profile, err := json.Marshal(extraction)
		if err != nil {
			return zero, fmt.Errorf("encode profile: %w", err)
		}

		content, err := rt.chat(ctx, fmt.Sprintf(timelinePrompt, profile))
		if err != nil {
			return zero, err
		}

		parsed, err := formatting.Parse[TimelineResult](content)
		if err != nil {
			return zero, fmt.Errorf("parse timeline response: %w", err)
		}

		return parsed, nil
	}
}
