package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prospect-labs/prospect/internal/leads"
	"github.com/prospect-labs/prospect/internal/retry"
	"github.com/prospect-labs/prospect/pkg/formatting"
)

const quickScanPrompt = `You are a sales qualification analyst. Given the
extracted company profile below, score how promising this lead is as a
prospect. Respond with a JSON object matching this shape:

{
  "score": 0,
  "verdict": "strong | moderate | weak",
  "signals": ["positive qualification signals"],
  "concerns": ["reasons to deprioritize"]
}

Score is an integer from 0 to 100. Base the assessment only on the profile;
do not invent facts.

Company profile:

%s`

// QuickScanOp returns the best-effort lead scoring operation. It works from
// the extraction output rather than re-crawling the site.
func QuickScanOp(rt *Runtime, lead *leads.Lead, extraction ExtractionResult) retry.Operation[QuickScanResult] {
	return func(ctx context.Context) (QuickScanResult, error) {
		var zero QuickScanResult

		profile, err := json.Marshal(extraction)
		if err != nil {
			return zero, fmt.Errorf("encode profile: %w", err)
		}

		content, err := rt.chat(ctx, fmt.Sprintf(quickScanPrompt, profile))
		if err != nil {
			return zero, err
		}

		parsed, err := formatting.Parse[QuickScanResult](content)
		if err != nil {
			return zero, fmt.Errorf("parse quick scan response: %w", err)
		}

		return parsed, nil
	}
}
