package agents

import (
	"context"
	"fmt"

	"github.com/prospect-labs/prospect/internal/leads"
	"github.com/prospect-labs/prospect/internal/retry"
	"github.com/prospect-labs/prospect/pkg/formatting"
)

const extractionPrompt = `You are a company research analyst. Using only the
website content below, extract structured company data. Respond with a JSON
object matching this shape:

{
  "company": "official company name",
  "summary": "two sentence description of what the company does",
  "industry": "primary industry",
  "products": ["main products or services"],
  "technologies": ["technologies mentioned or evident"],
  "headcount": "estimated size band, e.g. 11-50",
  "location": "headquarters location if stated, else empty",
  "confidence": 0.0
}

Set confidence between 0 and 1 based on how much of the data is directly
supported by the content. Do not invent facts.

Website content:

%s`

// ExtractionOp returns the required-stage operation: crawl the lead's
// website and extract structured company data from it.
func ExtractionOp(rt *Runtime, lead *leads.Lead) retry.Operation[ExtractionResult] {
	return func(ctx context.Context) (ExtractionResult, error) {
		var zero ExtractionResult

		if lead.Website == "" {
			return zero, fmt.Errorf("missing required website for lead %s", lead.ID)
		}

		snapshot, err := rt.Crawler.Snapshot(ctx, lead.Website)
		if err != nil {
			return zero, fmt.Errorf("crawl %s: %w", lead.Website, err)
		}

		content, err := rt.chat(ctx, fmt.Sprintf(extractionPrompt, snapshot.Text()))
		if err != nil {
			return zero, err
		}

		parsed, err := formatting.Parse[ExtractionResult](content)
		if err != nil {
			return zero, fmt.Errorf("parse extraction response: %w", err)
		}

		return parsed, nil
	}
}
