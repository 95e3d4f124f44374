package estimate

import (
	"github.com/prospect-labs/prospect/internal/agents"
)

// Extraction-derived inputs use fixed delivery multipliers; the inventory
// itself is too coarse to grade them per lead.
var extractionMultipliers = map[string]float64{
	"testing":       0.25,
	"documentation": 0.15,
}

// FromExtraction builds an estimation inventory from extracted company
// data: each product becomes a feature to replicate, each technology an
// integration to connect. Extraction confidence drives the risk buffer;
// the less the crawl supported, the larger the buffer.
func FromExtraction(x agents.ExtractionResult) Input {
	items := make([]Item, 0, len(x.Products)+len(x.Technologies))

	for _, product := range x.Products {
		items = append(items, Item{
			Name:       product,
			Type:       ItemFeature,
			Complexity: ComplexityMedium,
		})
	}
	for _, tech := range x.Technologies {
		items = append(items, Item{
			Name:       tech,
			Type:       ItemIntegration,
			Complexity: ComplexityMedium,
		})
	}

	return Input{
		Items:       items,
		Multipliers: extractionMultipliers,
		Risk:        riskFromConfidence(x.Confidence),
	}
}

func riskFromConfidence(confidence float64) Risk {
	switch {
	case confidence >= 0.75:
		return RiskLow
	case confidence >= 0.4:
		return RiskMedium
	default:
		return RiskHigh
	}
}
