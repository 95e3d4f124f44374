package estimate_test

import (
	"math"
	"testing"

	"github.com/prospect-labs/prospect/internal/agents"
	"github.com/prospect-labs/prospect/internal/estimate"
)

func near(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestComputeBreakdown(t *testing.T) {
	in := estimate.Input{
		Items: []estimate.Item{
			{Name: "Storefront", Type: estimate.ItemFeature, Complexity: estimate.ComplexityMedium},
			{Name: "Payment gateway", Type: estimate.ItemIntegration, Complexity: estimate.ComplexityComplex},
		},
		Multipliers: map[string]float64{"testing": 0.25},
		Migration:   estimate.Migration{Records: 200, Complexity: estimate.ComplexityMedium},
		Risk:        estimate.RiskMedium,
	}

	result := estimate.Compute(in)

	// base: 6 + 70
	if !near(result.BaseHours, 76) {
		t.Errorf("base hours: got %v, want 76", result.BaseHours)
	}
	// testing multiplier: 76 * 0.25
	if !near(result.MultiplierHours, 19) {
		t.Errorf("multiplier hours: got %v, want 19", result.MultiplierHours)
	}
	// migration: 30 setup + (200/100) * 10 * 2.0
	if !near(result.MigrationHours, 70) {
		t.Errorf("migration hours: got %v, want 70", result.MigrationHours)
	}

	// 76 + 19 + 70 + 60 infra + 30 handover = 255 before pm; pm = 45.9
	if !near(result.AdditionalHours, 60+30+45.9) {
		t.Errorf("additional hours: got %v, want 135.9", result.AdditionalHours)
	}
	if !near(result.Subtotal, 300.9) {
		t.Errorf("subtotal: got %v, want 300.9", result.Subtotal)
	}
	if !near(result.BufferHours, 300.9*0.20) {
		t.Errorf("buffer hours: got %v, want %v", result.BufferHours, 300.9*0.20)
	}
	if !near(result.TotalHours, 300.9*1.20) {
		t.Errorf("total hours: got %v, want %v", result.TotalHours, 300.9*1.20)
	}

	if len(result.Breakdown) != 2 {
		t.Fatalf("breakdown: got %d items, want 2", len(result.Breakdown))
	}
	if !near(result.Breakdown[1].Hours, 70) {
		t.Errorf("breakdown hours: got %v, want 70", result.Breakdown[1].Hours)
	}
	if !near(result.MultipliersApplied["testing"], 19) {
		t.Errorf("applied multiplier: got %v, want 19", result.MultipliersApplied["testing"])
	}
}

func TestComputeRiskBuffer(t *testing.T) {
	tests := []struct {
		risk    estimate.Risk
		percent float64
	}{
		{estimate.RiskLow, 0.15},
		{estimate.RiskMedium, 0.20},
		{estimate.RiskHigh, 0.25},
		{estimate.Risk("unscored"), 0.20},
	}

	for _, tc := range tests {
		t.Run(string(tc.risk), func(t *testing.T) {
			result := estimate.Compute(estimate.Input{Risk: tc.risk})
			if !near(result.BufferHours, result.Subtotal*tc.percent) {
				t.Errorf("buffer: got %v, want %v of subtotal %v",
					result.BufferHours, tc.percent, result.Subtotal)
			}
		})
	}
}

func TestComputeNoMigration(t *testing.T) {
	result := estimate.Compute(estimate.Input{Risk: estimate.RiskLow})
	if result.MigrationHours != 0 {
		t.Errorf("migration hours without records: got %v, want 0", result.MigrationHours)
	}
}

func TestComputeUnknownItemContributesZero(t *testing.T) {
	result := estimate.Compute(estimate.Input{
		Items: []estimate.Item{
			{Name: "mystery", Type: estimate.ItemType("artifact"), Complexity: estimate.ComplexityMedium},
		},
		Risk: estimate.RiskLow,
	})

	if result.BaseHours != 0 {
		t.Errorf("base hours for unknown item type: got %v, want 0", result.BaseHours)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	in := estimate.Input{
		Items: []estimate.Item{
			{Name: "API", Type: estimate.ItemIntegration, Complexity: estimate.ComplexitySimple},
		},
		Risk: estimate.RiskHigh,
	}

	first := estimate.Compute(in)
	second := estimate.Compute(in)

	if first.TotalHours != second.TotalHours {
		t.Errorf("total differs across runs: %v vs %v", first.TotalHours, second.TotalHours)
	}
}

func TestFromExtraction(t *testing.T) {
	in := estimate.FromExtraction(agents.ExtractionResult{
		Products:     []string{"CRM", "Billing"},
		Technologies: []string{"Stripe"},
		Confidence:   0.9,
	})

	if len(in.Items) != 3 {
		t.Fatalf("items: got %d, want 3", len(in.Items))
	}
	if in.Items[0].Type != estimate.ItemFeature || in.Items[0].Name != "CRM" {
		t.Errorf("first item: got %+v", in.Items[0])
	}
	if in.Items[2].Type != estimate.ItemIntegration || in.Items[2].Name != "Stripe" {
		t.Errorf("last item: got %+v", in.Items[2])
	}
	if in.Risk != estimate.RiskLow {
		t.Errorf("risk: got %s, want %s", in.Risk, estimate.RiskLow)
	}
	if in.Multipliers["testing"] != 0.25 {
		t.Errorf("testing multiplier: got %v", in.Multipliers["testing"])
	}
}

func TestFromExtractionRiskBands(t *testing.T) {
	tests := []struct {
		confidence float64
		want       estimate.Risk
	}{
		{0.9, estimate.RiskLow},
		{0.75, estimate.RiskLow},
		{0.5, estimate.RiskMedium},
		{0.4, estimate.RiskMedium},
		{0.1, estimate.RiskHigh},
		{0, estimate.RiskHigh},
	}

	for _, tc := range tests {
		in := estimate.FromExtraction(agents.ExtractionResult{Confidence: tc.confidence})
		if in.Risk != tc.want {
			t.Errorf("confidence %v: got %s, want %s", tc.confidence, in.Risk, tc.want)
		}
	}
}
