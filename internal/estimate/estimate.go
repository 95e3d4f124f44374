// Package estimate produces engagement effort estimates for qualified
// leads. The model is bottom-up: per-item base hours by complexity,
// percentage multipliers on the base, migration and fixed setup effort,
// a project management share, and a risk buffer on the subtotal.
package estimate

// Complexity grades a single work item.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// Risk selects the buffer percentage applied to the subtotal.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// ItemType is the kind of deliverable an item represents.
type ItemType string

const (
	// ItemFeature is a product capability to build or replicate.
	ItemFeature ItemType = "feature"
	// ItemIntegration is a third-party system or technology to connect.
	ItemIntegration ItemType = "integration"
	// ItemComponent is a small reusable building block.
	ItemComponent ItemType = "component"
)

// Item is one estimated deliverable. Hours is filled in by Compute.
type Item struct {
	Name       string     `json:"name"`
	Type       ItemType   `json:"type"`
	Complexity Complexity `json:"complexity"`
	Hours      float64    `json:"hours"`
}

// Migration describes existing data to carry over, if any.
type Migration struct {
	Records    int        `json:"records"`
	Complexity Complexity `json:"complexity"`
}

// Input is the inventory an estimate is computed from.
type Input struct {
	Items       []Item             `json:"items"`
	Multipliers map[string]float64 `json:"multipliers"`
	Migration   Migration          `json:"migration"`
	Risk        Risk               `json:"risk"`
}

// Result is the complete estimate breakdown. All hour figures are additive:
// TotalHours = BaseHours + MultiplierHours + MigrationHours +
// AdditionalHours + BufferHours.
type Result struct {
	BaseHours          float64            `json:"base_hours"`
	MultiplierHours    float64            `json:"multiplier_hours"`
	MigrationHours     float64            `json:"migration_hours"`
	AdditionalHours    float64            `json:"additional_hours"`
	Subtotal           float64            `json:"subtotal"`
	BufferHours        float64            `json:"buffer_hours"`
	TotalHours         float64            `json:"total_hours"`
	Breakdown          []Item             `json:"breakdown"`
	MultipliersApplied map[string]float64 `json:"multipliers_applied"`
	Risk               Risk               `json:"risk"`
	Assumptions        []string           `json:"assumptions"`
	Risks              []string           `json:"risks"`
}

// Base hours per item type and complexity.
var itemHours = map[ItemType]map[Complexity]float64{
	ItemFeature:     {ComplexitySimple: 3, ComplexityMedium: 6, ComplexityComplex: 12},
	ItemIntegration: {ComplexitySimple: 12, ComplexityMedium: 28, ComplexityComplex: 70},
	ItemComponent:   {ComplexitySimple: 1.5, ComplexityMedium: 3, ComplexityComplex: 6},
}

// Migration effort: a fixed setup cost plus scaled per-record effort.
const (
	migrationSetupHours   = 30
	migrationHoursPer100  = 10
	infrastructureHours   = 60
	handoverHours         = 30
	projectManagementRate = 0.18
)

var migrationMultiplier = map[Complexity]float64{
	ComplexitySimple:  1.0,
	ComplexityMedium:  2.0,
	ComplexityComplex: 3.5,
}

var bufferPercent = map[Risk]float64{
	RiskLow:    0.15,
	RiskMedium: 0.20,
	RiskHigh:   0.25,
}

var defaultAssumptions = []string{
	"Scope is limited to the inventoried items",
	"Team is familiar with the identified technologies",
	"Standard development practices are followed",
	"No major scope changes during delivery",
}

var defaultRisks = []string{
	"Requirements may evolve during delivery",
	"Integration complexity may be higher than assessed",
	"Third-party dependencies may require additional effort",
}

// Compute produces the full estimate for an inventory. It is pure and
// deterministic: the same input always yields the same breakdown. Unknown
// item types or complexities contribute zero hours rather than failing;
// an unknown risk level falls back to medium.
func Compute(in Input) Result {
	base, breakdown := baseHours(in.Items)
	multiplierHours, applied := applyMultipliers(base, in.Multipliers)
	migration := migrationHours(in.Migration)

	beforePM := base + multiplierHours + migration + infrastructureHours + handoverHours
	pm := beforePM * projectManagementRate
	additional := infrastructureHours + handoverHours + pm

	subtotal := beforePM + pm

	risk := in.Risk
	if _, ok := bufferPercent[risk]; !ok {
		risk = RiskMedium
	}
	buffer := subtotal * bufferPercent[risk]

	return Result{
		BaseHours:          base,
		MultiplierHours:    multiplierHours,
		MigrationHours:     migration,
		AdditionalHours:    additional,
		Subtotal:           subtotal,
		BufferHours:        buffer,
		TotalHours:         subtotal + buffer,
		Breakdown:          breakdown,
		MultipliersApplied: applied,
		Risk:               risk,
		Assumptions:        defaultAssumptions,
		Risks:              defaultRisks,
	}
}

func baseHours(items []Item) (float64, []Item) {
	total := 0.0
	breakdown := make([]Item, 0, len(items))

	for _, item := range items {
		item.Hours = itemHours[item.Type][item.Complexity]
		total += item.Hours
		breakdown = append(breakdown, item)
	}

	return total, breakdown
}

func applyMultipliers(base float64, multipliers map[string]float64) (float64, map[string]float64) {
	total := 0.0
	applied := make(map[string]float64, len(multipliers))

	for name, percent := range multipliers {
		hours := base * percent
		applied[name] = hours
		total += hours
	}

	return total, applied
}

func migrationHours(m Migration) float64 {
	if m.Records == 0 {
		return 0
	}

	multiplier, ok := migrationMultiplier[m.Complexity]
	if !ok {
		multiplier = migrationMultiplier[ComplexityMedium]
	}

	perRecord := float64(m.Records) / 100 * migrationHoursPer100 * multiplier
	return migrationSetupHours + perRecord
}
