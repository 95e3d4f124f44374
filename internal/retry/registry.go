package retry

import "time"

// Agent kind names recognized by the policy registry. Call sites bind
// policies by name so they cannot invent ad-hoc retry behavior.
const (
	KindDuplicateCheck = "duplicate-check"
	KindExtraction     = "extraction"
	KindQuickScan      = "quick-scan"
	KindTimeline       = "timeline"
)

// configs holds the fixed policy per agent kind. Extraction gets the most
// headroom since the whole pipeline blocks on it; duplicate checking is a
// cheap database pass and fails fast.
var configs = map[string]Config{
	KindDuplicateCheck: {
		MaxAttempts:       2,
		InitialDelay:      500 * time.Millisecond,
		BackoffMultiplier: 2,
		AttemptTimeout:    10 * time.Second,
	},
	KindExtraction: {
		MaxAttempts:       3,
		InitialDelay:      2 * time.Second,
		BackoffMultiplier: 2,
		AttemptTimeout:    90 * time.Second,
	},
	KindQuickScan: {
		MaxAttempts:       3,
		InitialDelay:      time.Second,
		BackoffMultiplier: 2,
		AttemptTimeout:    45 * time.Second,
	},
	KindTimeline: {
		MaxAttempts:       2,
		InitialDelay:      time.Second,
		BackoffMultiplier: 2,
		AttemptTimeout:    45 * time.Second,
	},
}

// defaultConfig covers agent kinds without a registered policy.
var defaultConfig = Config{
	MaxAttempts:       3,
	InitialDelay:      time.Second,
	BackoffMultiplier: 2,
	AttemptTimeout:    60 * time.Second,
}

// ForKind returns the fixed retry policy for a named agent kind.
func ForKind(kind string) Config {
	if cfg, ok := configs[kind]; ok {
		return cfg
	}
	return defaultConfig
}
