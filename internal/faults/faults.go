// Package faults classifies arbitrary agent failures into a fixed taxonomy
// that drives retry and recovery behavior across the qualification pipeline.
package faults

// Category groups failures by how the system should respond to them.
type Category string

// Failure categories. Category is the sole driver of retry/recovery
// decisions; Kind is a finer diagnostic tag used for messaging only.
const (
	CategoryTransient   Category = "transient"
	CategoryPermanent   Category = "permanent"
	CategoryUserFixable Category = "user_fixable"
	CategoryCritical    Category = "critical"
)

// Kind identifies the specific failure signature that was matched.
type Kind string

// Failure kinds, ordered roughly by classification priority.
const (
	KindValidation        Kind = "VALIDATION_ERROR"
	KindAIEmptyResponse   Kind = "AI_EMPTY_RESPONSE"
	KindNetwork           Kind = "NETWORK_ERROR"
	KindTimeout           Kind = "TIMEOUT"
	KindRateLimit         Kind = "RATE_LIMIT"
	KindAuthentication    Kind = "AUTHENTICATION_ERROR"
	KindMissingData       Kind = "MISSING_DATA"
	KindPDFParsing        Kind = "PDF_PARSING_ERROR"
	KindBrowserAutomation Kind = "BROWSER_AUTOMATION_ERROR"
	KindAPI               Kind = "API_ERROR"
	KindUnknown           Kind = "UNKNOWN_ERROR"
)

// Action is the recovery step recommended to a human operator.
type Action string

// Recommended recovery actions per category. The UI relies on this mapping
// to decide which control to surface for a recorded failure.
const (
	ActionRetry          Action = "retry"
	ActionSkip           Action = "skip"
	ActionManualInput    Action = "manual_input"
	ActionContactSupport Action = "contact_support"
)

// Classified is the result of classifying a failure. It is produced fresh
// on every failure and embedded in agent results and durable error records,
// never persisted standalone.
type Classified struct {
	Kind      Kind     `json:"kind"`
	Category  Category `json:"category"`
	Message   string   `json:"message"`
	Details   string   `json:"details,omitempty"`
	Retryable bool     `json:"retryable"`
}

// Error implements the error interface so a Classified can be wrapped
// and logged like any other failure.
func (c *Classified) Error() string {
	return c.Message
}

// Retryable reports whether a category should be retried automatically.
// Only transient failures qualify.
func Retryable(cat Category) bool {
	return cat == CategoryTransient
}

// RecommendedAction maps a category to the recovery action offered to a human.
func RecommendedAction(cat Category) Action {
	switch cat {
	case CategoryTransient:
		return ActionRetry
	case CategoryUserFixable:
		return ActionManualInput
	case CategoryPermanent:
		return ActionSkip
	default:
		return ActionContactSupport
	}
}
