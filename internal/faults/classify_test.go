package faults_test

import (
	"errors"
	"testing"

	"github.com/prospect-labs/prospect/internal/faults"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     faults.Kind
		category faults.Category
	}{
		{
			name:     "schema validation failure",
			err:      errors.New("schema validation failed for field industry"),
			kind:     faults.KindValidation,
			category: faults.CategoryPermanent,
		},
		{
			name:     "empty model output",
			err:      errors.New("empty response from model"),
			kind:     faults.KindAIEmptyResponse,
			category: faults.CategoryTransient,
		},
		{
			name:     "fetch failure is a network error",
			err:      errors.New("fetch failed: socket closed"),
			kind:     faults.KindNetwork,
			category: faults.CategoryTransient,
		},
		{
			name:     "connection refused",
			err:      errors.New("dial tcp 10.0.0.5:443: connection refused"),
			kind:     faults.KindNetwork,
			category: faults.CategoryTransient,
		},
		{
			name:     "context deadline",
			err:      errors.New("context deadline exceeded"),
			kind:     faults.KindTimeout,
			category: faults.CategoryTransient,
		},
		{
			name:     "browser page timeout classifies as timeout, not browser",
			err:      errors.New("chromium navigation timed out after 30000ms"),
			kind:     faults.KindTimeout,
			category: faults.CategoryTransient,
		},
		{
			name:     "browser crash without timeout language",
			err:      errors.New("chromium process crashed during navigation"),
			kind:     faults.KindBrowserAutomation,
			category: faults.CategoryTransient,
		},
		{
			name:     "rate limit by status code",
			err:      errors.New("request rejected: 429"),
			kind:     faults.KindRateLimit,
			category: faults.CategoryTransient,
		},
		{
			name:     "invalid api key",
			err:      errors.New("Unauthorized: Invalid API key provided"),
			kind:     faults.KindAuthentication,
			category: faults.CategoryPermanent,
		},
		{
			name:     "missing required field",
			err:      errors.New("missing required website for lead"),
			kind:     faults.KindMissingData,
			category: faults.CategoryUserFixable,
		},
		{
			name:     "pdf extraction failure",
			err:      errors.New("pdf cross reference table corrupt"),
			kind:     faults.KindPDFParsing,
			category: faults.CategoryPermanent,
		},
		{
			name:     "api 5xx is transient",
			err:      errors.New("upstream api error: status 503"),
			kind:     faults.KindAPI,
			category: faults.CategoryTransient,
		},
		{
			name:     "api 4xx is permanent",
			err:      errors.New("api error: status 404"),
			kind:     faults.KindAPI,
			category: faults.CategoryPermanent,
		},
		{
			name:     "unmatched error is critical unknown",
			err:      errors.New("something inexplicable"),
			kind:     faults.KindUnknown,
			category: faults.CategoryCritical,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := faults.Classify(tc.err)

			if c.Kind != tc.kind {
				t.Errorf("kind: got %s, want %s", c.Kind, tc.kind)
			}
			if c.Category != tc.category {
				t.Errorf("category: got %s, want %s", c.Category, tc.category)
			}
			if want := tc.category == faults.CategoryTransient; c.Retryable != want {
				t.Errorf("retryable: got %v, want %v", c.Retryable, want)
			}
			if c.Message != tc.err.Error() {
				t.Errorf("message: got %q, want %q", c.Message, tc.err.Error())
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	err := errors.New("connection reset by peer")

	first := faults.Classify(err)
	second := faults.Classify(err)

	if first.Kind != second.Kind || first.Category != second.Category {
		t.Errorf("classification not deterministic: %+v vs %+v", first, second)
	}
}

func TestClassifyNil(t *testing.T) {
	c := faults.Classify(nil)

	if c.Kind != faults.KindUnknown {
		t.Errorf("kind: got %s, want %s", c.Kind, faults.KindUnknown)
	}
	if c.Category != faults.CategoryCritical {
		t.Errorf("category: got %s, want %s", c.Category, faults.CategoryCritical)
	}
}

func TestRecommendedAction(t *testing.T) {
	tests := []struct {
		category faults.Category
		action   faults.Action
	}{
		{faults.CategoryTransient, faults.ActionRetry},
		{faults.CategoryPermanent, faults.ActionSkip},
		{faults.CategoryUserFixable, faults.ActionManualInput},
		{faults.CategoryCritical, faults.ActionContactSupport},
	}

	for _, tc := range tests {
		if got := faults.RecommendedAction(tc.category); got != tc.action {
			t.Errorf("%s: got %s, want %s", tc.category, got, tc.action)
		}
	}
}
