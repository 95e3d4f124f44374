package faults

import (
	"regexp"
	"strconv"
	"strings"
)

// Classification rules are evaluated in declaration order and the first
// match wins. The order matters because signatures overlap: a page-load
// timeout from a browser driver must classify as TIMEOUT, not as
// BROWSER_AUTOMATION_ERROR, so timeout rules sit ahead of browser rules.
var rules = []struct {
	kind     Kind
	category Category
	patterns []string
}{
	{KindValidation, CategoryPermanent, []string{
		"schema validation",
		"validation failed",
		"invalid_type",
		"cannot unmarshal",
		"does not match schema",
	}},
	// Empty or malformed model output is transient so an upstream
	// fallback model can be tried on the next attempt.
	{KindAIEmptyResponse, CategoryTransient, []string{
		"empty response",
		"no content in response",
		"empty completion",
		"malformed response",
		"model returned no",
	}},
	{KindNetwork, CategoryTransient, []string{
		"connection refused",
		"connection reset",
		"no such host",
		"dns",
		"fetch failed",
		"network is unreachable",
		"broken pipe",
	}},
	{KindTimeout, CategoryTransient, []string{
		"timeout",
		"timed out",
		"deadline exceeded",
	}},
	{KindRateLimit, CategoryTransient, []string{
		"429",
		"rate limit",
		"too many",
	}},
	{KindAuthentication, CategoryPermanent, []string{
		"401",
		"403",
		"unauthorized",
		"forbidden",
		"invalid api key",
		"authentication",
	}},
	{KindMissingData, CategoryUserFixable, []string{
		"missing required",
		"required field",
		"no website",
		"missing data",
		"no data provided",
	}},
	{KindPDFParsing, CategoryPermanent, []string{
		"pdf",
	}},
	{KindBrowserAutomation, CategoryTransient, []string{
		"playwright",
		"puppeteer",
		"chromium",
		"browser",
		"navigation failed",
	}},
}

var statusPattern = regexp.MustCompile(`(?:status(?: code)?|api error)\D{0,4}(\d{3})`)

// Classify maps any failure to a Classified triple of kind, category, and
// retryability. It is pure and deterministic: identical error text always
// produces identical classification. A nil error classifies as unknown.
func Classify(err error) *Classified {
	if err == nil {
		return classified(KindUnknown, CategoryCritical, "unknown error")
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	for _, rule := range rules {
		for _, p := range rule.patterns {
			if strings.Contains(lower, p) {
				return classified(rule.kind, rule.category, msg)
			}
		}
	}

	if m := statusPattern.FindStringSubmatch(lower); m != nil {
		return classifyAPIStatus(msg, m[1])
	}

	return classified(KindUnknown, CategoryCritical, msg)
}

// classifyAPIStatus handles generic API-error signatures carrying an HTTP
// status: 5xx is worth retrying, 4xx is not (429 was matched earlier).
func classifyAPIStatus(msg, status string) *Classified {
	code, _ := strconv.Atoi(status)
	if code >= 500 && code < 600 {
		return classified(KindAPI, CategoryTransient, msg)
	}
	return classified(KindAPI, CategoryPermanent, msg)
}

func classified(kind Kind, cat Category, msg string) *Classified {
	return &Classified{
		Kind:      kind,
		Category:  cat,
		Message:   msg,
		Details:   msg,
		Retryable: Retryable(cat),
	}
}
