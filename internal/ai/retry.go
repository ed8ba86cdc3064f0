package ai

import (
	"context"
	"errors"
	"strings"
	"time"
)

// timeSleep is a wrapper for time.After that can be overridden in tests.
//
//nolint:gochecknoglobals // Required for test mocking
var timeSleep = func(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// nonRetryableMarkers are lowercase fragments of errors that will not go
// away on a second attempt.
//
//nolint:gochecknoglobals // Constant-like lookup table
var nonRetryableMarkers = []string{
	"authentication",
	"api key",
	"anthropic_api_key",
	"gemini_api_key",
	"openai_api_key",
	"invalid json",
	"failed to parse json",
	"not found",
	"no such file or directory",
}

// containsAny reports whether s contains any of substrs.
func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// isRetryable determines whether an error should be retried.
// Context errors, auth errors, parse errors, and a missing CLI are final.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return !containsAny(strings.ToLower(err.Error()), nonRetryableMarkers...)
}
