// Package git provides the version-control collaborator for gitsmart.
// This file contains git error classification utilities.
package git

import (
	"fmt"
	"strings"

	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

// ErrorType represents the classification of a git error.
type ErrorType int

const (
	// ErrorTypeUnknown indicates the error could not be classified.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeConflict indicates a merge stopped on conflicts.
	ErrorTypeConflict
	// ErrorTypeDetachedHead indicates HEAD is not on a branch.
	ErrorTypeDetachedHead
	// ErrorTypeMissingRemote indicates the remote does not exist.
	ErrorTypeMissingRemote
	// ErrorTypeNonFastForward indicates a non-fast-forward push rejection.
	ErrorTypeNonFastForward
	// ErrorTypeAuth indicates an authentication error.
	ErrorTypeAuth
)

// String returns a human-readable name for the error type.
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeConflict:
		return "conflict"
	case ErrorTypeDetachedHead:
		return "detached_head"
	case ErrorTypeMissingRemote:
		return "missing_remote"
	case ErrorTypeNonFastForward:
		return "non_fast_forward"
	case ErrorTypeAuth:
		return "authentication"
	case ErrorTypeUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// Sentinel returns the error chain for this type: ErrRepository plus the
// specific sentinel when one applies.
func (e ErrorType) Sentinel() error {
	var specific error
	switch e {
	case ErrorTypeConflict:
		specific = gserrors.ErrMergeConflict
	case ErrorTypeDetachedHead:
		specific = gserrors.ErrDetachedHead
	case ErrorTypeMissingRemote:
		specific = gserrors.ErrMissingRemote
	case ErrorTypeNonFastForward:
		specific = gserrors.ErrNonFastForward
	case ErrorTypeAuth:
		specific = gserrors.ErrPushAuthFailed
	case ErrorTypeUnknown:
		return gserrors.ErrRepository
	}
	if specific == nil {
		return gserrors.ErrRepository
	}
	return fmt.Errorf("%w: %w", gserrors.ErrRepository, specific)
}

// PatternMatcher checks if a string contains any of a list of patterns.
// It performs case-insensitive matching on the lowercased input.
type PatternMatcher struct {
	patterns []string
}

// NewPatternMatcher creates a new PatternMatcher with the given patterns.
// All patterns should be lowercase for consistent matching.
func NewPatternMatcher(patterns ...string) *PatternMatcher {
	return &PatternMatcher{patterns: patterns}
}

// Matches returns true if the input string contains any of the patterns.
func (m *PatternMatcher) Matches(s string) bool {
	return m.MatchesLower(strings.ToLower(s))
}

// MatchesLower checks if an already-lowercased string matches any pattern.
func (m *PatternMatcher) MatchesLower(lower string) bool {
	for _, pattern := range m.patterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

//nolint:gochecknoglobals // Package-level immutable pattern matchers
var (
	conflictPatterns = NewPatternMatcher(
		"merge conflict",
		"automatic merge failed",
		"conflict (content)",
		"conflict (add/add)",
		"conflict (modify/delete)",
		"fix conflicts and then commit",
		"you have unmerged paths",
	)

	detachedHeadPatterns = NewPatternMatcher(
		"detached head",
		"not currently on any branch",
		"you are not currently on a branch",
	)

	missingRemotePatterns = NewPatternMatcher(
		"does not appear to be a git repository",
		"no such remote",
		"no configured push destination",
	)

	nonFastForwardPatterns = NewPatternMatcher(
		"non-fast-forward",
		"updates were rejected",
		"fetch first",
		"tip of your current branch is behind",
		"rejected because the remote contains work",
	)

	authPatterns = NewPatternMatcher(
		"authentication failed",
		"could not read username",
		"permission denied",
		"invalid username or password",
		"access denied",
	)
)

// ClassifyError determines the error type from git stderr.
// More specific patterns are checked first.
func ClassifyError(errStr string) ErrorType {
	lower := strings.ToLower(errStr)
	switch {
	case conflictPatterns.MatchesLower(lower):
		return ErrorTypeConflict
	case detachedHeadPatterns.MatchesLower(lower):
		return ErrorTypeDetachedHead
	case missingRemotePatterns.MatchesLower(lower):
		return ErrorTypeMissingRemote
	case nonFastForwardPatterns.MatchesLower(lower):
		return ErrorTypeNonFastForward
	case authPatterns.MatchesLower(lower):
		return ErrorTypeAuth
	default:
		return ErrorTypeUnknown
	}
}
