// Package constants provides centralized constant values used throughout gitsmart.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory names used by gitsmart.
const (
	// GitsmartHome is the hidden directory name where gitsmart stores its global
	// configuration and logs. This directory is created in the user's home directory.
	GitsmartHome = ".gitsmart"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"
)

// Message format limits.
const (
	// DefaultSubjectMaxLength is the maximum length of a commit header line.
	DefaultSubjectMaxLength = 72

	// DefaultBodyLineWidth is the column at which commit body lines wrap.
	DefaultBodyLineWidth = 72

	// MinSubjectMaxLength is the smallest subject limit accepted from configuration.
	// Anything shorter cannot hold a conventional prefix and a meaningful description.
	MinSubjectMaxLength = 20

	// MinBodyLineWidth is the smallest body width accepted from configuration.
	MinBodyLineWidth = 20

	// MaxScopeLength caps scopes derived from directory or feature names.
	MaxScopeLength = 24

	// MinSubjectRoom is the header space kept free for the subject when a
	// derived scope is shortened.
	MinSubjectRoom = 8
)

// Grouping defaults.
const (
	// DefaultDegeneracyThreshold is the group size above which a single-group
	// classification of a larger change set is considered degenerate.
	DefaultDegeneracyThreshold = 3

	// DefaultDraftConcurrency bounds how many commit messages are drafted in parallel.
	DefaultDraftConcurrency = 4

	// MaxDraftConcurrency is the upper bound accepted from configuration.
	MaxDraftConcurrency = 16
)

// Timeout configurations for various operations.
const (
	// DefaultClassifierTimeout bounds a single classifier or message generation call.
	DefaultClassifierTimeout = 30 * time.Second

	// DefaultGitTimeout bounds a single git command.
	DefaultGitTimeout = 2 * time.Minute
)

// Circuit breaker settings for the classifier.
const (
	// BreakerMaxFailures is the number of consecutive classifier failures that open the circuit.
	BreakerMaxFailures = 3

	// BreakerOpenTimeout is how long the circuit stays open before a trial request.
	BreakerOpenTimeout = 60 * time.Second
)

// Retry configuration for AI calls.
const (
	// MaxRetryAttempts is the maximum number of attempts for a transient AI failure.
	MaxRetryAttempts = 2

	// InitialBackoff is the delay before the first retry.
	InitialBackoff = 500 * time.Millisecond

	// BackoffMultiplier scales the delay between successive retries.
	BackoffMultiplier = 2
)

// Ollama settings.
const (
	// DefaultOllamaURL is where a local Ollama server listens.
	DefaultOllamaURL = "http://localhost:11434"

	// OllamaGeneratePath is the one-shot completion endpoint.
	OllamaGeneratePath = "/api/generate"

	// MaxOllamaResponseBytes caps how much of a response body is read.
	MaxOllamaResponseBytes = 4 << 20
)
