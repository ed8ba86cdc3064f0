// Package errors provides centralized error handling for gitsmart.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrClassifier indicates that the change classifier could not produce a grouping.
	// It is always recovered locally by falling back to deterministic grouping.
	ErrClassifier = errors.New("classifier failed")

	// ErrClassifierTimeout indicates that the classifier did not answer within
	// the configured classifier timeout.
	ErrClassifierTimeout = errors.New("classifier timed out")

	// ErrClassifierMalformed indicates that the classifier answered but the
	// grouping was unparsable or not an exact partition of the change set.
	ErrClassifierMalformed = errors.New("classifier returned malformed grouping")

	// ErrClassifierUnavailable indicates that the classifier circuit is open
	// after repeated failures.
	ErrClassifierUnavailable = errors.New("classifier unavailable")

	// ErrGenericMessage indicates that a drafted commit message was a generic
	// placeholder such as "update code".
	ErrGenericMessage = errors.New("generic commit message")

	// ErrValidation indicates that a commit message draft was rejected by the
	// validation chain.
	ErrValidation = errors.New("commit message validation failed")

	// ErrRepository indicates that a version-control operation failed.
	ErrRepository = errors.New("repository operation failed")

	// ErrMergeConflict indicates that a merge stopped on conflicts.
	ErrMergeConflict = errors.New("merge conflict")

	// ErrDetachedHead indicates that HEAD is not attached to a branch.
	ErrDetachedHead = errors.New("detached HEAD")

	// ErrMissingRemote indicates that the configured remote does not exist.
	ErrMissingRemote = errors.New("remote not found")

	// ErrNonFastForward indicates that a push was rejected because the remote
	// branch has diverged.
	ErrNonFastForward = errors.New("non-fast-forward push rejected")

	// ErrPushAuthFailed indicates that git push failed due to authentication.
	ErrPushAuthFailed = errors.New("push authentication failed")

	// ErrUndoUnsupported indicates that a command cannot be undone.
	// This is a capability limitation, not a failure.
	ErrUndoUnsupported = errors.New("undo not supported")

	// ErrNothingToUndo indicates that undo was requested for a command that
	// never executed successfully.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNoChanges indicates that the working tree has no changes to commit.
	ErrNoChanges = errors.New("no changes to commit")

	// ErrDuplicatePath indicates that a path appears more than once in a change set.
	ErrDuplicatePath = errors.New("duplicate path in change set")

	// ErrPartition indicates that commit units do not form an exact partition
	// of the change set.
	ErrPartition = errors.New("commit units do not partition change set")

	// ErrNotGitRepo indicates the path is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidCommit indicates an invalid commit configuration value.
	ErrConfigInvalidCommit = errors.New("invalid commit configuration")

	// ErrConfigInvalidGit indicates an invalid Git configuration value.
	ErrConfigInvalidGit = errors.New("invalid Git configuration")

	// ErrConfigInvalidAI indicates an invalid AI configuration value.
	ErrConfigInvalidAI = errors.New("invalid AI configuration")

	// ErrConfigExists indicates that config init would overwrite an existing file.
	ErrConfigExists = errors.New("config file already exists")

	// ErrValueOutOfRange indicates that a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrAgentNotFound indicates that the requested AI agent is not registered.
	ErrAgentNotFound = errors.New("AI agent not found")

	// ErrClaudeInvocation indicates that the Claude Code CLI failed to execute
	// or returned a non-zero exit code.
	ErrClaudeInvocation = errors.New("claude invocation failed")

	// ErrGeminiInvocation indicates that the Gemini CLI failed to execute.
	ErrGeminiInvocation = errors.New("gemini invocation failed")

	// ErrCodexInvocation indicates that the Codex CLI failed to execute.
	ErrCodexInvocation = errors.New("codex invocation failed")

	// ErrOllamaRequest indicates that the Ollama server could not answer.
	ErrOllamaRequest = errors.New("ollama request failed")

	// ErrAIEmptyResponse indicates that the AI returned an empty response.
	ErrAIEmptyResponse = errors.New("AI returned empty response")

	// ErrAIInvalidFormat indicates that the AI response was not in the expected format.
	ErrAIInvalidFormat = errors.New("AI response not in expected format")

	// ErrCommandFailed indicates that a command execution failed.
	ErrCommandFailed = errors.New("command failed")

	// ErrCommandNotConfigured indicates that a mock command was not configured in tests.
	ErrCommandNotConfigured = errors.New("command not configured")

	// ErrTemplateNotFound indicates the requested prompt template does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrOperationCanceled indicates the user canceled an operation.
	ErrOperationCanceled = errors.New("operation canceled by user")

	// ErrNonInteractiveMode indicates that an operation requiring confirmation
	// was attempted in non-interactive mode without the --yes flag.
	ErrNonInteractiveMode = errors.New("use --yes in non-interactive mode")

	// ErrRunFailed indicates that a commit run finished with at least one failed unit.
	ErrRunFailed = errors.New("commit run failed")

	// ErrRunInProgress indicates another gitsmart process holds the repository lock.
	ErrRunInProgress = errors.New("another gitsmart run is in progress")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
