package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to user-facing text.
// Order matters: more specific sentinels come before the generic ones they wrap.
//
//nolint:gochecknoglobals // Pre-built mapping
var errorInfoEntries = []errorEntry{
	// Repository
	{
		err: ErrMergeConflict,
		info: ErrorInfo{
			Message: "The merge stopped on conflicts.",
			Action:  "Resolve the conflicts, then run 'git merge --continue' or 'git merge --abort'.",
		},
	},
	{
		err: ErrDetachedHead,
		info: ErrorInfo{
			Message: "HEAD is detached; commits would not belong to any branch.",
			Action:  "Check out a branch with 'git switch <branch>' and retry.",
		},
	},
	{
		err: ErrMissingRemote,
		info: ErrorInfo{
			Message: "The configured remote does not exist.",
			Action:  "Add it with 'git remote add <name> <url>' or set git.remote_name.",
		},
	},
	{
		err: ErrNonFastForward,
		info: ErrorInfo{
			Message: "The remote branch has commits you do not have locally.",
			Action:  "Pull or rebase onto the remote branch, then push again.",
		},
	},
	{
		err: ErrPushAuthFailed,
		info: ErrorInfo{
			Message: "Push was rejected due to authentication.",
			Action:  "Check your credentials or SSH key for the remote.",
		},
	},
	{
		err: ErrRepository,
		info: ErrorInfo{
			Message: "A git operation failed. Check your repository state.",
			Action:  "Run 'git status' to inspect the repository and retry.",
		},
	},
	{
		err: ErrNotGitRepo,
		info: ErrorInfo{
			Message: "The specified path is not a git repository.",
			Action:  "Pass --path pointing at a repository or run 'git init'.",
		},
	},
	{
		err: ErrNoChanges,
		info: ErrorInfo{
			Message: "There is nothing to commit.",
		},
	},

	// Messages
	{
		err: ErrValidation,
		info: ErrorInfo{
			Message: "A commit message could not be made valid.",
			Action:  "Review the rejected draft above or relax commit.subject_policy.",
		},
	},

	// Classifier
	{
		err: ErrClassifier,
		info: ErrorInfo{
			Message: "The change classifier was unavailable; deterministic grouping was used.",
		},
	},
	{
		err: ErrClaudeInvocation,
		info: ErrorInfo{
			Message: "Failed to run the claude CLI.",
			Action:  "Ensure the claude CLI is installed and authenticated, or set ai.agent to none.",
		},
	},
	{
		err: ErrGeminiInvocation,
		info: ErrorInfo{
			Message: "Failed to run the gemini CLI.",
			Action:  "Ensure the gemini CLI is installed and GEMINI_API_KEY is set, or choose another agent.",
		},
	},
	{
		err: ErrCodexInvocation,
		info: ErrorInfo{
			Message: "Failed to run the codex CLI.",
			Action:  "Ensure the codex CLI is installed and authenticated, or choose another agent.",
		},
	},
	{
		err: ErrOllamaRequest,
		info: ErrorInfo{
			Message: "The Ollama server did not answer.",
			Action:  "Start it with 'ollama serve', check ai.ollama_url, and pull the configured model.",
		},
	},
	{
		err: ErrAgentNotFound,
		info: ErrorInfo{
			Message: "The specified AI agent is not available.",
			Action:  "Use --agent claude, gemini, codex, ollama, or none.",
		},
	},

	// Configuration
	{
		err: ErrConfigExists,
		info: ErrorInfo{
			Message: "A configuration file already exists at this location.",
			Action:  "Edit the existing file or remove it before running 'gitsmart config init'.",
		},
	},
	{
		err: ErrConfigInvalidCommit,
		info: ErrorInfo{
			Message: "The commit configuration is invalid.",
			Action:  "Run 'gitsmart config show' to inspect the resolved values.",
		},
	},
	{
		err: ErrConfigInvalidGit,
		info: ErrorInfo{
			Message: "The git configuration is invalid.",
			Action:  "Run 'gitsmart config show' to inspect the resolved values.",
		},
	},
	{
		err: ErrConfigInvalidAI,
		info: ErrorInfo{
			Message: "The AI configuration is invalid.",
			Action:  "Run 'gitsmart config show' to inspect the resolved values.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Invalid output format.",
			Action:  "Use --output text, json, yaml, or markdown.",
		},
	},

	// Interaction
	{
		err: ErrOperationCanceled,
		info: ErrorInfo{
			Message: "Operation canceled.",
		},
	},
	{
		err: ErrNonInteractiveMode,
		info: ErrorInfo{
			Message: "Confirmation is required but no terminal is attached.",
			Action:  "Re-run with --yes to commit without confirmation.",
		},
	},
}

// getErrorInfo looks up the ErrorInfo for a given error.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
//
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
//
// For errors that have no clear action, the action string will be empty.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
