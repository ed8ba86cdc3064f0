// Package domain provides shared domain types for gitsmart: the changes read
// from a working tree, the commit units built from them, and commit messages.
package domain

import "time"

// AIRequest contains the parameters for a single classifier or message
// generation call.
//
// Example JSON representation:
//
//	{
//	    "agent": "claude",
//	    "prompt": "Group the following changed files...",
//	    "model": "sonnet",
//	    "timeout": 30000000000,
//	    "working_dir": "/path/to/repo"
//	}
type AIRequest struct {
	// Agent specifies which AI CLI to use.
	// If empty, defaults to "claude".
	Agent Agent `json:"agent,omitempty"`

	// Prompt is the instruction sent to the model.
	Prompt string `json:"prompt"`

	// SystemPrompt is appended to the agent's default system prompt.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Model specifies which AI model to use.
	Model string `json:"model"`

	// Timeout is the maximum duration for the call.
	Timeout time.Duration `json:"timeout"`

	// WorkingDir is the directory the agent runs in.
	WorkingDir string `json:"working_dir"`
}

// AIResult captures the outcome of an AI call.
type AIResult struct {
	// Success indicates whether the AI completed without errors.
	Success bool `json:"success"`

	// Output contains the model's answer.
	Output string `json:"output"`

	// SessionID identifies the AI session for debugging.
	SessionID string `json:"session_id"`

	// DurationMs is how long the call took in milliseconds.
	DurationMs int `json:"duration_ms"`

	// TotalCostUSD is the estimated cost of the call.
	TotalCostUSD float64 `json:"total_cost_usd"`

	// Error contains the error message if Success is false.
	Error string `json:"error,omitempty"`
}
