// Package ai provides the language-model collaborator used by gitsmart to
// classify changes and draft commit messages.
//
// This package defines the Runner interface and one implementation per
// agent: the Claude Code, Gemini and Codex CLIs run as subprocesses, and
// OllamaRunner calls a local Ollama server over HTTP. BreakerRunner wraps
// any Runner with a circuit breaker so a failing model is skipped for the
// rest of a run, and FallbackRunner chains agents in configured order.
//
// IMPORTANT: This package may import internal/constants, internal/errors,
// internal/config, and internal/domain. It MUST NOT import internal/analyze,
// internal/message, or internal/cli.
package ai

import (
	"context"

	"github.com/mrz1836/gitsmart/internal/domain"
)

// Runner executes a single AI request.
//
// Context should be used to control timeouts and cancellation.
// Implementations must return promptly once ctx is done.
type Runner interface {
	// Run executes an AI request and returns the result.
	Run(ctx context.Context, req *domain.AIRequest) (*domain.AIResult, error)
}
