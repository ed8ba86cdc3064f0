package ai

import (
	"time"

	"github.com/mrz1836/gitsmart/internal/constants"
	"github.com/mrz1836/gitsmart/internal/domain"
)

// RequestOption is a functional option for configuring an AIRequest.
type RequestOption func(*domain.AIRequest)

// NewAIRequest creates a new AIRequest with the given prompt.
//
// Example:
//
//	req := NewAIRequest(prompt,
//	    WithModel("haiku"),
//	    WithTimeout(20*time.Second),
//	)
func NewAIRequest(prompt string, opts ...RequestOption) *domain.AIRequest {
	req := &domain.AIRequest{
		Agent:   domain.AgentClaude,
		Prompt:  prompt,
		Timeout: constants.DefaultClassifierTimeout,
	}

	for _, opt := range opts {
		opt(req)
	}

	return req
}

// WithModel sets the AI model to use.
func WithModel(model string) RequestOption {
	return func(req *domain.AIRequest) {
		req.Model = model
	}
}

// WithTimeout sets the maximum duration for the call.
// Non-positive values keep the default.
func WithTimeout(timeout time.Duration) RequestOption {
	return func(req *domain.AIRequest) {
		if timeout > 0 {
			req.Timeout = timeout
		}
	}
}

// WithSystemPrompt sets an additional system prompt to append to the default.
func WithSystemPrompt(prompt string) RequestOption {
	return func(req *domain.AIRequest) {
		req.SystemPrompt = prompt
	}
}

// WithWorkingDir sets the working directory for the call.
func WithWorkingDir(dir string) RequestOption {
	return func(req *domain.AIRequest) {
		req.WorkingDir = dir
	}
}
