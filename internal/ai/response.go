package ai

import (
	"encoding/json"
	"fmt"

	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

// ClaudeResponse represents the JSON response from Claude Code CLI
// when invoked with --output-format json.
type ClaudeResponse struct {
	Type      string  `json:"type"`
	Subtype   string  `json:"subtype"`
	IsError   bool    `json:"is_error"`
	Result    string  `json:"result"`
	SessionID string  `json:"session_id"`
	Duration  int     `json:"duration_ms"`
	TotalCost float64 `json:"total_cost_usd"`
}

// parseClaudeResponse parses the JSON output from Claude Code CLI.
func parseClaudeResponse(data []byte) (*ClaudeResponse, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %w", gserrors.ErrClaudeInvocation, gserrors.ErrAIEmptyResponse)
	}

	var resp ClaudeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse json response (%d bytes): %w",
			gserrors.ErrClaudeInvocation, len(data), err)
	}

	return &resp, nil
}

// toAIResult converts a ClaudeResponse to a domain.AIResult.
func (r *ClaudeResponse) toAIResult(stderr string) *domain.AIResult {
	result := &domain.AIResult{
		Success:      !r.IsError,
		Output:       r.Result,
		SessionID:    r.SessionID,
		DurationMs:   r.Duration,
		TotalCostUSD: r.TotalCost,
	}

	if r.IsError {
		result.Error = r.Result
		if stderr != "" {
			result.Error = stderr
		}
	}

	return result
}
