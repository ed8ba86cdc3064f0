package ai

import (
	"encoding/json"
	"fmt"

	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

// GeminiResponse is the JSON written by the Gemini CLI with
// --output-format json.
type GeminiResponse struct {
	Response  string       `json:"response"`
	SessionID string       `json:"session_id"`
	Error     *GeminiError `json:"error,omitempty"`
}

// GeminiError describes a failed Gemini request.
type GeminiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func parseGeminiResponse(data []byte) (*GeminiResponse, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %w", gserrors.ErrGeminiInvocation, gserrors.ErrAIEmptyResponse)
	}

	var resp GeminiResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse json response (%d bytes): %w",
			gserrors.ErrGeminiInvocation, len(data), err)
	}
	return &resp, nil
}

func (r *GeminiResponse) toAIResult(stderr string) *domain.AIResult {
	result := &domain.AIResult{
		Success:   r.Error == nil,
		Output:    r.Response,
		SessionID: r.SessionID,
	}
	if r.Error != nil {
		result.Error = r.Error.Message
		if result.Error == "" {
			result.Error = stderr
		}
		if r.Error.Type != "" {
			result.Error = r.Error.Type + ": " + result.Error
		}
	}
	return result
}
