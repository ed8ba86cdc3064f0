package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/gitsmart/internal/config"
	"github.com/mrz1836/gitsmart/internal/constants"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

// HTTPClient abstracts HTTP calls for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// OllamaRunner implements Runner against the generate endpoint of an
// Ollama server. Requests are sent with streaming disabled.
type OllamaRunner struct {
	base    BaseRunner
	client  HTTPClient
	baseURL string
	logger  zerolog.Logger
}

// OllamaRunnerOption is a functional option for configuring OllamaRunner.
type OllamaRunnerOption func(*OllamaRunner)

// WithOllamaLogger sets the logger for the OllamaRunner.
func WithOllamaLogger(logger zerolog.Logger) OllamaRunnerOption {
	return func(r *OllamaRunner) {
		r.logger = logger
	}
}

// NewOllamaRunner creates a new OllamaRunner for cfg.OllamaURL.
// If client is nil, http.DefaultClient is used; the request context bounds
// each call.
func NewOllamaRunner(cfg *config.AIConfig, client HTTPClient, opts ...OllamaRunnerOption) *OllamaRunner {
	if client == nil {
		client = http.DefaultClient
	}
	baseURL := constants.DefaultOllamaURL
	if cfg != nil && cfg.OllamaURL != "" {
		baseURL = cfg.OllamaURL
	}
	r := &OllamaRunner{
		base: BaseRunner{
			Config:  cfg,
			ErrType: gserrors.ErrOllamaRequest,
		},
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.base.Logger = r.logger
	return r
}

// ollamaRequest is the body of POST /api/generate.
type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

// ollamaResponse is a non-streamed generate answer.
type ollamaResponse struct {
	Model         string `json:"model"`
	Response      string `json:"response"`
	Done          bool   `json:"done"`
	TotalDuration int64  `json:"total_duration"`
	Error         string `json:"error"`
}

// Run executes an AI request against the Ollama server.
func (r *OllamaRunner) Run(ctx context.Context, req *domain.AIRequest) (*domain.AIResult, error) {
	return r.base.RunWithTimeout(ctx, req, r.execute)
}

func (r *OllamaRunner) execute(ctx context.Context, req *domain.AIRequest) (*domain.AIResult, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:  r.base.ResolveModel(req, domain.AgentOllama),
		Prompt: req.Prompt,
		System: req.SystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %w", gserrors.ErrOllamaRequest, err)
	}

	url := r.baseURL + constants.OllamaGeneratePath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", gserrors.ErrOllamaRequest, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", gserrors.ErrOllamaRequest, err)
	}
	defer resp.Body.Close() //nolint:errcheck // HTTP response body close

	data, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxOllamaResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", gserrors.ErrOllamaRequest, err)
	}

	var out ollamaResponse
	parseErr := json.Unmarshal(data, &out)

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(data))
		if parseErr == nil && out.Error != "" {
			msg = out.Error
		}
		return nil, fmt.Errorf("%w: status %d: %s", gserrors.ErrOllamaRequest, resp.StatusCode, msg)
	}
	if parseErr != nil {
		return nil, fmt.Errorf("%w: failed to parse json response (%d bytes): %w",
			gserrors.ErrOllamaRequest, len(data), parseErr)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: %s", gserrors.ErrOllamaRequest, out.Error)
	}
	if strings.TrimSpace(out.Response) == "" {
		return nil, fmt.Errorf("%w: %w", gserrors.ErrOllamaRequest, gserrors.ErrAIEmptyResponse)
	}

	durationMs := int(out.TotalDuration / int64(time.Millisecond))
	if durationMs == 0 {
		durationMs = int(time.Since(start).Milliseconds())
	}
	r.logger.Debug().
		Str("model", out.Model).
		Int("duration_ms", durationMs).
		Msg("ollama request completed")

	return &domain.AIResult{
		Success:    true,
		Output:     out.Response,
		DurationMs: durationMs,
	}, nil
}

// Compile-time check that OllamaRunner implements Runner.
var _ Runner = (*OllamaRunner)(nil)
