package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/gitsmart/internal/config"
	"github.com/mrz1836/gitsmart/internal/constants"
	"github.com/mrz1836/gitsmart/internal/ctxutil"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

// ExecuteFunc is the function signature for provider-specific command execution.
type ExecuteFunc func(ctx context.Context, req *domain.AIRequest) (*domain.AIResult, error)

// BaseRunner provides timeout, retry, and context handling shared by
// provider-specific runners.
type BaseRunner struct {
	Config   *config.AIConfig
	Executor CommandExecutor
	ErrType  error          // Provider-specific error type for wrapping
	Logger   zerolog.Logger // Logger for retry diagnostics
}

// ValidateWorkingDir checks that the working directory exists.
// An empty directory means the current directory.
func (b *BaseRunner) ValidateWorkingDir(workingDir string) error {
	if workingDir == "" {
		return nil
	}
	if _, err := os.Stat(workingDir); os.IsNotExist(err) {
		return fmt.Errorf("working directory missing: %s: %w", workingDir, gserrors.ErrNotGitRepo)
	}
	return nil
}

// ResolveModel picks the model for a request: the request's model, then the
// configured model, then the agent default. Aliases are expanded.
func (b *BaseRunner) ResolveModel(req *domain.AIRequest, agent domain.Agent) string {
	model := req.Model
	if model == "" && b.Config != nil {
		model = b.Config.Model
	}
	if model == "" {
		model = agent.DefaultModel()
	}
	return agent.ResolveModelAlias(model)
}

// ResolveTimeout determines the timeout to use for a request.
// Priority: request timeout > config timeout > default timeout.
func (b *BaseRunner) ResolveTimeout(req *domain.AIRequest) time.Duration {
	if req.Timeout > 0 {
		return req.Timeout
	}
	if b.Config != nil && b.Config.ClassifierTimeout > 0 {
		return b.Config.ClassifierTimeout
	}
	return constants.DefaultClassifierTimeout
}

// RunWithTimeout executes an AI request bounded by the resolved timeout,
// retrying transient failures. Expiry of the timeout is reported as
// ErrClassifierTimeout; cancellation of ctx is returned unchanged.
func (b *BaseRunner) RunWithTimeout(ctx context.Context, req *domain.AIRequest, execute ExecuteFunc) (*domain.AIResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	timeout := b.ResolveTimeout(req)
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := b.runWithRetry(runCtx, req, execute)
	if err != nil {
		if ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: no answer within %s", gserrors.ErrClassifierTimeout, timeout)
		}
		return nil, err
	}
	return result, nil
}

// HandleExecutionError processes errors from command execution.
// It checks for context cancellation and attempts to parse error responses.
func (b *BaseRunner) HandleExecutionError(ctx context.Context, err error, tryParse func() (*domain.AIResult, bool), wrapErr func(error) error) (*domain.AIResult, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if tryParse != nil {
		if result, handled := tryParse(); handled {
			return result, nil
		}
	}

	return nil, wrapErr(err)
}

// runWithRetry executes the AI request with exponential backoff retry logic.
// Only transient errors are retried.
func (b *BaseRunner) runWithRetry(ctx context.Context, req *domain.AIRequest, execute ExecuteFunc) (*domain.AIResult, error) {
	var lastErr error
	backoff := constants.InitialBackoff

	for attempt := 1; attempt <= constants.MaxRetryAttempts; attempt++ {
		result, err := execute(ctx, req)
		if err == nil {
			if attempt > 1 {
				b.Logger.Info().Int("attempt", attempt).Msg("AI request succeeded after retry")
			}
			return result, nil
		}

		if !isRetryable(err) {
			b.Logger.Debug().Err(err).Int("attempt", attempt).
				Msg("AI request failed with non-retryable error")
			return nil, err
		}

		lastErr = err
		if attempt < constants.MaxRetryAttempts {
			b.Logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_attempts", constants.MaxRetryAttempts).
				Dur("backoff", backoff).
				Msg("AI request failed, will retry after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-timeSleep(backoff):
				backoff *= constants.BackoffMultiplier
			}
		}
	}

	b.Logger.Error().
		Err(lastErr).
		Int("max_attempts", constants.MaxRetryAttempts).
		Msg("AI request failed after max retries")

	return nil, fmt.Errorf("%w: max retries exceeded: %w", b.ErrType, lastErr)
}
