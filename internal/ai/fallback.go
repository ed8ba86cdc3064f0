package ai

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/mrz1836/gitsmart/internal/ctxutil"
	"github.com/mrz1836/gitsmart/internal/domain"
)

// FallbackEntry is one agent in a FallbackRunner chain.
type FallbackEntry struct {
	Agent  domain.Agent
	Runner Runner

	// Model replaces the request model when this entry is not the first.
	// Empty keeps the request model.
	Model string
}

// FallbackRunner tries agents in order until one answers. Cancellation of
// the caller's context stops the chain.
type FallbackRunner struct {
	entries []FallbackEntry
	logger  zerolog.Logger
}

// FallbackOption configures a FallbackRunner.
type FallbackOption func(*FallbackRunner)

// WithFallbackLogger sets the logger for agent switches.
func WithFallbackLogger(logger zerolog.Logger) FallbackOption {
	return func(f *FallbackRunner) {
		f.logger = logger
	}
}

// NewFallbackRunner creates a FallbackRunner over entries.
func NewFallbackRunner(entries []FallbackEntry, opts ...FallbackOption) *FallbackRunner {
	f := &FallbackRunner{entries: entries, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Agents returns the chain order.
func (f *FallbackRunner) Agents() []domain.Agent {
	out := make([]domain.Agent, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.Agent
	}
	return out
}

// Run sends req to each agent in turn. When every agent fails the errors
// are returned together.
func (f *FallbackRunner) Run(ctx context.Context, req *domain.AIRequest) (*domain.AIResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	var result *multierror.Error
	for i, e := range f.entries {
		attempt := *req
		attempt.Agent = e.Agent
		if i > 0 && e.Model != "" {
			attempt.Model = e.Model
		}

		out, err := e.Runner.Run(ctx, &attempt)
		if err == nil {
			if i > 0 {
				f.logger.Info().Str("agent", e.Agent.String()).Msg("fallback agent answered")
			}
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		result = multierror.Append(result, fmt.Errorf("%s: %w", e.Agent, err))
		if i < len(f.entries)-1 {
			f.logger.Warn().
				Err(err).
				Str("agent", e.Agent.String()).
				Str("next", f.entries[i+1].Agent.String()).
				Msg("agent failed, trying next")
		}
	}
	return nil, result.ErrorOrNil()
}

// Compile-time check that FallbackRunner implements Runner.
var _ Runner = (*FallbackRunner)(nil)
