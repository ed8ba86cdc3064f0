package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/mrz1836/gitsmart/internal/constants"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

// BreakerRunner guards a Runner with a circuit breaker. After
// MaxFailures consecutive failures the circuit opens and calls fail fast
// with ErrClassifierUnavailable until OpenTimeout elapses.
type BreakerRunner struct {
	next    Runner
	name    string
	cb      *gobreaker.CircuitBreaker
	logger  zerolog.Logger
	maxFail uint32
	timeout time.Duration
}

// BreakerOption configures a BreakerRunner.
type BreakerOption func(*BreakerRunner)

// WithBreakerLogger sets the logger for state transitions.
func WithBreakerLogger(logger zerolog.Logger) BreakerOption {
	return func(b *BreakerRunner) {
		b.logger = logger
	}
}

// WithBreakerName names the breaker in state change logs.
func WithBreakerName(name string) BreakerOption {
	return func(b *BreakerRunner) {
		b.name = name
	}
}

// WithBreakerThreshold overrides the consecutive failure count and the open
// duration.
func WithBreakerThreshold(maxFailures uint32, openTimeout time.Duration) BreakerOption {
	return func(b *BreakerRunner) {
		b.maxFail = maxFailures
		b.timeout = openTimeout
	}
}

// NewBreakerRunner wraps next with a circuit breaker.
func NewBreakerRunner(next Runner, opts ...BreakerOption) *BreakerRunner {
	b := &BreakerRunner{
		next:    next,
		name:    "ai",
		logger:  zerolog.Nop(),
		maxFail: constants.BreakerMaxFailures,
		timeout: constants.BreakerOpenTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}

	maxFail := b.maxFail
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        b.name,
		MaxRequests: 1,
		Timeout:     b.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFail
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about the model's health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("AI circuit breaker changed state")
		},
	})
	return b
}

// Run forwards the request unless the circuit is open.
func (b *BreakerRunner) Run(ctx context.Context, req *domain.AIRequest) (*domain.AIResult, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Run(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", gserrors.ErrClassifierUnavailable, err)
		}
		return nil, err
	}

	result, ok := out.(*domain.AIResult)
	if !ok || result == nil {
		return nil, fmt.Errorf("%s: %w", b.name, gserrors.ErrAIEmptyResponse)
	}
	return result, nil
}

// State returns the current breaker state name.
func (b *BreakerRunner) State() string {
	return b.cb.State().String()
}

// Compile-time check that BreakerRunner implements Runner.
var _ Runner = (*BreakerRunner)(nil)
