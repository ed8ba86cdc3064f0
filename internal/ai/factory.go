package ai

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mrz1836/gitsmart/internal/config"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

// New builds the runner selected by cfg.Agent, guarded by a circuit breaker.
// Agents listed in cfg.Fallback are chained after it, each with its own
// breaker and default model. It returns a nil Runner when the agent is
// "none"; callers then use their deterministic fallbacks only.
func New(cfg *config.AIConfig, logger zerolog.Logger) (Runner, error) {
	if cfg == nil {
		return nil, gserrors.ErrConfigNil
	}

	agent := domain.Agent(cfg.Agent)
	if agent == "" {
		agent = domain.AgentClaude
	}
	if agent == domain.AgentNone {
		return nil, nil //nolint:nilnil // nil runner disables AI
	}

	primary, err := newAgentRunner(agent, cfg, logger)
	if err != nil {
		return nil, err
	}

	entries := []FallbackEntry{{Agent: agent, Runner: primary}}
	seen := map[domain.Agent]bool{agent: true}
	for _, name := range cfg.Fallback {
		fb := domain.Agent(name)
		if seen[fb] {
			continue
		}
		seen[fb] = true
		r, err := newAgentRunner(fb, cfg, logger)
		if err != nil {
			return nil, err
		}
		entries = append(entries, FallbackEntry{Agent: fb, Runner: r, Model: fb.DefaultModel()})
	}
	if len(entries) == 1 {
		return primary, nil
	}
	return NewFallbackRunner(entries, WithFallbackLogger(logger)), nil
}

func newAgentRunner(agent domain.Agent, cfg *config.AIConfig, logger zerolog.Logger) (Runner, error) {
	agentLogger := logger.With().Str("agent", agent.String()).Logger()

	var r Runner
	switch agent {
	case domain.AgentClaude:
		r = NewClaudeCodeRunner(cfg, nil, WithClaudeLogger(agentLogger))
	case domain.AgentGemini:
		r = NewGeminiRunner(cfg, nil, WithGeminiLogger(agentLogger))
	case domain.AgentCodex:
		r = NewCodexRunner(cfg, nil, WithCodexLogger(agentLogger))
	case domain.AgentOllama:
		r = NewOllamaRunner(cfg, nil, WithOllamaLogger(agentLogger))
	case domain.AgentNone:
		return nil, fmt.Errorf("%w: none cannot be chained", gserrors.ErrAgentNotFound)
	default:
		return nil, fmt.Errorf("%w: %s", gserrors.ErrAgentNotFound, agent)
	}
	return NewBreakerRunner(r, WithBreakerName(agent.String()), WithBreakerLogger(agentLogger)), nil
}
