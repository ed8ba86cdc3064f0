package ai

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/gitsmart/internal/config"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

func TestNew(t *testing.T) {
	for _, agent := range []string{"claude", "gemini", "codex", "ollama", ""} {
		t.Run("agent "+agent+" is wrapped in a breaker", func(t *testing.T) {
			r, err := New(&config.AIConfig{Agent: agent}, zerolog.Nop())
			require.NoError(t, err)
			require.IsType(t, &BreakerRunner{}, r)
		})
	}

	t.Run("breaker wraps the matching runner", func(t *testing.T) {
		r, err := New(&config.AIConfig{Agent: "ollama", OllamaURL: "http://gpu-box:11434/"}, zerolog.Nop())
		require.NoError(t, err)
		b := r.(*BreakerRunner)
		assert.Equal(t, "ollama", b.name)
		ollama, ok := b.next.(*OllamaRunner)
		require.True(t, ok)
		assert.Equal(t, "http://gpu-box:11434", ollama.baseURL)
	})

	t.Run("none disables the runner", func(t *testing.T) {
		r, err := New(&config.AIConfig{Agent: "none", Fallback: []string{"gemini"}}, zerolog.Nop())
		require.NoError(t, err)
		assert.Nil(t, r)
	})

	t.Run("fallback agents form a chain", func(t *testing.T) {
		r, err := New(&config.AIConfig{Agent: "gemini", Fallback: []string{"codex", "gemini", "ollama"}}, zerolog.Nop())
		require.NoError(t, err)
		chain, ok := r.(*FallbackRunner)
		require.True(t, ok)
		assert.Equal(t, []domain.Agent{domain.AgentGemini, domain.AgentCodex, domain.AgentOllama}, chain.Agents())
		assert.Empty(t, chain.entries[0].Model)
		assert.Equal(t, "mini", chain.entries[1].Model)
		assert.Equal(t, "llama3.2", chain.entries[2].Model)
	})

	t.Run("fallback equal to the agent is dropped", func(t *testing.T) {
		r, err := New(&config.AIConfig{Agent: "claude", Fallback: []string{"claude"}}, zerolog.Nop())
		require.NoError(t, err)
		assert.IsType(t, &BreakerRunner{}, r)
	})

	t.Run("unknown agent", func(t *testing.T) {
		_, err := New(&config.AIConfig{Agent: "gpt"}, zerolog.Nop())
		require.ErrorIs(t, err, gserrors.ErrAgentNotFound)
	})

	t.Run("unknown or none fallback", func(t *testing.T) {
		_, err := New(&config.AIConfig{Agent: "claude", Fallback: []string{"gpt"}}, zerolog.Nop())
		require.ErrorIs(t, err, gserrors.ErrAgentNotFound)

		_, err = New(&config.AIConfig{Agent: "claude", Fallback: []string{"none"}}, zerolog.Nop())
		require.ErrorIs(t, err, gserrors.ErrAgentNotFound)
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := New(nil, zerolog.Nop())
		require.ErrorIs(t, err, gserrors.ErrConfigNil)
	})
}
