package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgent_String(t *testing.T) {
	assert.Equal(t, "claude", AgentClaude.String())
	assert.Equal(t, "none", AgentNone.String())

	var a Agent
	assert.Empty(t, a.String())
}

func TestAgent_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		agent Agent
		want  bool
	}{
		{"claude is valid", AgentClaude, true},
		{"none is valid", AgentNone, true},
		{"gemini is valid", AgentGemini, true},
		{"codex is valid", AgentCodex, true},
		{"ollama is valid", AgentOllama, true},
		{"empty is invalid", Agent(""), false},
		{"unknown is invalid", Agent("gpt"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.agent.IsValid())
		})
	}
}

func TestAgent_DefaultModel(t *testing.T) {
	assert.Equal(t, "haiku", AgentClaude.DefaultModel())
	assert.Empty(t, AgentNone.DefaultModel())
	assert.Contains(t, AgentClaude.ModelAliases(), AgentClaude.DefaultModel())
	assert.Nil(t, AgentNone.ModelAliases())

	for _, a := range []Agent{AgentGemini, AgentCodex} {
		assert.Contains(t, a.ModelAliases(), a.DefaultModel(), a.String())
	}
	assert.NotEmpty(t, AgentOllama.DefaultModel())
	assert.Nil(t, AgentOllama.ModelAliases())
}

func TestAgent_ResolveModelAlias(t *testing.T) {
	tests := []struct {
		agent Agent
		in    string
		want  string
	}{
		{AgentGemini, "flash", "gemini-2.5-flash"},
		{AgentGemini, "pro", "gemini-2.5-pro"},
		{AgentCodex, "mini", "gpt-5-codex-mini"},
		{AgentCodex, "codex", "gpt-5-codex"},
		{AgentClaude, "haiku", "haiku"},
		{AgentOllama, "qwen2.5-coder:7b", "qwen2.5-coder:7b"},
		{AgentGemini, "gemini-exp-1206", "gemini-exp-1206"},
	}
	for _, tt := range tests {
		t.Run(tt.agent.String()+"/"+tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.agent.ResolveModelAlias(tt.in))
		})
	}
}
