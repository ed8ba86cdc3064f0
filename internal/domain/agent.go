package domain

// Agent represents an AI backend.
// This determines which tool classifies changes and drafts messages.
type Agent string

// Agent constants define the supported AI backends.
const (
	// AgentClaude uses the Claude Code CLI from Anthropic.
	AgentClaude Agent = "claude"

	// AgentGemini uses the Gemini CLI from Google.
	AgentGemini Agent = "gemini"

	// AgentCodex uses the Codex CLI from OpenAI.
	AgentCodex Agent = "codex"

	// AgentOllama calls a local Ollama server over HTTP.
	AgentOllama Agent = "ollama"

	// AgentNone disables the classifier. Grouping and messages come from the
	// deterministic fallbacks only.
	AgentNone Agent = "none"
)

// String returns the string representation of the Agent.
func (a Agent) String() string {
	return string(a)
}

// IsValid checks if the agent is a recognized type.
func (a Agent) IsValid() bool {
	switch a {
	case AgentClaude, AgentGemini, AgentCodex, AgentOllama, AgentNone:
		return true
	}
	return false
}

// DefaultModel returns the model used when none is configured.
func (a Agent) DefaultModel() string {
	switch a {
	case AgentClaude:
		return "haiku"
	case AgentGemini:
		return "flash"
	case AgentCodex:
		return "mini"
	case AgentOllama:
		return "llama3.2"
	case AgentNone:
	}
	return ""
}

// ModelAliases returns the valid short model aliases for this agent.
// Ollama models are named by the local server and have no aliases.
func (a Agent) ModelAliases() []string {
	switch a {
	case AgentClaude:
		return []string{"sonnet", "opus", "haiku"}
	case AgentGemini:
		return []string{"flash", "pro"}
	case AgentCodex:
		return []string{"codex", "mini"}
	case AgentOllama, AgentNone:
	}
	return nil
}

// ResolveModelAlias converts a short alias to the full model name the CLI
// expects. Unknown names are returned unchanged so full model names work.
// The claude CLI accepts its aliases directly.
func (a Agent) ResolveModelAlias(alias string) string {
	switch a {
	case AgentGemini:
		switch alias {
		case "flash":
			return "gemini-2.5-flash"
		case "pro":
			return "gemini-2.5-pro"
		}
	case AgentCodex:
		switch alias {
		case "codex":
			return "gpt-5-codex"
		case "mini":
			return "gpt-5-codex-mini"
		}
	case AgentClaude, AgentOllama, AgentNone:
	}
	return alias
}
