package config

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/mrz1836/gitsmart/internal/constants"
	"github.com/mrz1836/gitsmart/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateCommitConfig(&cfg.Commit); err != nil {
		return err
	}

	if err := validateGitConfig(&cfg.Git); err != nil {
		return err
	}

	return validateAIConfig(&cfg.AI)
}

// validateCommitConfig checks message format and grouping settings.
func validateCommitConfig(cfg *CommitConfig) error {
	switch cfg.Style {
	case "conventional", "simple":
	default:
		return errors.Wrapf(errors.ErrConfigInvalidCommit,
			"commit.style must be conventional or simple, got %q", cfg.Style)
	}

	if cfg.SubjectMaxLength < constants.MinSubjectMaxLength {
		return errors.Wrapf(errors.ErrConfigInvalidCommit,
			"commit.subject_max_length must be at least %d, got %d",
			constants.MinSubjectMaxLength, cfg.SubjectMaxLength)
	}

	if cfg.BodyLineWidth < constants.MinBodyLineWidth {
		return errors.Wrapf(errors.ErrConfigInvalidCommit,
			"commit.body_line_width must be at least %d, got %d",
			constants.MinBodyLineWidth, cfg.BodyLineWidth)
	}

	if cfg.SubjectPolicy != PolicyTruncate && cfg.SubjectPolicy != PolicyReject {
		return errors.Wrapf(errors.ErrConfigInvalidCommit,
			"commit.subject_policy must be truncate or reject, got %q", cfg.SubjectPolicy)
	}

	if cfg.BodyPolicy != PolicyWrap && cfg.BodyPolicy != PolicyReject {
		return errors.Wrapf(errors.ErrConfigInvalidCommit,
			"commit.body_policy must be wrap or reject, got %q", cfg.BodyPolicy)
	}

	if cfg.DegeneracyThreshold < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidCommit,
			"commit.degeneracy_threshold must be positive, got %d", cfg.DegeneracyThreshold)
	}

	if cfg.DraftConcurrency < 1 || cfg.DraftConcurrency > constants.MaxDraftConcurrency {
		return errors.Wrapf(errors.ErrConfigInvalidCommit,
			"commit.draft_concurrency must be between 1 and %d, got %d",
			constants.MaxDraftConcurrency, cfg.DraftConcurrency)
	}

	return nil
}

// validateGitConfig checks Git-specific configuration values.
func validateGitConfig(cfg *GitConfig) error {
	if cfg.MainBranch == "" {
		return errors.Wrap(errors.ErrConfigInvalidGit,
			"git.main_branch must not be empty")
	}

	if cfg.RemoteName == "" {
		return errors.Wrap(errors.ErrConfigInvalidGit,
			"git.remote_name must not be empty")
	}

	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidGit,
			"git.timeout must be positive, got %s", cfg.Timeout)
	}

	return nil
}

// validateAIConfig checks classifier settings.
func validateAIConfig(cfg *AIConfig) error {
	if !knownAgent(cfg.Agent) {
		return errors.Wrapf(errors.ErrConfigInvalidAI,
			"ai.agent must be one of %s, got %q", strings.Join(agentNames, ", "), cfg.Agent)
	}

	usesOllama := cfg.Agent == "ollama"
	for _, fb := range cfg.Fallback {
		if fb == "none" || !knownAgent(fb) {
			return errors.Wrapf(errors.ErrConfigInvalidAI,
				"ai.fallback entries must be AI agents, got %q", fb)
		}
		usesOllama = usesOllama || fb == "ollama"
	}

	if usesOllama {
		u, err := url.Parse(cfg.OllamaURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.Wrapf(errors.ErrConfigInvalidAI,
				"ai.ollama_url must be an http(s) URL, got %q", cfg.OllamaURL)
		}
	}

	maxTimeout := 10 * time.Minute
	if cfg.ClassifierTimeout <= 0 || cfg.ClassifierTimeout > maxTimeout {
		return errors.Wrapf(errors.ErrConfigInvalidAI,
			"ai.classifier_timeout must be between 0 and %s, got %s", maxTimeout, cfg.ClassifierTimeout)
	}

	return nil
}

// agentNames mirrors the agents the ai package can build. Config does not
// import domain.
//
//nolint:gochecknoglobals // Constant-like lookup table
var agentNames = []string{"claude", "gemini", "codex", "ollama", "none"}

func knownAgent(name string) bool {
	return slices.Contains(agentNames, name)
}
