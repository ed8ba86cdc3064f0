package config

import "github.com/mrz1836/gitsmart/internal/constants"

// DefaultConfig returns a new Config with default values.
// These defaults are the base layer that config files, environment
// variables, and CLI flags override.
func DefaultConfig() *Config {
	return &Config{
		Commit: CommitConfig{
			Style:               "conventional",
			SubjectMaxLength:    constants.DefaultSubjectMaxLength,
			BodyLineWidth:       constants.DefaultBodyLineWidth,
			SubjectPolicy:       PolicyTruncate,
			BodyPolicy:          PolicyWrap,
			DegeneracyThreshold: constants.DefaultDegeneracyThreshold,
			DraftConcurrency:    constants.DefaultDraftConcurrency,
		},
		Git: GitConfig{
			// MainBranch: "main" is the modern Git default.
			// Projects using "master" should override in their config.
			MainBranch: "main",
			RemoteName: "origin",
			AutoPush:   true,
			Timeout:    constants.DefaultGitTimeout,
		},
		AI: AIConfig{
			// Model stays empty so each agent uses its own fast default.
			Agent:             "claude",
			OllamaURL:         constants.DefaultOllamaURL,
			ClassifierTimeout: constants.DefaultClassifierTimeout,
		},
	}
}
