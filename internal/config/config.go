// Package config provides configuration management for gitsmart with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (GITSMART_* prefix)
//  3. Project config (<repo>/.gitsmart.yaml)
//  4. Global config (~/.gitsmart/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
// A loaded Config is resolved once per run and then passed by value; nothing
// mutates it afterwards.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Subject and body policies applied by the validation chain.
const (
	// PolicyTruncate shortens an over-long header at a word boundary.
	PolicyTruncate = "truncate"

	// PolicyWrap re-wraps over-long body lines.
	PolicyWrap = "wrap"

	// PolicyReject rejects the draft instead of rewriting it.
	PolicyReject = "reject"
)

// Config is the root configuration structure for gitsmart.
type Config struct {
	// Commit contains message format and grouping settings.
	Commit CommitConfig `yaml:"commit" mapstructure:"commit"`

	// Git contains repository and remote settings.
	Git GitConfig `yaml:"git" mapstructure:"git"`

	// AI contains classifier settings.
	AI AIConfig `yaml:"ai" mapstructure:"ai"`

	// Log contains log file settings.
	Log LogConfig `yaml:"log" mapstructure:"log"`
}

// CommitConfig controls message format, grouping and drafting.
type CommitConfig struct {
	// Style is "conventional" or "simple".
	// Default: "conventional"
	Style string `yaml:"style" mapstructure:"style"`

	// SubjectMaxLength is the maximum header length.
	// Default: 72
	SubjectMaxLength int `yaml:"subject_max_length" mapstructure:"subject_max_length"`

	// BodyLineWidth is the column at which body lines wrap.
	// Default: 72
	BodyLineWidth int `yaml:"body_line_width" mapstructure:"body_line_width"`

	// SubjectPolicy is "truncate" or "reject" for over-long headers.
	// Default: "truncate"
	SubjectPolicy string `yaml:"subject_policy" mapstructure:"subject_policy"`

	// BodyPolicy is "wrap" or "reject" for over-long body lines.
	// Default: "wrap"
	BodyPolicy string `yaml:"body_policy" mapstructure:"body_policy"`

	// DegeneracyThreshold is the group size T: a classifier answer with a
	// single group larger than T, for more than T changes, is discarded.
	// Default: 3
	DegeneracyThreshold int `yaml:"degeneracy_threshold" mapstructure:"degeneracy_threshold"`

	// DraftConcurrency bounds how many messages are drafted in parallel.
	// Default: 4
	DraftConcurrency int `yaml:"draft_concurrency" mapstructure:"draft_concurrency"`

	// NoVerify skips pre-commit and commit-msg hooks.
	// Default: false
	NoVerify bool `yaml:"no_verify" mapstructure:"no_verify"`
}

// GitConfig contains repository and remote settings.
type GitConfig struct {
	// MainBranch is the branch merged into by --merge.
	// Default: "main"
	MainBranch string `yaml:"main_branch" mapstructure:"main_branch"`

	// RemoteName is the remote pushed to.
	// Default: "origin"
	RemoteName string `yaml:"remote_name" mapstructure:"remote_name"`

	// AutoPush pushes the branch after all commits succeed.
	// Default: true
	AutoPush bool `yaml:"auto_push" mapstructure:"auto_push"`

	// AutoMerge merges the branch into MainBranch after commits (and push) succeed.
	// Default: false
	AutoMerge bool `yaml:"auto_merge" mapstructure:"auto_merge"`

	// RollbackOnFailure undoes executed commands in reverse order when a
	// command fails. When false, applied commits are kept and reported.
	// Default: false
	RollbackOnFailure bool `yaml:"rollback_on_failure" mapstructure:"rollback_on_failure"`

	// Timeout bounds a single git command.
	// Default: 2m
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// AIConfig contains classifier settings.
type AIConfig struct {
	// Agent is "claude", "gemini", "codex", "ollama" or "none". With "none"
	// only the deterministic fallbacks are used.
	// Default: "claude"
	Agent string `yaml:"agent" mapstructure:"agent"`

	// Model is the model alias or full name passed to the agent. Empty
	// selects the agent's default (haiku for claude, flash for gemini).
	Model string `yaml:"model" mapstructure:"model"`

	// Fallback lists agents tried in order when Agent fails. Each uses its
	// own default model.
	Fallback []string `yaml:"fallback" mapstructure:"fallback"`

	// OllamaURL is the base URL of the Ollama server.
	// Default: "http://localhost:11434"
	OllamaURL string `yaml:"ollama_url" mapstructure:"ollama_url"`

	// ClassifierTimeout bounds each classification or drafting call.
	// Default: 30s
	ClassifierTimeout time.Duration `yaml:"classifier_timeout" mapstructure:"classifier_timeout"`
}

// LogConfig contains log file settings.
type LogConfig struct {
	// File is an explicit log file path. Events are appended to it.
	File string `yaml:"file" mapstructure:"file"`

	// Always writes a timestamped log file per run into Dir.
	// Default: false
	Always bool `yaml:"always" mapstructure:"always"`

	// Dir is where per-run log files go. Empty means ~/.gitsmart/logs.
	Dir string `yaml:"dir" mapstructure:"dir"`
}
