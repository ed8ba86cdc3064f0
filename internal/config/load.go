package config

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/gitsmart/internal/constants"
	"github.com/mrz1836/gitsmart/internal/errors"
)

// newViperInstance creates a new Viper instance with the GITSMART_ env prefix,
// key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration for the repository at repoDir from all available
// sources with proper precedence:
//  1. Environment variables (GITSMART_* prefix)
//  2. Project config (<repoDir>/.gitsmart.yaml)
//  3. Global config (~/.gitsmart/config.yaml)
//  4. Built-in defaults
//
// Missing config files are not an error.
func Load(ctx context.Context, repoDir string) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}

	if repoDir != "" {
		if err := mergeConfigFile(v, ProjectConfigPath(repoDir)); err != nil {
			return nil, errors.Wrap(err, "failed to read project config file")
		}
	}

	cfg, err := unmarshalAndValidate(v)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("commit.style", cfg.Commit.Style).
		Str("git.main_branch", cfg.Git.MainBranch).
		Str("git.remote_name", cfg.Git.RemoteName).
		Dur("ai.classifier_timeout", cfg.AI.ClassifierTimeout).
		Msg("configuration loaded")

	return cfg, nil
}

// loadGlobalConfig attempts to load the global config file (~/.gitsmart/config.yaml).
// Returns nil if the file doesn't exist or home directory cannot be determined.
func loadGlobalConfig(v *viper.Viper) error {
	globalConfigPath, err := GlobalConfigPath()
	if err != nil {
		return nil //nolint:nilerr // no home directory means no global config
	}
	if err := mergeConfigFile(v, globalConfigPath); err != nil {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// mergeConfigFile merges path into v when the file exists.
func mergeConfigFile(v *viper.Viper, path string) error {
	if !fileExists(path) {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return err
	}
	return nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
//
// Only non-zero values in overrides are applied. Boolean flags cannot be
// expressed this way; the CLI sets them directly when the flag was changed.
func LoadWithOverrides(ctx context.Context, repoDir string, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx, repoDir)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}

	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths for testing.
// Either path can be empty to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// setDefaults configures all default values on the Viper instance.
// IMPORTANT: Keys must match the YAML tag names exactly for proper mapping.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("commit.style", d.Commit.Style)
	v.SetDefault("commit.subject_max_length", d.Commit.SubjectMaxLength)
	v.SetDefault("commit.body_line_width", d.Commit.BodyLineWidth)
	v.SetDefault("commit.subject_policy", d.Commit.SubjectPolicy)
	v.SetDefault("commit.body_policy", d.Commit.BodyPolicy)
	v.SetDefault("commit.degeneracy_threshold", d.Commit.DegeneracyThreshold)
	v.SetDefault("commit.draft_concurrency", d.Commit.DraftConcurrency)
	v.SetDefault("commit.no_verify", d.Commit.NoVerify)

	v.SetDefault("git.main_branch", d.Git.MainBranch)
	v.SetDefault("git.remote_name", d.Git.RemoteName)
	v.SetDefault("git.auto_push", d.Git.AutoPush)
	v.SetDefault("git.auto_merge", d.Git.AutoMerge)
	v.SetDefault("git.rollback_on_failure", d.Git.RollbackOnFailure)
	v.SetDefault("git.timeout", d.Git.Timeout.String())

	v.SetDefault("ai.agent", d.AI.Agent)
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.fallback", []string{})
	v.SetDefault("ai.ollama_url", d.AI.OllamaURL)
	v.SetDefault("ai.classifier_timeout", d.AI.ClassifierTimeout.String())

	v.SetDefault("log.file", "")
	v.SetDefault("log.always", false)
	v.SetDefault("log.dir", "")
}

// applyOverrides merges non-zero override values into the config.
func applyOverrides(cfg, overrides *Config) {
	applyCommitOverrides(cfg, overrides)

	if overrides.Git.MainBranch != "" {
		cfg.Git.MainBranch = overrides.Git.MainBranch
	}
	if overrides.Git.RemoteName != "" {
		cfg.Git.RemoteName = overrides.Git.RemoteName
	}
	if overrides.Git.Timeout != 0 {
		cfg.Git.Timeout = overrides.Git.Timeout
	}

	if overrides.AI.Agent != "" {
		cfg.AI.Agent = overrides.AI.Agent
	}
	if overrides.AI.Model != "" {
		cfg.AI.Model = overrides.AI.Model
	}
	if len(overrides.AI.Fallback) > 0 {
		cfg.AI.Fallback = overrides.AI.Fallback
	}
	if overrides.AI.ClassifierTimeout != 0 {
		cfg.AI.ClassifierTimeout = overrides.AI.ClassifierTimeout
	}

	if overrides.Log.File != "" {
		cfg.Log.File = overrides.Log.File
	}
	if overrides.Log.Dir != "" {
		cfg.Log.Dir = overrides.Log.Dir
	}
}

// applyCommitOverrides applies commit-related overrides to the config.
func applyCommitOverrides(cfg, overrides *Config) {
	if overrides.Commit.Style != "" {
		cfg.Commit.Style = overrides.Commit.Style
	}
	if overrides.Commit.SubjectMaxLength != 0 {
		cfg.Commit.SubjectMaxLength = overrides.Commit.SubjectMaxLength
	}
	if overrides.Commit.BodyLineWidth != 0 {
		cfg.Commit.BodyLineWidth = overrides.Commit.BodyLineWidth
	}
	if overrides.Commit.SubjectPolicy != "" {
		cfg.Commit.SubjectPolicy = overrides.Commit.SubjectPolicy
	}
	if overrides.Commit.BodyPolicy != "" {
		cfg.Commit.BodyPolicy = overrides.Commit.BodyPolicy
	}
	if overrides.Commit.DegeneracyThreshold != 0 {
		cfg.Commit.DegeneracyThreshold = overrides.Commit.DegeneracyThreshold
	}
	if overrides.Commit.DraftConcurrency != 0 {
		cfg.Commit.DraftConcurrency = overrides.Commit.DraftConcurrency
	}
}

// viperDecoderOption returns the decoder options for Viper unmarshal.
// This configures mapstructure to handle time.Duration conversion from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}

// Save writes cfg as YAML to path, creating parent directories.
// It refuses to overwrite an existing file.
func Save(path string, cfg *Config, now time.Time) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}
	if fileExists(path) {
		return errors.Wrapf(errors.ErrConfigExists, "%s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := fmt.Sprintf("# gitsmart configuration\n# Generated by gitsmart config init on %s\n\n",
		now.Format(time.RFC3339))

	if err := os.WriteFile(path, []byte(header+string(data)), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
