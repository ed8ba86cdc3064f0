package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrz1836/gitsmart/internal/constants"
	"github.com/mrz1836/gitsmart/internal/errors"
)

// GlobalConfigDir returns the path to the global gitsmart directory.
// This is typically ~/.gitsmart on Unix systems.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.GitsmartHome), nil
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// ProjectConfigPath returns the project configuration file for a repository root.
func ProjectConfigPath(repoDir string) string {
	return filepath.Join(repoDir, constants.ProjectConfigName)
}

// LogDir returns the directory for per-run log files.
// An explicit cfg.Log.Dir wins over ~/.gitsmart/logs.
func LogDir(cfg *Config) (string, error) {
	if cfg != nil && cfg.Log.Dir != "" {
		return cfg.Log.Dir, nil
	}
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LogsDir), nil
}
