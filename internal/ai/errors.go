package ai

import (
	"fmt"
	"strings"
)

// CLIInfo contains provider-specific information for error messages.
type CLIInfo struct {
	Name        string // CLI command name
	InstallHint string // Installation instructions
	ErrType     error  // Sentinel error type for this provider
	EnvVar      string // API key environment variable name
}

// WrapCLIExecutionError wraps an execution error with provider-specific context.
func WrapCLIExecutionError(info CLIInfo, err error, stderr []byte) error {
	stderrStr := strings.TrimSpace(string(stderr))

	if strings.Contains(stderrStr, "command not found") ||
		strings.Contains(err.Error(), "executable file not found") {
		return fmt.Errorf("%w: %s CLI not found - %s", info.ErrType, info.Name, info.InstallHint)
	}

	if containsAny(stderrStr, "api key", "API key", "authentication") ||
		(info.EnvVar != "" && strings.Contains(stderrStr, info.EnvVar)) {
		return fmt.Errorf("%w: API key error: %s", info.ErrType, stderrStr)
	}

	if stderrStr != "" {
		return fmt.Errorf("%w: %s", info.ErrType, stderrStr)
	}

	return fmt.Errorf("%w: %s", info.ErrType, err.Error())
}
