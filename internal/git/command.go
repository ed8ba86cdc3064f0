// Package git provides the version-control collaborator for gitsmart.
// This file provides shared git command execution utilities.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// RunCommand executes a git command in the specified directory and returns its
// trimmed output. Failures are wrapped with ErrRepository plus the most specific
// sentinel recognized in stderr, and include stderr for debugging.
func RunCommand(ctx context.Context, workDir string, args ...string) (string, error) {
	out, err := runRaw(ctx, workDir, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// runRaw executes git and returns untrimmed stdout.
func runRaw(ctx context.Context, workDir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...) //#nosec G204 -- args are constructed internally, not user input
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", newGitError(args[0], strings.TrimSpace(stderr.String()), strings.TrimSpace(stdout.String()), err)
	}

	return stdout.String(), nil
}

// newGitError builds the error returned for a failed git invocation.
// Some commands (merge) report conflicts on stdout, so both streams are classified.
func newGitError(subcommand, stderr, stdout string, cause error) error {
	sentinel := ClassifyError(stderr + "\n" + stdout).Sentinel()
	detail := stderr
	if detail == "" {
		detail = stdout
	}
	if detail != "" {
		return fmt.Errorf("git %s failed: %s: %w", subcommand, detail, sentinel)
	}
	return fmt.Errorf("git %s failed: %s: %w", subcommand, cause.Error(), sentinel)
}
