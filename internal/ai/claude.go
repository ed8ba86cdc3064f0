package ai

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/gitsmart/internal/config"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

// claudeCLIInfo contains Claude-specific CLI metadata for error messages.
//
//nolint:gochecknoglobals // Constant-like structure
var claudeCLIInfo = CLIInfo{
	Name:        "claude",
	InstallHint: "install Claude Code or set ai.agent to none",
	ErrType:     gserrors.ErrClaudeInvocation,
	EnvVar:      "ANTHROPIC_API_KEY",
}

// CommandExecutor abstracts command execution for testing.
// The production implementation runs the subprocess; tests return canned output.
type CommandExecutor interface {
	// Execute runs the command and returns stdout, stderr, and any error.
	Execute(ctx context.Context, cmd *exec.Cmd) (stdout, stderr []byte, err error)
}

// DefaultExecutor is the production implementation of CommandExecutor.
type DefaultExecutor struct{}

// Execute runs the command and captures its output.
func (e *DefaultExecutor) Execute(_ context.Context, cmd *exec.Cmd) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// ClaudeCodeRunner implements Runner by invoking the Claude Code CLI in
// print mode and parsing its JSON response.
type ClaudeCodeRunner struct {
	base   BaseRunner
	logger zerolog.Logger
}

// ClaudeRunnerOption is a functional option for configuring ClaudeCodeRunner.
type ClaudeRunnerOption func(*ClaudeCodeRunner)

// WithClaudeLogger sets the logger for the ClaudeCodeRunner.
func WithClaudeLogger(logger zerolog.Logger) ClaudeRunnerOption {
	return func(r *ClaudeCodeRunner) {
		r.logger = logger
	}
}

// NewClaudeCodeRunner creates a new ClaudeCodeRunner.
// If executor is nil, a DefaultExecutor is used.
func NewClaudeCodeRunner(cfg *config.AIConfig, executor CommandExecutor, opts ...ClaudeRunnerOption) *ClaudeCodeRunner {
	if executor == nil {
		executor = &DefaultExecutor{}
	}
	r := &ClaudeCodeRunner{
		base: BaseRunner{
			Config:   cfg,
			Executor: executor,
			ErrType:  gserrors.ErrClaudeInvocation,
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.base.Logger = r.logger
	return r
}

// Run executes an AI request using the Claude Code CLI.
func (r *ClaudeCodeRunner) Run(ctx context.Context, req *domain.AIRequest) (*domain.AIResult, error) {
	return r.base.RunWithTimeout(ctx, req, r.execute)
}

// execute performs a single AI request execution.
func (r *ClaudeCodeRunner) execute(ctx context.Context, req *domain.AIRequest) (*domain.AIResult, error) {
	if err := r.base.ValidateWorkingDir(req.WorkingDir); err != nil {
		return nil, err
	}

	cmd := r.buildCommand(ctx, req)
	cmd.Stdin = strings.NewReader(req.Prompt)

	stdout, stderr, err := r.base.Executor.Execute(ctx, cmd)
	if err != nil {
		failed, handleErr := r.base.HandleExecutionError(ctx, err,
			func() (*domain.AIResult, bool) { return r.tryParseErrorResponse(err, stdout, stderr) },
			func(e error) error { return WrapCLIExecutionError(claudeCLIInfo, e, stderr) },
		)
		if handleErr != nil {
			return nil, handleErr
		}
		return nil, fmt.Errorf("%w: %s", gserrors.ErrClaudeInvocation, failed.Error)
	}

	resp, err := parseClaudeResponse(stdout)
	if err != nil {
		return nil, err
	}

	result := resp.toAIResult(string(stderr))
	if !result.Success {
		return nil, fmt.Errorf("%w: %s", gserrors.ErrClaudeInvocation, result.Error)
	}
	if strings.TrimSpace(result.Output) == "" {
		return nil, fmt.Errorf("%w: %w", gserrors.ErrClaudeInvocation, gserrors.ErrAIEmptyResponse)
	}

	r.logger.Debug().
		Str("session_id", result.SessionID).
		Int("duration_ms", result.DurationMs).
		Float64("cost_usd", result.TotalCostUSD).
		Msg("claude request completed")

	return result, nil
}

// tryParseErrorResponse extracts error details from a JSON response written
// alongside a failing exit status.
func (r *ClaudeCodeRunner) tryParseErrorResponse(execErr error, stdout, stderr []byte) (*domain.AIResult, bool) {
	if len(stdout) == 0 {
		return nil, false
	}

	resp, parseErr := parseClaudeResponse(stdout)
	if parseErr != nil || !resp.IsError {
		return nil, false
	}

	result := resp.toAIResult(string(stderr))
	result.Error = fmt.Sprintf("%s: %s", execErr.Error(), result.Error)
	return result, true
}

// buildCommand constructs the claude CLI command.
func (r *ClaudeCodeRunner) buildCommand(ctx context.Context, req *domain.AIRequest) *exec.Cmd {
	args := []string{
		"-p", // Print mode (non-interactive)
		"--output-format", "json",
	}

	args = append(args, "--model", r.base.ResolveModel(req, domain.AgentClaude))

	if req.SystemPrompt != "" {
		args = append(args, "--append-system-prompt", req.SystemPrompt)
	}

	cmd := exec.CommandContext(ctx, "claude", args...)
	if req.WorkingDir != "" {
		cmd.Dir = req.WorkingDir
	}

	return cmd
}

// Compile-time check that ClaudeCodeRunner implements Runner.
var _ Runner = (*ClaudeCodeRunner)(nil)
