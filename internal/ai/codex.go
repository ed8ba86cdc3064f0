package ai

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/gitsmart/internal/config"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

// codexCLIInfo contains Codex-specific CLI metadata for error messages.
//
//nolint:gochecknoglobals // Constant-like structure
var codexCLIInfo = CLIInfo{
	Name:        "codex",
	InstallHint: "install with: npm install -g @openai/codex",
	ErrType:     gserrors.ErrCodexInvocation,
	EnvVar:      "OPENAI_API_KEY",
}

// CodexRunner implements Runner by invoking "codex exec" with a read-only
// sandbox and reading its JSONL event stream.
type CodexRunner struct {
	base   BaseRunner
	logger zerolog.Logger
}

// CodexRunnerOption is a functional option for configuring CodexRunner.
type CodexRunnerOption func(*CodexRunner)

// WithCodexLogger sets the logger for the CodexRunner.
func WithCodexLogger(logger zerolog.Logger) CodexRunnerOption {
	return func(r *CodexRunner) {
		r.logger = logger
	}
}

// NewCodexRunner creates a new CodexRunner.
// If executor is nil, a DefaultExecutor is used.
func NewCodexRunner(cfg *config.AIConfig, executor CommandExecutor, opts ...CodexRunnerOption) *CodexRunner {
	if executor == nil {
		executor = &DefaultExecutor{}
	}
	r := &CodexRunner{
		base: BaseRunner{
			Config:   cfg,
			Executor: executor,
			ErrType:  gserrors.ErrCodexInvocation,
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.base.Logger = r.logger
	return r
}

// Run executes an AI request using the Codex CLI.
func (r *CodexRunner) Run(ctx context.Context, req *domain.AIRequest) (*domain.AIResult, error) {
	return r.base.RunWithTimeout(ctx, req, r.execute)
}

func (r *CodexRunner) execute(ctx context.Context, req *domain.AIRequest) (*domain.AIResult, error) {
	if err := r.base.ValidateWorkingDir(req.WorkingDir); err != nil {
		return nil, err
	}

	cmd := r.buildCommand(ctx, req)
	prompt := req.Prompt
	if req.SystemPrompt != "" {
		prompt = req.SystemPrompt + "\n\n" + prompt
	}
	cmd.Stdin = strings.NewReader(prompt)

	stdout, stderr, err := r.base.Executor.Execute(ctx, cmd)
	if err != nil {
		failed, handleErr := r.base.HandleExecutionError(ctx, err,
			func() (*domain.AIResult, bool) { return r.tryParseErrorResponse(err, stdout) },
			func(e error) error { return WrapCLIExecutionError(codexCLIInfo, e, stderr) },
		)
		if handleErr != nil {
			return nil, handleErr
		}
		return nil, fmt.Errorf("%w: %s", gserrors.ErrCodexInvocation, failed.Error)
	}

	result, err := parseCodexEvents(stdout)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: %s", gserrors.ErrCodexInvocation, result.Error)
	}
	if strings.TrimSpace(result.Output) == "" {
		return nil, fmt.Errorf("%w: %w", gserrors.ErrCodexInvocation, gserrors.ErrAIEmptyResponse)
	}

	r.logger.Debug().
		Str("thread_id", result.SessionID).
		Msg("codex request completed")
	return result, nil
}

// tryParseErrorResponse reads a failure event written before a non-zero
// exit.
func (r *CodexRunner) tryParseErrorResponse(execErr error, stdout []byte) (*domain.AIResult, bool) {
	if len(stdout) == 0 {
		return nil, false
	}
	result, err := parseCodexEvents(stdout)
	if err != nil || result.Success {
		return nil, false
	}
	result.Error = fmt.Sprintf("%s (exit: %s)", result.Error, execErr.Error())
	return result, true
}

// buildCommand constructs the codex CLI command. "-" reads the prompt from
// stdin.
func (r *CodexRunner) buildCommand(ctx context.Context, req *domain.AIRequest) *exec.Cmd {
	args := []string{
		"exec",
		"--json",
		"--sandbox", "read-only",
		"--skip-git-repo-check",
		"-m", r.base.ResolveModel(req, domain.AgentCodex),
		"-",
	}

	cmd := exec.CommandContext(ctx, "codex", args...)
	if req.WorkingDir != "" {
		cmd.Dir = req.WorkingDir
	}
	return cmd
}

// Compile-time check that CodexRunner implements Runner.
var _ Runner = (*CodexRunner)(nil)
