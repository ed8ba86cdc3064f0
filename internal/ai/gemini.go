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

// geminiCLIInfo contains Gemini-specific CLI metadata for error messages.
//
//nolint:gochecknoglobals // Constant-like structure
var geminiCLIInfo = CLIInfo{
	Name:        "gemini",
	InstallHint: "install with: npm install -g @google/gemini-cli",
	ErrType:     gserrors.ErrGeminiInvocation,
	EnvVar:      "GEMINI_API_KEY",
}

// GeminiRunner implements Runner by invoking the Gemini CLI in
// non-interactive mode and parsing its JSON response.
type GeminiRunner struct {
	base   BaseRunner
	logger zerolog.Logger
}

// GeminiRunnerOption is a functional option for configuring GeminiRunner.
type GeminiRunnerOption func(*GeminiRunner)

// WithGeminiLogger sets the logger for the GeminiRunner.
func WithGeminiLogger(logger zerolog.Logger) GeminiRunnerOption {
	return func(r *GeminiRunner) {
		r.logger = logger
	}
}

// NewGeminiRunner creates a new GeminiRunner.
// If executor is nil, a DefaultExecutor is used.
func NewGeminiRunner(cfg *config.AIConfig, executor CommandExecutor, opts ...GeminiRunnerOption) *GeminiRunner {
	if executor == nil {
		executor = &DefaultExecutor{}
	}
	r := &GeminiRunner{
		base: BaseRunner{
			Config:   cfg,
			Executor: executor,
			ErrType:  gserrors.ErrGeminiInvocation,
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.base.Logger = r.logger
	return r
}

// Run executes an AI request using the Gemini CLI.
func (r *GeminiRunner) Run(ctx context.Context, req *domain.AIRequest) (*domain.AIResult, error) {
	return r.base.RunWithTimeout(ctx, req, r.execute)
}

func (r *GeminiRunner) execute(ctx context.Context, req *domain.AIRequest) (*domain.AIResult, error) {
	if err := r.base.ValidateWorkingDir(req.WorkingDir); err != nil {
		return nil, err
	}

	cmd := r.buildCommand(ctx, req)
	cmd.Stdin = strings.NewReader(geminiPrompt(req))

	r.logger.Debug().
		Str("cli", "gemini").
		Strs("args", cmd.Args[1:]).
		Int("prompt_length", len(req.Prompt)).
		Msg("executing gemini CLI")

	stdout, stderr, err := r.base.Executor.Execute(ctx, cmd)
	if err != nil {
		failed, handleErr := r.base.HandleExecutionError(ctx, err,
			func() (*domain.AIResult, bool) { return r.tryParseErrorResponse(err, stdout, stderr) },
			func(e error) error { return WrapCLIExecutionError(geminiCLIInfo, e, stderr) },
		)
		if handleErr != nil {
			return nil, handleErr
		}
		return nil, fmt.Errorf("%w: %s", gserrors.ErrGeminiInvocation, failed.Error)
	}

	resp, err := parseGeminiResponse(stdout)
	if err != nil {
		return nil, err
	}

	result := resp.toAIResult(string(stderr))
	if !result.Success {
		return nil, fmt.Errorf("%w: %s", gserrors.ErrGeminiInvocation, result.Error)
	}
	if strings.TrimSpace(result.Output) == "" {
		return nil, fmt.Errorf("%w: %w", gserrors.ErrGeminiInvocation, gserrors.ErrAIEmptyResponse)
	}
	return result, nil
}

// tryParseErrorResponse extracts error details from a JSON response written
// alongside a failing exit status.
func (r *GeminiRunner) tryParseErrorResponse(execErr error, stdout, stderr []byte) (*domain.AIResult, bool) {
	if len(stdout) == 0 {
		return nil, false
	}

	resp, parseErr := parseGeminiResponse(stdout)
	if parseErr != nil || resp.Error == nil {
		return nil, false
	}

	result := resp.toAIResult(string(stderr))
	result.Error = fmt.Sprintf("%s (exit: %s)", result.Error, execErr.Error())
	return result, true
}

// buildCommand constructs the gemini CLI command. The prompt is read from
// stdin so large diffs do not hit argument length limits.
func (r *GeminiRunner) buildCommand(ctx context.Context, req *domain.AIRequest) *exec.Cmd {
	args := []string{
		"--output-format", "json",
		"-m", r.base.ResolveModel(req, domain.AgentGemini),
	}

	cmd := exec.CommandContext(ctx, "gemini", args...)
	if req.WorkingDir != "" {
		cmd.Dir = req.WorkingDir
	}
	return cmd
}

// geminiPrompt prepends the system prompt; the CLI has no separate flag
// for it.
func geminiPrompt(req *domain.AIRequest) string {
	if req.SystemPrompt == "" {
		return req.Prompt
	}
	return req.SystemPrompt + "\n\n" + req.Prompt
}

// Compile-time check that GeminiRunner implements Runner.
var _ Runner = (*GeminiRunner)(nil)
