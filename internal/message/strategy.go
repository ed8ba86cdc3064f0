package message

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/gitsmart/internal/ai"
	"github.com/mrz1836/gitsmart/internal/analyze"
	"github.com/mrz1836/gitsmart/internal/constants"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
	"github.com/mrz1836/gitsmart/internal/prompts"
)

// StrategyOption configures a model-backed strategy.
type StrategyOption func(*modelStrategy)

// WithStrategyModel sets the model passed to the runner.
func WithStrategyModel(model string) StrategyOption {
	return func(s *modelStrategy) {
		s.model = model
	}
}

// WithStrategyTimeout bounds each drafting call.
func WithStrategyTimeout(timeout time.Duration) StrategyOption {
	return func(s *modelStrategy) {
		s.timeout = timeout
	}
}

// WithStrategyWorkDir sets the directory the model runs in.
func WithStrategyWorkDir(dir string) StrategyOption {
	return func(s *modelStrategy) {
		s.workDir = dir
	}
}

// WithStrategyLogger sets the logger.
func WithStrategyLogger(logger zerolog.Logger) StrategyOption {
	return func(s *modelStrategy) {
		s.logger = logger
	}
}

// modelStrategy is the shared implementation of the model-backed strategies.
type modelStrategy struct {
	runner   ai.Runner
	style    domain.Style
	promptID prompts.PromptID
	model    string
	timeout  time.Duration
	workDir  string
	logger   zerolog.Logger
}

func newModelStrategy(runner ai.Runner, style domain.Style, id prompts.PromptID, opts []StrategyOption) modelStrategy {
	s := modelStrategy{
		runner:   runner,
		style:    style,
		promptID: id,
		timeout:  constants.DefaultClassifierTimeout,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// ConventionalStrategy drafts "type(scope): subject" messages.
type ConventionalStrategy struct {
	modelStrategy
}

// NewConventionalStrategy creates a conventional strategy backed by runner.
func NewConventionalStrategy(runner ai.Runner, opts ...StrategyOption) *ConventionalStrategy {
	return &ConventionalStrategy{newModelStrategy(runner, domain.StyleConventional, prompts.CommitMessage, opts)}
}

// SimpleStrategy drafts plain subject-line messages.
type SimpleStrategy struct {
	modelStrategy
}

// NewSimpleStrategy creates a simple strategy backed by runner.
func NewSimpleStrategy(runner ai.Runner, opts ...StrategyOption) *SimpleStrategy {
	return &SimpleStrategy{newModelStrategy(runner, domain.StyleSimple, prompts.SimpleMessage, opts)}
}

// NewStrategy returns the strategy for style, or nil when runner is nil.
func NewStrategy(style domain.Style, runner ai.Runner, opts ...StrategyOption) Strategy {
	if runner == nil {
		return nil
	}
	if style == domain.StyleSimple {
		return NewSimpleStrategy(runner, opts...)
	}
	return NewConventionalStrategy(runner, opts...)
}

// Style returns the strategy's message style.
func (s *modelStrategy) Style() domain.Style {
	return s.style
}

// Draft asks the model for a message describing unit.
// It returns ErrAIInvalidFormat for unparsable answers and ErrGenericMessage
// for placeholder subjects.
func (s *modelStrategy) Draft(ctx context.Context, unit domain.CommitUnit, mctx Context) (domain.CommitMessage, error) {
	prompt, err := prompts.Render(s.promptID, s.promptData(unit, mctx))
	if err != nil {
		return domain.CommitMessage{}, err
	}

	req := ai.NewAIRequest(prompt,
		ai.WithModel(s.model),
		ai.WithTimeout(s.timeout),
		ai.WithWorkingDir(s.workDir),
		ai.WithSystemPrompt("You write git commit messages. Answer with the message text only."),
	)

	s.logger.Debug().
		Str("scope", unit.Scope).
		Int("files", unit.Len()).
		Str("style", s.style.String()).
		Msg("drafting commit message")

	result, err := s.runner.Run(ctx, req)
	if err != nil {
		return domain.CommitMessage{}, err
	}

	return s.parse(result.Output, unit)
}

func (s *modelStrategy) promptData(unit domain.CommitUnit, mctx Context) prompts.CommitMessageData {
	types := domain.ValidCommitTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	maxHeader := mctx.MaxHeaderLength
	if maxHeader <= 0 {
		maxHeader = constants.DefaultSubjectMaxLength
	}
	width := mctx.BodyLineWidth
	if width <= 0 {
		width = constants.DefaultBodyLineWidth
	}
	return prompts.CommitMessageData{
		Files:           analyze.PromptFiles(unit.Files),
		Scope:           unit.Scope,
		Rationale:       unit.Rationale,
		DiffSummary:     mctx.DiffSummary,
		Types:           names,
		MaxHeaderLength: maxHeader,
		BodyLineWidth:   width,
	}
}

func (s *modelStrategy) parse(output string, unit domain.CommitUnit) (domain.CommitMessage, error) {
	text := stripFences(output)
	if text == "" {
		return domain.CommitMessage{}, gserrors.ErrAIEmptyResponse
	}

	msg := domain.ParseCommitMessage(text, domain.StyleConventional)
	switch s.style {
	case domain.StyleSimple:
		// A prefix the model added anyway is dropped.
		msg.Type, msg.Scope, msg.Breaking = "", "", false
	default:
		if !msg.Type.IsValid() {
			return domain.CommitMessage{}, fmt.Errorf("%w: header %q", gserrors.ErrAIInvalidFormat, msg.Header())
		}
		if msg.Scope == "" {
			msg.Scope = unit.Scope
		}
	}

	if IsGeneric(msg.Subject) {
		return domain.CommitMessage{}, fmt.Errorf("%w: %q", gserrors.ErrGenericMessage, msg.Subject)
	}
	return msg, nil
}

// stripFences removes a surrounding markdown code fence.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.HasPrefix(strings.TrimSpace(lines[n-1]), "```") {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Compile-time checks that the strategies implement Strategy.
var (
	_ Strategy = (*ConventionalStrategy)(nil)
	_ Strategy = (*SimpleStrategy)(nil)
)
