package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/gitsmart/internal/ai"
	"github.com/mrz1836/gitsmart/internal/constants"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
	"github.com/mrz1836/gitsmart/internal/prompts"
)

// Group is one classifier-proposed group of paths.
type Group struct {
	Paths     []string `json:"files"`
	Scope     string   `json:"scope"`
	Rationale string   `json:"reasoning"`
}

// Grouping is a candidate partition proposed by a Classifier.
type Grouping struct {
	Groups []Group `json:"groups"`
}

// Classifier proposes a grouping for a change set.
// Implementations are unreliable: errors and malformed answers are expected.
type Classifier interface {
	Classify(ctx context.Context, cs domain.ChangeSet) (Grouping, error)
}

// AIClassifier asks a language model to group changes.
type AIClassifier struct {
	runner    ai.Runner
	model     string
	timeout   time.Duration
	workDir   string
	threshold int
	logger    zerolog.Logger
}

// ClassifierOption configures an AIClassifier.
type ClassifierOption func(*AIClassifier)

// WithClassifierModel sets the model passed to the runner.
func WithClassifierModel(model string) ClassifierOption {
	return func(c *AIClassifier) {
		c.model = model
	}
}

// WithClassifierTimeout bounds each classification call.
func WithClassifierTimeout(timeout time.Duration) ClassifierOption {
	return func(c *AIClassifier) {
		c.timeout = timeout
	}
}

// WithClassifierWorkDir sets the directory the model runs in.
func WithClassifierWorkDir(dir string) ClassifierOption {
	return func(c *AIClassifier) {
		c.workDir = dir
	}
}

// WithClassifierThreshold sets the degeneracy threshold quoted in the prompt.
func WithClassifierThreshold(threshold int) ClassifierOption {
	return func(c *AIClassifier) {
		c.threshold = threshold
	}
}

// WithClassifierLogger sets the logger.
func WithClassifierLogger(logger zerolog.Logger) ClassifierOption {
	return func(c *AIClassifier) {
		c.logger = logger
	}
}

// NewAIClassifier creates a classifier backed by runner.
func NewAIClassifier(runner ai.Runner, opts ...ClassifierOption) *AIClassifier {
	c := &AIClassifier{
		runner:    runner,
		timeout:   constants.DefaultClassifierTimeout,
		threshold: constants.DefaultDegeneracyThreshold,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify renders the grouping prompt, runs it, and decodes the JSON answer.
// Transport failures wrap ErrClassifier; undecodable answers wrap
// ErrClassifierMalformed.
func (c *AIClassifier) Classify(ctx context.Context, cs domain.ChangeSet) (Grouping, error) {
	prompt, err := prompts.Render(prompts.GroupChanges, prompts.GroupChangesData{
		Files:     PromptFiles(cs.Changes()),
		Threshold: c.threshold,
	})
	if err != nil {
		return Grouping{}, fmt.Errorf("%w: %w", gserrors.ErrClassifier, err)
	}

	req := ai.NewAIRequest(prompt,
		ai.WithModel(c.model),
		ai.WithTimeout(c.timeout),
		ai.WithWorkingDir(c.workDir),
		ai.WithSystemPrompt("You group changed files for git commits. Answer with JSON only."),
	)

	c.logger.Debug().Int("files", cs.Len()).Str("model", c.model).Msg("classifying changes")

	result, err := c.runner.Run(ctx, req)
	if err != nil {
		return Grouping{}, fmt.Errorf("%w: %w", gserrors.ErrClassifier, err)
	}

	grouping, err := decodeGrouping(result.Output)
	if err != nil {
		return Grouping{}, err
	}
	return grouping, nil
}

// decodeGrouping extracts the first JSON object in out, tolerating prose or
// code fences around it.
func decodeGrouping(out string) (Grouping, error) {
	start := strings.IndexByte(out, '{')
	if start < 0 {
		return Grouping{}, fmt.Errorf("%w: no JSON object in response", gserrors.ErrClassifierMalformed)
	}

	var grouping Grouping
	if err := json.NewDecoder(strings.NewReader(out[start:])).Decode(&grouping); err != nil {
		return Grouping{}, fmt.Errorf("%w: %w", gserrors.ErrClassifierMalformed, err)
	}
	if len(grouping.Groups) == 0 {
		return Grouping{}, fmt.Errorf("%w: no groups", gserrors.ErrClassifierMalformed)
	}
	return grouping, nil
}

// PromptFiles converts file changes to their prompt representation.
func PromptFiles(changes []domain.FileChange) []prompts.FileChange {
	out := make([]prompts.FileChange, len(changes))
	for i, fc := range changes {
		out[i] = prompts.FileChange{
			Path:      fc.Path,
			Status:    fc.Kind.String(),
			OldPath:   fc.OldPath,
			Additions: fc.Stats.Additions,
			Deletions: fc.Stats.Deletions,
			Binary:    fc.Stats.Binary,
		}
	}
	return out
}

// Compile-time check that AIClassifier implements Classifier.
var _ Classifier = (*AIClassifier)(nil)
