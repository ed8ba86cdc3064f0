package message

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/gitsmart/internal/constants"
	"github.com/mrz1836/gitsmart/internal/ctxutil"
	"github.com/mrz1836/gitsmart/internal/domain"
	"github.com/mrz1836/gitsmart/internal/validate"
)

// DiffReader returns the unified diff of paths. git.Repository satisfies it.
type DiffReader interface {
	Diff(ctx context.Context, paths []string) (string, error)
}

// Generator drafts and validates messages for a sequence of units.
type Generator struct {
	strategy    Strategy
	descriptor  *Descriptor
	chain       *validate.Chain
	diffs       DiffReader
	concurrency int
	logger      zerolog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithConcurrency bounds how many units are drafted at once.
// Values outside 1..MaxDraftConcurrency are clamped.
func WithConcurrency(n int) GeneratorOption {
	return func(g *Generator) {
		switch {
		case n < 1:
			n = 1
		case n > constants.MaxDraftConcurrency:
			n = constants.MaxDraftConcurrency
		}
		g.concurrency = n
	}
}

// WithDiffReader supplies diffs that are summarized into prompts.
func WithDiffReader(diffs DiffReader) GeneratorOption {
	return func(g *Generator) {
		g.diffs = diffs
	}
}

// WithGeneratorLogger sets the logger.
func WithGeneratorLogger(logger zerolog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a Generator. A nil strategy drafts every message with
// the Descriptor; a nil chain uses the default validation options.
func NewGenerator(strategy Strategy, chain *validate.Chain, opts ...GeneratorOption) *Generator {
	if chain == nil {
		chain = validate.NewChain(validate.DefaultOptions())
	}
	g := &Generator{
		strategy:    strategy,
		descriptor:  NewDescriptor(WithHeaderLimit(chain.Options().SubjectMaxLength)),
		chain:       chain,
		concurrency: constants.DefaultDraftConcurrency,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Style returns the style drafts are produced in.
func (g *Generator) Style() domain.Style {
	if g.strategy != nil {
		return g.strategy.Style()
	}
	return g.chain.Options().Style
}

// Generate returns one draft per unit, in input order. Units are drafted
// concurrently up to the configured limit. Per-unit failures are reported in
// Draft.Err; the returned error is non-nil only when ctx is canceled.
func (g *Generator) Generate(ctx context.Context, units []domain.CommitUnit) ([]Draft, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	drafts := make([]Draft, len(units))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)

	for i, unit := range units {
		eg.Go(func() error {
			if err := ctxutil.Canceled(egCtx); err != nil {
				return err
			}
			drafts[i] = g.draftOne(egCtx, unit)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	return drafts, nil
}

// draftOne drafts, validates, and at most once regenerates a unit's message.
func (g *Generator) draftOne(ctx context.Context, unit domain.CommitUnit) Draft {
	style := g.Style()
	msg, source := g.firstDraft(ctx, unit, style)

	validated, err := g.chain.Run(msg)
	if err == nil {
		return Draft{Unit: unit, Message: validated, Source: source}
	}

	var verr *validate.ValidationError
	if !errors.As(err, &verr) || source == SourceDescriptor {
		return g.failed(unit, msg, source, false, err)
	}

	g.logger.Debug().
		Str("scope", unit.Scope).
		Str("rule", verr.Rule).
		Str("reason", verr.Reason).
		Msg("draft rejected, regenerating with descriptor")

	regen := g.descriptor.Describe(unit, style)
	validated, err = g.chain.Run(regen)
	if err != nil {
		return g.failed(unit, regen, SourceDescriptor, true, err)
	}
	return Draft{Unit: unit, Message: validated, Source: SourceDescriptor, Regenerated: true}
}

func (g *Generator) firstDraft(ctx context.Context, unit domain.CommitUnit, style domain.Style) (domain.CommitMessage, DraftSource) {
	if g.strategy == nil {
		return g.descriptor.Describe(unit, style), SourceDescriptor
	}

	mctx := Context{
		MaxHeaderLength: g.chain.Options().SubjectMaxLength,
		BodyLineWidth:   g.chain.Options().BodyLineWidth,
		DiffSummary:     g.diffSummary(ctx, unit),
	}
	msg, err := g.strategy.Draft(ctx, unit, mctx)
	if err != nil {
		fallback := g.descriptor.Describe(unit, style)
		g.logger.Warn().
			Err(err).
			Str("scope", unit.Scope).
			Str("fallback_message", fallback.Header()).
			Msg("message generation failed, using descriptor")
		return fallback, SourceDescriptor
	}
	return msg, SourceModel
}

func (g *Generator) diffSummary(ctx context.Context, unit domain.CommitUnit) string {
	if g.diffs == nil {
		return ""
	}
	diff, err := g.diffs.Diff(ctx, unit.Paths())
	if err != nil {
		g.logger.Debug().Err(err).Msg("failed to read diff for prompt")
		return ""
	}
	return SummarizeDiff(diff, unit.Paths())
}

func (g *Generator) failed(unit domain.CommitUnit, msg domain.CommitMessage, source DraftSource, regenerated bool, err error) Draft {
	g.logger.Warn().
		Err(err).
		Strs("files", unit.Paths()).
		Msg("commit message failed validation")
	return Draft{
		Unit:        unit,
		Message:     msg,
		Source:      source,
		Regenerated: regenerated,
		Err:         fmt.Errorf("files %v: %w", unit.Paths(), err),
	}
}
