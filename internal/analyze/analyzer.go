package analyze

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/mrz1836/gitsmart/internal/constants"
	"github.com/mrz1836/gitsmart/internal/ctxutil"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

// SourceKind names where a grouping came from.
type SourceKind string

// Grouping sources.
const (
	SourceEmpty      SourceKind = "empty"
	SourceSingle     SourceKind = "single"
	SourceClassifier SourceKind = "classifier"
	SourceFallback   SourceKind = "fallback"
)

// Source describes how a grouping was produced.
type Source struct {
	Kind SourceKind `json:"kind" yaml:"kind"`

	// Reason explains a fallback, empty otherwise.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Fallback reasons.
const (
	ReasonDisabled   = "classifier disabled"
	ReasonFailed     = "classifier failed"
	ReasonMalformed  = "classifier grouping is not a partition"
	ReasonDegenerate = "classifier returned a single oversized group"
)

// Analyzer partitions change sets into commit units.
type Analyzer struct {
	classifier Classifier
	fallback   *FallbackGrouper
	threshold  int
	logger     zerolog.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithThreshold sets the degeneracy threshold T.
func WithThreshold(threshold int) AnalyzerOption {
	return func(a *Analyzer) {
		if threshold > 0 {
			a.threshold = threshold
		}
	}
}

// WithAnalyzerLogger sets the logger.
func WithAnalyzerLogger(logger zerolog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// NewAnalyzer creates an Analyzer. A nil classifier means every grouping
// comes from the fallback grouper.
func NewAnalyzer(classifier Classifier, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		classifier: classifier,
		threshold:  constants.DefaultDegeneracyThreshold,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.fallback = NewFallbackGrouper(a.threshold)
	return a
}

// Analyze partitions cs into commit units in a stable order.
//
// An empty change set yields no units and a single change yields one unit
// without consulting the classifier. Classifier errors, non-partition
// answers, and degenerate answers all resolve to the fallback grouper; the
// only error returned is cancellation of ctx.
func (a *Analyzer) Analyze(ctx context.Context, cs domain.ChangeSet) ([]domain.CommitUnit, Source, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, Source{}, err
	}

	switch cs.Len() {
	case 0:
		return nil, Source{Kind: SourceEmpty}, nil
	case 1:
		return a.fallback.Group(cs), Source{Kind: SourceSingle}, nil
	}

	if a.classifier == nil {
		return a.useFallback(cs, ReasonDisabled, nil)
	}

	grouping, err := a.classifier.Classify(ctx, cs)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, Source{}, ctxErr
		}
		return a.useFallback(cs, ReasonFailed, err)
	}

	units, err := unitsFromGrouping(cs, grouping)
	if err != nil {
		return a.useFallback(cs, ReasonMalformed, err)
	}

	if a.IsDegenerate(cs.Len(), units) {
		return a.useFallback(cs, ReasonDegenerate, nil)
	}

	a.logger.Debug().Int("files", cs.Len()).Int("units", len(units)).Msg("using classifier grouping")
	return units, Source{Kind: SourceClassifier}, nil
}

// IsDegenerate reports whether units is a single group larger than the
// threshold for a change set of n files above the threshold.
func (a *Analyzer) IsDegenerate(n int, units []domain.CommitUnit) bool {
	return n > a.threshold && len(units) == 1 && units[0].Len() > a.threshold
}

func (a *Analyzer) useFallback(cs domain.ChangeSet, reason string, cause error) ([]domain.CommitUnit, Source, error) {
	event := a.logger.Info()
	if cause != nil {
		event = a.logger.Warn().Err(cause).
			Bool("timeout", errors.Is(cause, gserrors.ErrClassifierTimeout)).
			Bool("unavailable", errors.Is(cause, gserrors.ErrClassifierUnavailable))
	}
	units := a.fallback.Group(cs)
	event.Str("reason", reason).Int("files", cs.Len()).Int("units", len(units)).
		Msg("using fallback grouping")
	return units, Source{Kind: SourceFallback, Reason: reason}, nil
}
