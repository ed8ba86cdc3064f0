// Package smartcommit wires change collection, grouping, message drafting,
// and command execution into a single commit run.
package smartcommit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/gitsmart/internal/analyze"
	"github.com/mrz1836/gitsmart/internal/command"
	"github.com/mrz1836/gitsmart/internal/ctxutil"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
	"github.com/mrz1836/gitsmart/internal/message"
)

// Collector reads the working tree once.
type Collector interface {
	Collect(ctx context.Context) (domain.ChangeSet, error)
}

// Pipeline runs collection, grouping, and drafting, and hands valid drafts
// to the executor.
type Pipeline struct {
	collector Collector
	analyzer  *analyze.Analyzer
	generator *message.Generator
	executor  *command.Executor
	runID     string
	logger    zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithExecutor sets the executor used by Execute and Run.
func WithExecutor(executor *command.Executor) Option {
	return func(p *Pipeline) {
		p.executor = executor
	}
}

// WithRunID sets the run id. A random id is generated otherwise.
func WithRunID(id string) Option {
	return func(p *Pipeline) {
		if id != "" {
			p.runID = id
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline.
func New(collector Collector, analyzer *analyze.Analyzer, generator *message.Generator, opts ...Option) *Pipeline {
	p := &Pipeline{
		collector: collector,
		analyzer:  analyzer,
		generator: generator,
		runID:     uuid.NewString(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RunID returns the id stamped on the plan.
func (p *Pipeline) RunID() string {
	return p.runID
}

// RunOptions selects the steps after committing.
type RunOptions struct {
	Push  bool
	Merge bool
}

// Result is a plan together with the executor's report.
type Result struct {
	Plan   *Plan
	Report *command.Report
}

// Plan collects changes, groups them, and drafts a validated message per
// unit. It never touches the repository index.
func (p *Pipeline) Plan(ctx context.Context) (*Plan, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	cs, err := p.collector.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect changes: %w", err)
	}
	if cs.IsEmpty() {
		return &Plan{RunID: p.runID, Style: p.generator.Style(), Grouping: analyze.Source{Kind: analyze.SourceEmpty}}, nil
	}

	units, source, err := p.analyzer.Analyze(ctx, cs)
	if err != nil {
		return nil, err
	}
	if err = analyze.VerifyPartition(cs, units); err != nil {
		return nil, err
	}

	drafts, err := p.generator.Generate(ctx, units)
	if err != nil {
		return nil, err
	}

	plan := newPlan(p.runID, p.generator.Style(), source, cs.Len(), drafts)
	p.logger.Info().
		Str("run_id", p.runID).
		Int("files", plan.Changes).
		Int("commits", len(plan.Commits)).
		Int("rejected", len(plan.Failures)).
		Str("grouping", string(source.Kind)).
		Str("fallback_reason", source.Reason).
		Msg("commit plan ready")
	return plan, nil
}

// Execute applies the valid commits of plan. Units that failed validation
// are not committed; they make the run fail after the rest is applied.
func (p *Pipeline) Execute(ctx context.Context, plan *Plan, opts RunOptions) (*Result, error) {
	if plan.Empty() {
		return &Result{Plan: plan}, gserrors.ErrNoChanges
	}
	if p.executor == nil {
		return &Result{Plan: plan}, fmt.Errorf("%w: executor", gserrors.ErrCommandNotConfigured)
	}
	if len(plan.Commits) == 0 {
		return &Result{Plan: plan}, fmt.Errorf("%w: no unit has a valid message: %w", gserrors.ErrRunFailed, plan.Failures[0].Err)
	}

	report := p.executor.Run(ctx, command.Batch{Items: plan.Items(), Push: opts.Push, Merge: opts.Merge})
	result := &Result{Plan: plan, Report: report}

	if report.Failed() {
		return result, fmt.Errorf("%w: %w", gserrors.ErrRunFailed, report.Err)
	}
	if n := len(plan.Failures); n > 0 {
		return result, fmt.Errorf("%w: %d unit(s) not committed: %w", gserrors.ErrRunFailed, n, plan.Failures[0].Err)
	}
	return result, nil
}

// Run plans and executes in one step.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	plan, err := p.Plan(ctx)
	if err != nil {
		return nil, err
	}
	return p.Execute(ctx, plan, opts)
}
