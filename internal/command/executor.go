package command

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
	"github.com/mrz1836/gitsmart/internal/git"
	"github.com/mrz1836/gitsmart/internal/observe"
)

// Item is a unit paired with its validated message.
type Item struct {
	Unit    domain.CommitUnit
	Message domain.CommitMessage
}

// Batch is the work of one executor run: one commit per item in order,
// then an optional push and merge.
type Batch struct {
	Items []Item
	Push  bool
	Merge bool
}

// Executor applies batches to a repository one command at a time.
type Executor struct {
	mu sync.Mutex

	repo       git.Repository
	registry   *observe.Registry
	remote     string
	mainBranch string
	rollback   bool
	commitOpts git.CommitOptions
	logger     zerolog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRemote sets the remote used for push and merge.
func WithRemote(remote string) ExecutorOption {
	return func(e *Executor) {
		e.remote = remote
	}
}

// WithMainBranch sets the branch merged into.
func WithMainBranch(branch string) ExecutorOption {
	return func(e *Executor) {
		e.mainBranch = branch
	}
}

// WithRollback enables unwinding executed commands when a run fails.
func WithRollback(enabled bool) ExecutorOption {
	return func(e *Executor) {
		e.rollback = enabled
	}
}

// WithCommitOptions sets the options passed to every commit.
func WithCommitOptions(opts git.CommitOptions) ExecutorOption {
	return func(e *Executor) {
		e.commitOpts = opts
	}
}

// WithObservers sets the registry that receives lifecycle events.
func WithObservers(registry *observe.Registry) ExecutorOption {
	return func(e *Executor) {
		e.registry = registry
	}
}

// WithExecutorLogger sets the logger.
func WithExecutorLogger(logger zerolog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// NewExecutor creates an Executor for repo.
func NewExecutor(repo git.Repository, opts ...ExecutorOption) *Executor {
	e := &Executor{
		repo:       repo,
		remote:     "origin",
		mainBranch: "main",
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// executed is a command in the run history. unit is the index into the
// report's units, or -1; step indexes the report's steps, or -1.
type executed struct {
	cmd  Command
	unit int
	step int
}

// Run executes batch and reports the outcome of every item and step.
//
// The run halts at the first failure. Commands that already ran stay
// applied unless rollback is enabled, in which case they are undone in
// reverse order. The context is checked before each command; once a
// command has started it runs to completion.
func (e *Executor) Run(ctx context.Context, batch Batch) *Report {
	e.mu.Lock()
	defer e.mu.Unlock()

	report := &Report{Units: make([]UnitResult, len(batch.Items))}
	for i, item := range batch.Items {
		report.Units[i] = UnitResult{Unit: item.Unit, Message: item.Message, Outcome: OutcomeNotAttempted}
	}

	var steps []Command
	if batch.Push {
		steps = append(steps, NewPushCommand(e.repo, e.remote, ""))
	}
	if batch.Merge {
		steps = append(steps, NewMergeCommand(e.repo, e.remote, e.mainBranch))
		if batch.Push {
			steps = append(steps, NewPushCommand(e.repo, e.remote, e.mainBranch))
		}
	}
	for _, cmd := range steps {
		report.Steps = append(report.Steps, StepResult{Kind: cmd.Kind(), Target: e.stepTarget(cmd), Outcome: OutcomeNotAttempted})
	}

	var history []executed
	defer func() {
		if report.Err != nil && e.rollback {
			e.unwind(ctx, history, report)
		}
	}()

	if len(batch.Items) > 0 {
		if err := ctx.Err(); err != nil {
			report.Canceled, report.Err = true, err
			return report
		}
		prior, err := e.repo.StagedPaths(ctx)
		if err != nil {
			report.Err = repoError("list staged", nil, err)
			return report
		}
		if err := e.repo.ResetIndex(ctx); err != nil {
			report.Err = repoError("reset index", nil, err)
			return report
		}
		if len(prior) > 0 {
			e.logger.Info().Strs("paths", prior).Msg("cleared previously staged paths")
		}
		report.PriorStaged = prior
	}

	for i := range batch.Items {
		if err := ctx.Err(); err != nil {
			e.logger.Warn().Int("remaining", len(batch.Items)-i).Msg("run canceled before next unit")
			report.Canceled, report.Err = true, err
			return report
		}

		item := &batch.Items[i]
		cmd := NewCommitCommand(e.repo, &item.Unit, item.Message, e.commitOpts)
		if err := e.execute(context.WithoutCancel(ctx), cmd); err != nil {
			report.Units[i].Outcome = OutcomeFailed
			report.Units[i].Err = err
			report.Err = err
			return report
		}

		report.Units[i].Outcome = OutcomeSucceeded
		report.Units[i].CommitID = cmd.CommitID()
		history = append(history, executed{cmd: cmd, unit: i, step: -1})
		e.registry.Notify(observe.Event{
			Type:     observe.CommitCreated,
			Kind:     KindCommit.String(),
			Target:   item.Unit.Scope,
			Files:    item.Unit.Paths(),
			CommitID: cmd.CommitID(),
		})
	}

	for i, cmd := range steps {
		if err := ctx.Err(); err != nil {
			report.Canceled, report.Err = true, err
			return report
		}
		if push, ok := cmd.(*PushCommand); ok && push.branch == e.mainBranch && mergeSkipped(steps) {
			continue
		}

		err := e.execute(context.WithoutCancel(ctx), cmd)
		report.Steps[i].Target = e.stepTarget(cmd)
		if err != nil {
			report.Steps[i].Outcome = OutcomeFailed
			report.Steps[i].Err = err
			report.Err = err
			return report
		}
		report.Steps[i].Outcome = OutcomeSucceeded
		history = append(history, executed{cmd: cmd, unit: -1, step: i})
	}

	return report
}

// execute runs one command and emits its lifecycle events.
func (e *Executor) execute(ctx context.Context, cmd Command) error {
	event := e.event(cmd)
	event.Type = observe.CommandStarted
	e.registry.Notify(event)

	err := cmd.Execute(ctx)
	event = e.event(cmd)
	if err != nil {
		event.Type, event.Err = observe.CommandFailed, err
		e.logger.Error().Err(err).Str("kind", cmd.Kind().String()).Str("target", event.Target).Msg("command failed")
	} else {
		event.Type = observe.CommandSucceeded
	}
	e.registry.Notify(event)
	return err
}

// unwind undoes history in reverse order, then stages the paths that were
// staged before the run. Undo failures are collected and commands that
// cannot be undone are listed separately.
func (e *Executor) unwind(ctx context.Context, history []executed, report *Report) {
	ctx = context.WithoutCancel(ctx)
	var result *multierror.Error

	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		event := e.event(h.cmd)
		event.Type = observe.CommandUndone

		if !h.cmd.CanUndo() {
			err := h.cmd.Undo(ctx)
			report.Unsupported = append(report.Unsupported, e.describe(h.cmd))
			e.logger.Warn().Err(err).Msg("command cannot be undone")
			continue
		}

		if err := h.cmd.Undo(ctx); err != nil {
			if errors.Is(err, gserrors.ErrUndoUnsupported) {
				report.Unsupported = append(report.Unsupported, e.describe(h.cmd))
				continue
			}
			result = multierror.Append(result, fmt.Errorf("undo %s: %w", e.describe(h.cmd), err))
			event.Err = err
			e.registry.Notify(event)
			continue
		}

		if h.unit >= 0 {
			report.Units[h.unit].Outcome = OutcomeUndone
		}
		if h.step >= 0 {
			report.Steps[h.step].Outcome = OutcomeUndone
		}
		e.registry.Notify(event)
	}

	if len(report.PriorStaged) > 0 {
		if err := e.repo.Stage(ctx, report.PriorStaged); err != nil {
			result = multierror.Append(result, fmt.Errorf("restore staged paths: %w", err))
		} else {
			report.Restaged = true
		}
	}

	report.RolledBack = true
	report.UndoErr = result.ErrorOrNil()
	if report.UndoErr != nil {
		e.logger.Error().Err(report.UndoErr).Msg("rollback incomplete")
	}
}

func (e *Executor) event(cmd Command) observe.Event {
	ev := observe.Event{Kind: cmd.Kind().String(), Target: e.stepTarget(cmd)}
	if unit := cmd.Target(); unit != nil {
		ev.Target = unit.Scope
		ev.Files = unit.Paths()
	}
	return ev
}

func (e *Executor) stepTarget(cmd Command) string {
	switch c := cmd.(type) {
	case *PushCommand:
		if c.branch == "" {
			return e.remote
		}
		return c.Ref()
	case *MergeCommand:
		return c.Branch()
	case *CommitCommand:
		return c.unit.Scope
	case *StageCommand:
		return c.unit.Scope
	}
	return ""
}

func (e *Executor) describe(cmd Command) string {
	return cmd.Kind().String() + " " + e.stepTarget(cmd)
}

func mergeSkipped(steps []Command) bool {
	for _, cmd := range steps {
		if m, ok := cmd.(*MergeCommand); ok {
			return m.Skipped()
		}
	}
	return false
}
