package command

import (
	"context"
	"fmt"

	"github.com/mrz1836/gitsmart/internal/ctxutil"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
	"github.com/mrz1836/gitsmart/internal/git"
)

// CommitCommand stages a unit and commits it with its message.
type CommitCommand struct {
	state
	repo    git.Repository
	unit    *domain.CommitUnit
	message domain.CommitMessage
	opts    git.CommitOptions
	stage   *StageCommand

	// head is HEAD before the commit; empty on an unborn branch.
	head     string
	branch   string
	commitID string
}

// NewCommitCommand creates a CommitCommand.
func NewCommitCommand(repo git.Repository, unit *domain.CommitUnit, message domain.CommitMessage, opts git.CommitOptions) *CommitCommand {
	return &CommitCommand{
		repo:    repo,
		unit:    unit,
		message: message,
		opts:    opts,
		stage:   NewStageCommand(repo, unit),
	}
}

// Kind returns KindCommit.
func (c *CommitCommand) Kind() Kind { return KindCommit }

// Target returns the unit.
func (c *CommitCommand) Target() *domain.CommitUnit { return c.unit }

// CanUndo returns true.
func (c *CommitCommand) CanUndo() bool { return true }

// CommitID returns the id of the created commit.
func (c *CommitCommand) CommitID() string { return c.commitID }

// Message returns the commit message.
func (c *CommitCommand) Message() domain.CommitMessage { return c.message }

// Execute captures HEAD, stages the unit, and commits. A failed commit
// unstages what was staged for it.
func (c *CommitCommand) Execute(ctx context.Context) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	head, err := c.repo.ResolveRef(ctx, "HEAD")
	if err != nil {
		return c.finish(repoError("resolve HEAD", c.unit, err))
	}
	branch, err := c.repo.CurrentBranch(ctx)
	if err != nil {
		return c.finish(repoError("current branch", c.unit, err))
	}
	c.head, c.branch = head, branch

	if err := c.stage.Execute(ctx); err != nil {
		return c.finish(err)
	}

	id, err := c.repo.Commit(ctx, c.message.String(), c.opts)
	if err != nil {
		// Leave the index as it was; the unit was not committed.
		_ = c.stage.Undo(context.WithoutCancel(ctx))
		return c.finish(repoError("commit", c.unit, err))
	}
	c.commitID = id
	return c.finish(nil)
}

// Undo moves the branch back to the captured HEAD with a soft reset and
// unstages the unit, leaving the work tree untouched. A commit made on an
// unborn branch is undone by deleting the branch ref.
func (c *CommitCommand) Undo(ctx context.Context) error {
	if c.Status() != StatusSucceeded {
		return fmt.Errorf("commit %s: %w", c.unit.Scope, gserrors.ErrNothingToUndo)
	}

	if c.head == "" {
		if err := c.repo.DeleteRef(ctx, "refs/heads/"+c.branch); err != nil {
			return repoError("delete ref", c.unit, err)
		}
	} else if err := c.repo.ResetSoft(ctx, c.head); err != nil {
		return repoError("reset", c.unit, err)
	}

	if err := c.repo.Unstage(ctx, stagePaths(c.unit)); err != nil {
		return repoError("unstage", c.unit, err)
	}
	c.status = StatusUndone
	return nil
}

var _ Command = (*CommitCommand)(nil)
