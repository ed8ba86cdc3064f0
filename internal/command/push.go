package command

import (
	"context"
	"fmt"

	"github.com/mrz1836/gitsmart/internal/ctxutil"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
	"github.com/mrz1836/gitsmart/internal/git"
)

// PushCommand pushes a branch to a remote. Pushes cannot be undone.
type PushCommand struct {
	state
	repo   git.Repository
	remote string
	branch string
}

// NewPushCommand creates a PushCommand. An empty branch pushes the current
// branch.
func NewPushCommand(repo git.Repository, remote, branch string) *PushCommand {
	return &PushCommand{repo: repo, remote: remote, branch: branch}
}

// Kind returns KindPush.
func (c *PushCommand) Kind() Kind { return KindPush }

// Target returns nil.
func (c *PushCommand) Target() *domain.CommitUnit { return nil }

// CanUndo returns false.
func (c *PushCommand) CanUndo() bool { return false }

// Ref returns remote/branch.
func (c *PushCommand) Ref() string { return c.remote + "/" + c.branch }

// Execute pushes, setting the upstream when the branch has none.
func (c *PushCommand) Execute(ctx context.Context) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	ok, err := c.repo.RemoteExists(ctx, c.remote)
	if err != nil {
		return c.finish(repoError("push", nil, err))
	}
	if !ok {
		return c.finish(repoError("push", nil,
			fmt.Errorf("remote %q: %w: %w", c.remote, gserrors.ErrRepository, gserrors.ErrMissingRemote)))
	}

	if c.branch == "" {
		if c.branch, err = c.repo.CurrentBranch(ctx); err != nil {
			return c.finish(repoError("push", nil, err))
		}
	}

	tracked, err := c.repo.HasUpstream(ctx, c.branch)
	if err != nil {
		return c.finish(repoError("push", nil, err))
	}
	if err := c.repo.Push(ctx, c.remote, c.branch, !tracked); err != nil {
		return c.finish(repoError("push "+c.Ref(), nil, err))
	}
	return c.finish(nil)
}

// Undo always returns ErrUndoUnsupported.
func (c *PushCommand) Undo(_ context.Context) error {
	return fmt.Errorf("push %s: %w", c.Ref(), gserrors.ErrUndoUnsupported)
}

var _ Command = (*PushCommand)(nil)
