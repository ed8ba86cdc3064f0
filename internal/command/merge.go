package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/gitsmart/internal/ctxutil"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
	"github.com/mrz1836/gitsmart/internal/git"
)

// MergeCommand merges the current branch into the main branch and returns
// to the current branch.
type MergeCommand struct {
	state
	repo   git.Repository
	remote string
	main   string

	origin  string
	mainRef string
	created bool
	noop    bool
}

// NewMergeCommand creates a MergeCommand. The main branch is created from
// remote/main, or from the current branch, when it does not exist locally.
func NewMergeCommand(repo git.Repository, remote, mainBranch string) *MergeCommand {
	return &MergeCommand{repo: repo, remote: remote, main: mainBranch}
}

// Kind returns KindMerge.
func (c *MergeCommand) Kind() Kind { return KindMerge }

// Target returns nil.
func (c *MergeCommand) Target() *domain.CommitUnit { return nil }

// CanUndo returns true.
func (c *MergeCommand) CanUndo() bool { return true }

// Branch returns the main branch name.
func (c *MergeCommand) Branch() string { return c.main }

// Skipped reports whether Execute found the main branch already checked out.
func (c *MergeCommand) Skipped() bool { return c.noop }

// Execute merges with --no-edit. A conflicting merge is aborted and the
// original branch checked out again before ErrMergeConflict is returned.
func (c *MergeCommand) Execute(ctx context.Context) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	origin, err := c.repo.CurrentBranch(ctx)
	if err != nil {
		return c.finish(repoError("merge", nil, err))
	}
	c.origin = origin
	if origin == c.main {
		c.noop = true
		return c.finish(nil)
	}

	mainRef, err := c.repo.ResolveRef(ctx, "refs/heads/"+c.main)
	if err != nil {
		return c.finish(repoError("merge", nil, err))
	}
	c.mainRef = mainRef

	if mainRef == "" {
		start, startErr := c.startPoint(ctx)
		if startErr != nil {
			return c.finish(repoError("merge", nil, startErr))
		}
		if err = c.repo.CreateBranch(ctx, c.main, start); err != nil {
			return c.finish(repoError("create branch "+c.main, nil, err))
		}
		c.created = true
	}

	if err = c.repo.Checkout(ctx, c.main); err != nil {
		return c.finish(repoError("checkout "+c.main, nil, err))
	}

	if mergeErr := c.repo.Merge(ctx, origin); mergeErr != nil {
		if errors.Is(mergeErr, gserrors.ErrMergeConflict) {
			if abortErr := c.repo.MergeAbort(ctx); abortErr != nil {
				mergeErr = fmt.Errorf("%w (abort failed: %w)", mergeErr, abortErr)
			}
		}
		if backErr := c.repo.Checkout(ctx, origin); backErr != nil {
			mergeErr = fmt.Errorf("%w (checkout %s failed: %w)", mergeErr, origin, backErr)
		}
		return c.finish(repoError("merge "+origin+" into "+c.main, nil, mergeErr))
	}

	if err = c.repo.Checkout(ctx, origin); err != nil {
		return c.finish(repoError("checkout "+origin, nil, err))
	}
	return c.finish(nil)
}

func (c *MergeCommand) startPoint(ctx context.Context) (string, error) {
	remoteRef := "refs/remotes/" + c.remote + "/" + c.main
	id, err := c.repo.ResolveRef(ctx, remoteRef)
	if err != nil {
		return "", err
	}
	if id != "" {
		return c.remote + "/" + c.main, nil
	}
	return c.origin, nil
}

// Undo points the main branch back at its captured commit, or deletes it
// when Execute created it. The work tree is not touched.
func (c *MergeCommand) Undo(ctx context.Context) error {
	if c.Status() != StatusSucceeded {
		return fmt.Errorf("merge into %s: %w", c.main, gserrors.ErrNothingToUndo)
	}

	ref := "refs/heads/" + c.main
	switch {
	case c.noop:
	case c.created:
		if err := c.repo.DeleteRef(ctx, ref); err != nil {
			return repoError("delete ref", nil, err)
		}
	default:
		if err := c.repo.UpdateRef(ctx, ref, c.mainRef); err != nil {
			return repoError("update ref", nil, err)
		}
	}
	c.status = StatusUndone
	return nil
}

var _ Command = (*MergeCommand)(nil)
