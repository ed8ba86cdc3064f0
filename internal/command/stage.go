package command

import (
	"context"
	"fmt"

	"github.com/mrz1836/gitsmart/internal/ctxutil"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
	"github.com/mrz1836/gitsmart/internal/git"
)

// StageCommand stages the paths of one unit, including the old path of a
// rename.
type StageCommand struct {
	state
	repo git.Repository
	unit *domain.CommitUnit

	// added are the paths this command moved into the index.
	added []string
}

// NewStageCommand creates a StageCommand for unit.
func NewStageCommand(repo git.Repository, unit *domain.CommitUnit) *StageCommand {
	return &StageCommand{repo: repo, unit: unit}
}

// Kind returns KindStage.
func (c *StageCommand) Kind() Kind { return KindStage }

// Target returns the unit.
func (c *StageCommand) Target() *domain.CommitUnit { return c.unit }

// CanUndo returns true.
func (c *StageCommand) CanUndo() bool { return true }

// Execute records which paths are already staged, then stages the unit.
func (c *StageCommand) Execute(ctx context.Context) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	paths := stagePaths(c.unit)
	before, err := c.repo.StagedPaths(ctx)
	if err != nil {
		return c.finish(repoError("stage", c.unit, err))
	}
	already := make(map[string]bool, len(before))
	for _, p := range before {
		already[p] = true
	}

	if err := c.repo.Stage(ctx, paths); err != nil {
		return c.finish(repoError("stage", c.unit, err))
	}

	c.added = c.added[:0]
	for _, p := range paths {
		if !already[p] {
			c.added = append(c.added, p)
		}
	}
	return c.finish(nil)
}

// Undo unstages the paths this command staged. Paths that were staged
// before Execute stay staged.
func (c *StageCommand) Undo(ctx context.Context) error {
	if c.Status() != StatusSucceeded {
		return fmt.Errorf("stage %s: %w", c.unit.Scope, gserrors.ErrNothingToUndo)
	}
	if err := c.repo.Unstage(ctx, c.added); err != nil {
		return repoError("unstage", c.unit, err)
	}
	c.status = StatusUndone
	return nil
}

// stagePaths returns the unit's paths plus the source path of each rename.
func stagePaths(unit *domain.CommitUnit) []string {
	paths := make([]string, 0, len(unit.Files))
	for _, fc := range unit.Files {
		paths = append(paths, fc.Path)
		if fc.Kind == domain.ChangeRenamed && fc.OldPath != "" {
			paths = append(paths, fc.OldPath)
		}
	}
	return paths
}

var _ Command = (*StageCommand)(nil)
