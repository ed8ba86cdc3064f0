// Package git provides the version-control collaborator for gitsmart.
// This file defines the Repository interface used by the collector and the
// command executor.
package git

import (
	"context"

	"github.com/mrz1836/gitsmart/internal/domain"
)

// Repository defines the version-control primitives gitsmart needs.
// All operations run in the repository's working directory and use context
// for cancellation.
type Repository interface {
	// Status returns the working tree status including untracked files.
	Status(ctx context.Context) (*Status, error)

	// NumStat returns per-path line deltas of the working tree against HEAD.
	NumStat(ctx context.Context) (map[string]domain.DiffStats, error)

	// Diff returns the unified diff of paths against HEAD.
	Diff(ctx context.Context, paths []string) (string, error)

	// ResolveRef returns the commit id of ref, or an empty string when the
	// ref does not exist (for example HEAD on an unborn branch).
	ResolveRef(ctx context.Context, ref string) (string, error)

	// CurrentBranch returns the checked out branch.
	// Returns ErrDetachedHead when HEAD is detached.
	CurrentBranch(ctx context.Context) (string, error)

	// BranchExists reports whether a local branch exists.
	BranchExists(ctx context.Context, name string) (bool, error)

	// RemoteExists reports whether a remote is configured.
	RemoteExists(ctx context.Context, name string) (bool, error)

	// HasUpstream reports whether branch has a tracking branch.
	HasUpstream(ctx context.Context, branch string) (bool, error)

	// StagedPaths returns the paths currently staged in the index.
	StagedPaths(ctx context.Context) ([]string, error)

	// ResetIndex unstages everything, leaving the work tree untouched.
	ResetIndex(ctx context.Context) error

	// Stage adds the given paths to the index, including deletions.
	Stage(ctx context.Context, paths []string) error

	// Unstage restores the index entries of paths to HEAD.
	Unstage(ctx context.Context, paths []string) error

	// Commit records the index as a new commit and returns its id.
	Commit(ctx context.Context, message string, opts CommitOptions) (string, error)

	// ResetSoft moves the current branch to rev keeping index and work tree.
	ResetSoft(ctx context.Context, rev string) error

	// UpdateRef points ref at value.
	UpdateRef(ctx context.Context, ref, value string) error

	// DeleteRef removes ref.
	DeleteRef(ctx context.Context, ref string) error

	// CreateBranch creates a branch at start without checking it out.
	CreateBranch(ctx context.Context, name, start string) error

	// Checkout switches to branch.
	Checkout(ctx context.Context, branch string) error

	// Merge merges branch into the current branch.
	// Returns ErrMergeConflict when the merge stops on conflicts.
	Merge(ctx context.Context, branch string) error

	// MergeAbort aborts an in-progress merge.
	MergeAbort(ctx context.Context) error

	// Push pushes branch to remote.
	// If setUpstream is true, sets the upstream tracking reference.
	Push(ctx context.Context, remote, branch string, setUpstream bool) error
}
