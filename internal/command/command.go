// Package command applies planned commits to a repository as reversible
// commands.
//
// Each Command captures what it needs to undo itself immediately before it
// mutates the repository. The Executor runs commands strictly in sequence,
// keeps the executed ones in a per-run history, and can unwind that history
// in reverse order when a run fails.
package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrz1836/gitsmart/internal/domain"
)

// Kind identifies a command type.
type Kind string

// Command kinds.
const (
	KindStage  Kind = "stage"
	KindCommit Kind = "commit"
	KindPush   Kind = "push"
	KindMerge  Kind = "merge"
)

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// Status is the lifecycle state of a command.
type Status string

// Command statuses.
const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusUndone    Status = "undone"
)

// String returns the status name.
func (s Status) String() string {
	return string(s)
}

// Command is one reversible repository operation.
type Command interface {
	Kind() Kind

	// Target returns the unit the command applies, or nil for push and merge.
	Target() *domain.CommitUnit

	// Execute performs the operation.
	Execute(ctx context.Context) error

	// Undo reverses a successful Execute. It returns ErrUndoUnsupported when
	// CanUndo is false and ErrNothingToUndo when Execute never succeeded.
	Undo(ctx context.Context) error

	CanUndo() bool
	Status() Status
}

// RepositoryError is a failed repository operation together with the files
// of the unit it was applying.
type RepositoryError struct {
	Op    string
	Files []string
	Err   error
}

// Error implements error.
func (e *RepositoryError) Error() string {
	if len(e.Files) == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, strings.Join(e.Files, ", "), e.Err)
}

// Unwrap returns the underlying error.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func repoError(op string, unit *domain.CommitUnit, err error) error {
	re := &RepositoryError{Op: op, Err: err}
	if unit != nil {
		re.Files = unit.Paths()
	}
	return re
}

// state holds the status shared by all commands.
type state struct {
	status Status
}

func (s *state) Status() Status {
	if s.status == "" {
		return StatusPending
	}
	return s.status
}

func (s *state) finish(err error) error {
	if err != nil {
		s.status = StatusFailed
		return err
	}
	s.status = StatusSucceeded
	return nil
}
