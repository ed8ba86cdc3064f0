package command

import (
	"github.com/mrz1836/gitsmart/internal/domain"
)

// Outcome is the result of one planned step.
type Outcome string

// Outcomes.
const (
	OutcomeSucceeded    Outcome = "succeeded"
	OutcomeFailed       Outcome = "failed"
	OutcomeNotAttempted Outcome = "not-attempted"
	OutcomeUndone       Outcome = "undone"
)

// UnitResult is the outcome of committing one unit.
type UnitResult struct {
	Unit     domain.CommitUnit
	Message  domain.CommitMessage
	Outcome  Outcome
	CommitID string
	Err      error
}

// StepResult is the outcome of a push or merge.
type StepResult struct {
	Kind    Kind
	Target  string
	Outcome Outcome
	Err     error
}

// Report summarizes an executor run.
type Report struct {
	Units []UnitResult
	Steps []StepResult

	// Err is the failure that halted the run, if any.
	Err error

	// Canceled is set when the context was canceled before every unit ran.
	Canceled bool

	// RolledBack is set when executed commands were unwound.
	RolledBack bool

	// UndoErr aggregates undo failures during rollback.
	UndoErr error

	// Unsupported lists commands that could not be undone during rollback.
	Unsupported []string

	// PriorStaged lists the paths that were staged before the run. The
	// executor clears the index before the first commit.
	PriorStaged []string

	// Restaged is set when rollback staged PriorStaged again.
	Restaged bool
}

// Failed reports whether the run halted before completing.
func (r *Report) Failed() bool {
	return r.Err != nil
}

// Count returns the number of units with outcome o.
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, u := range r.Units {
		if u.Outcome == o {
			n++
		}
	}
	return n
}

// CommitIDs returns the ids of commits that remain in the repository.
func (r *Report) CommitIDs() []string {
	ids := make([]string, 0, len(r.Units))
	for _, u := range r.Units {
		if u.Outcome == OutcomeSucceeded && u.CommitID != "" {
			ids = append(ids, u.CommitID)
		}
	}
	return ids
}
