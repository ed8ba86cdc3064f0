package smartcommit

import (
	"errors"

	"github.com/mrz1836/gitsmart/internal/analyze"
	"github.com/mrz1836/gitsmart/internal/command"
	"github.com/mrz1836/gitsmart/internal/domain"
	"github.com/mrz1836/gitsmart/internal/message"
	"github.com/mrz1836/gitsmart/internal/validate"
)

// PlannedCommit is a unit with the message it will be committed with.
type PlannedCommit struct {
	Unit        domain.CommitUnit
	Message     domain.CommitMessage
	Source      message.DraftSource
	Regenerated bool
}

// DraftFailure is a unit whose message could not be validated. It is
// reported and never committed.
type DraftFailure struct {
	Unit  domain.CommitUnit
	Draft domain.CommitMessage
	Rule  string
	Err   error
}

// Plan is the outcome of collecting, grouping, and drafting, before any
// repository mutation.
type Plan struct {
	RunID    string
	Style    domain.Style
	Grouping analyze.Source
	Changes  int
	Commits  []PlannedCommit
	Failures []DraftFailure
}

// Empty reports whether there was nothing to commit.
func (p *Plan) Empty() bool {
	return p.Changes == 0
}

// Items returns the planned commits as executor items.
func (p *Plan) Items() []command.Item {
	items := make([]command.Item, len(p.Commits))
	for i, c := range p.Commits {
		items[i] = command.Item{Unit: c.Unit, Message: c.Message}
	}
	return items
}

func newPlan(runID string, style domain.Style, source analyze.Source, changes int, drafts []message.Draft) *Plan {
	p := &Plan{RunID: runID, Style: style, Grouping: source, Changes: changes}
	for _, d := range drafts {
		if d.Valid() {
			p.Commits = append(p.Commits, PlannedCommit{
				Unit:        d.Unit,
				Message:     d.Message,
				Source:      d.Source,
				Regenerated: d.Regenerated,
			})
			continue
		}

		failure := DraftFailure{Unit: d.Unit, Draft: d.Message, Err: d.Err}
		var verr *validate.ValidationError
		if errors.As(d.Err, &verr) {
			failure.Rule = verr.Rule
			failure.Draft = verr.Draft
		}
		p.Failures = append(p.Failures, failure)
	}
	return p
}
