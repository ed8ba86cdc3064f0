// Package message drafts a commit message for each commit unit.
//
// A Strategy asks a language model for the message. Whenever the model
// fails, answers with something unparsable, or produces a generic
// placeholder, the deterministic Descriptor writes the message instead.
// Every draft then passes through the validation chain.
package message

import (
	"context"

	"github.com/mrz1836/gitsmart/internal/domain"
)

// Strategy drafts a message for one unit in a fixed style.
type Strategy interface {
	Style() domain.Style
	Draft(ctx context.Context, unit domain.CommitUnit, mctx Context) (domain.CommitMessage, error)
}

// Context carries per-draft inputs that are not part of the unit.
type Context struct {
	// MaxHeaderLength is the header limit quoted in the prompt.
	MaxHeaderLength int

	// BodyLineWidth is the wrap column quoted in the prompt.
	BodyLineWidth int

	// DiffSummary is a condensed diff of the unit's files (optional).
	DiffSummary string
}

// DraftSource tells which producer wrote a draft.
type DraftSource string

// Draft sources.
const (
	SourceModel      DraftSource = "model"
	SourceDescriptor DraftSource = "descriptor"
)

// Draft is the outcome of drafting and validating one unit.
type Draft struct {
	Unit    domain.CommitUnit
	Message domain.CommitMessage
	Source  DraftSource

	// Regenerated is set when the first draft failed validation and the
	// descriptor produced the final one.
	Regenerated bool

	// Err is the validation error that remained after regeneration.
	// A draft with Err set must not be committed.
	Err error
}

// Valid reports whether the draft passed validation.
func (d Draft) Valid() bool {
	return d.Err == nil
}
