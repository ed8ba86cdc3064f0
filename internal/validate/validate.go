// Package validate enforces commit message format through an ordered chain
// of rules. Each rule accepts, rewrites, or rejects a draft; later rules see
// earlier corrections. Running the chain on a message it already accepted
// leaves the message unchanged.
package validate

import (
	"fmt"

	"github.com/mrz1836/gitsmart/internal/constants"
	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

// Rule names, in chain order.
const (
	RuleEmptySubject       = "empty-subject"
	RuleSubjectLength      = "subject-length"
	RuleTrailingPeriod     = "trailing-period"
	RuleConventionalFormat = "conventional-format"
	RuleBlankLine          = "blank-line"
	RuleBodyLineLength     = "body-line-length"
)

// Policies for over-long subjects and body lines.
const (
	PolicyTruncate = "truncate"
	PolicyWrap     = "wrap"
	PolicyReject   = "reject"
)

// Options configures the chain.
type Options struct {
	Style            domain.Style
	SubjectMaxLength int
	BodyLineWidth    int

	// SubjectPolicy is PolicyTruncate or PolicyReject.
	SubjectPolicy string

	// BodyPolicy is PolicyWrap or PolicyReject.
	BodyPolicy string
}

// DefaultOptions returns conventional style with 72 column limits that
// truncate subjects and wrap bodies.
func DefaultOptions() Options {
	return Options{
		Style:            domain.StyleConventional,
		SubjectMaxLength: constants.DefaultSubjectMaxLength,
		BodyLineWidth:    constants.DefaultBodyLineWidth,
		SubjectPolicy:    PolicyTruncate,
		BodyPolicy:       PolicyWrap,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Style == "" {
		o.Style = d.Style
	}
	if o.SubjectMaxLength <= 0 {
		o.SubjectMaxLength = d.SubjectMaxLength
	}
	if o.BodyLineWidth <= 0 {
		o.BodyLineWidth = d.BodyLineWidth
	}
	if o.SubjectPolicy == "" {
		o.SubjectPolicy = d.SubjectPolicy
	}
	if o.BodyPolicy == "" {
		o.BodyPolicy = d.BodyPolicy
	}
	return o
}

// RuleFunc inspects a draft and returns it, possibly rewritten, or a
// rejection reason.
type RuleFunc func(msg domain.CommitMessage, opts Options) (domain.CommitMessage, error)

// Rule is a named step of the chain.
type Rule struct {
	Name  string
	Apply RuleFunc
}

// ValidationError reports the rule that rejected a draft.
type ValidationError struct {
	Rule   string
	Draft  domain.CommitMessage
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: rule %s: %s", gserrors.ErrValidation, e.Rule, e.Reason)
}

// Unwrap returns ErrValidation so callers can use errors.Is.
func (e *ValidationError) Unwrap() error {
	return gserrors.ErrValidation
}

// Chain is the fixed, ordered sequence of rules.
type Chain struct {
	rules []Rule
	opts  Options
}

// DefaultRules returns the rules in their contractual order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: RuleEmptySubject, Apply: emptySubject},
		{Name: RuleSubjectLength, Apply: subjectLength},
		{Name: RuleTrailingPeriod, Apply: trailingPeriod},
		{Name: RuleConventionalFormat, Apply: conventionalFormat},
		{Name: RuleBlankLine, Apply: blankLine},
		{Name: RuleBodyLineLength, Apply: bodyLineLength},
	}
}

// NewChain creates the default chain. Zero option fields take defaults.
func NewChain(opts Options) *Chain {
	return &Chain{rules: DefaultRules(), opts: opts.withDefaults()}
}

// Options returns the resolved options.
func (c *Chain) Options() Options {
	return c.opts
}

// Names returns the rule names in order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name
	}
	return names
}

// Run applies every rule in order and stops at the first rejection, which is
// returned as a *ValidationError carrying the draft as it entered that rule.
func (c *Chain) Run(msg domain.CommitMessage) (domain.CommitMessage, error) {
	for _, rule := range c.rules {
		next, err := rule.Apply(msg, c.opts)
		if err != nil {
			return msg, &ValidationError{Rule: rule.Name, Draft: msg, Reason: err.Error()}
		}
		msg = next
	}
	return msg, nil
}
