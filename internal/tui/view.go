package tui

import (
	"github.com/mrz1836/gitsmart/internal/command"
	"github.com/mrz1836/gitsmart/internal/domain"
	"github.com/mrz1836/gitsmart/internal/smartcommit"
)

// FileView is one file of a unit.
type FileView struct {
	Path      string `json:"path" yaml:"path"`
	OldPath   string `json:"old_path,omitempty" yaml:"old_path,omitempty"`
	Kind      string `json:"kind" yaml:"kind"`
	Additions int    `json:"additions" yaml:"additions"`
	Deletions int    `json:"deletions" yaml:"deletions"`
	Binary    bool   `json:"binary,omitempty" yaml:"binary,omitempty"`
}

// CommitView is a planned commit.
type CommitView struct {
	Header      string     `json:"header" yaml:"header"`
	Body        string     `json:"body,omitempty" yaml:"body,omitempty"`
	Footer      string     `json:"footer,omitempty" yaml:"footer,omitempty"`
	Scope       string     `json:"scope" yaml:"scope"`
	Rationale   string     `json:"rationale,omitempty" yaml:"rationale,omitempty"`
	Source      string     `json:"source" yaml:"source"`
	Regenerated bool       `json:"regenerated,omitempty" yaml:"regenerated,omitempty"`
	Files       []FileView `json:"files" yaml:"files"`
}

// RejectedView is a unit whose draft failed validation.
type RejectedView struct {
	Draft string     `json:"draft" yaml:"draft"`
	Rule  string     `json:"rule,omitempty" yaml:"rule,omitempty"`
	Error string     `json:"error" yaml:"error"`
	Files []FileView `json:"files" yaml:"files"`
}

// PlanView is the serializable form of a plan.
type PlanView struct {
	RunID          string         `json:"run_id" yaml:"run_id"`
	Style          string         `json:"style" yaml:"style"`
	Grouping       string         `json:"grouping" yaml:"grouping"`
	FallbackReason string         `json:"fallback_reason,omitempty" yaml:"fallback_reason,omitempty"`
	Files          int            `json:"files" yaml:"files"`
	Commits        []CommitView   `json:"commits" yaml:"commits"`
	Rejected       []RejectedView `json:"rejected,omitempty" yaml:"rejected,omitempty"`
}

// UnitView is the outcome of one unit.
type UnitView struct {
	Header   string   `json:"header" yaml:"header"`
	Outcome  string   `json:"outcome" yaml:"outcome"`
	CommitID string   `json:"commit_id,omitempty" yaml:"commit_id,omitempty"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
	Files    []string `json:"files" yaml:"files"`
}

// StepView is the outcome of a push or merge.
type StepView struct {
	Kind    string `json:"kind" yaml:"kind"`
	Target  string `json:"target" yaml:"target"`
	Outcome string `json:"outcome" yaml:"outcome"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ReportView is the serializable form of a run result.
type ReportView struct {
	RunID       string         `json:"run_id" yaml:"run_id"`
	Success     bool           `json:"success" yaml:"success"`
	Units       []UnitView     `json:"units" yaml:"units"`
	Steps       []StepView     `json:"steps,omitempty" yaml:"steps,omitempty"`
	Rejected    []RejectedView `json:"rejected,omitempty" yaml:"rejected,omitempty"`
	Canceled    bool           `json:"canceled,omitempty" yaml:"canceled,omitempty"`
	RolledBack  bool           `json:"rolled_back,omitempty" yaml:"rolled_back,omitempty"`
	UndoError   string         `json:"undo_error,omitempty" yaml:"undo_error,omitempty"`
	Unsupported []string       `json:"undo_unsupported,omitempty" yaml:"undo_unsupported,omitempty"`
	PriorStaged []string       `json:"prior_staged,omitempty" yaml:"prior_staged,omitempty"`
	Restaged    bool           `json:"restaged,omitempty" yaml:"restaged,omitempty"`
	Error       string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewPlanView converts a plan.
func NewPlanView(plan *smartcommit.Plan) PlanView {
	v := PlanView{
		RunID:          plan.RunID,
		Style:          plan.Style.String(),
		Grouping:       string(plan.Grouping.Kind),
		FallbackReason: plan.Grouping.Reason,
		Files:          plan.Changes,
		Commits:        make([]CommitView, 0, len(plan.Commits)),
	}
	for _, c := range plan.Commits {
		v.Commits = append(v.Commits, CommitView{
			Header:      c.Message.Header(),
			Body:        c.Message.Body,
			Footer:      c.Message.Footer,
			Scope:       c.Unit.Scope,
			Rationale:   c.Unit.Rationale,
			Source:      string(c.Source),
			Regenerated: c.Regenerated,
			Files:       fileViews(c.Unit),
		})
	}
	v.Rejected = rejectedViews(plan.Failures)
	return v
}

// NewReportView converts a run result. err is the error returned by the
// run, if any.
func NewReportView(result *smartcommit.Result, err error) ReportView {
	v := ReportView{Success: err == nil, Units: []UnitView{}}
	if err != nil {
		v.Error = err.Error()
	}
	if result == nil {
		return v
	}
	if result.Plan != nil {
		v.RunID = result.Plan.RunID
		v.Rejected = rejectedViews(result.Plan.Failures)
	}

	r := result.Report
	if r == nil {
		return v
	}
	for _, u := range r.Units {
		uv := UnitView{
			Header:   u.Message.Header(),
			Outcome:  string(u.Outcome),
			CommitID: u.CommitID,
			Files:    u.Unit.Paths(),
		}
		if u.Err != nil {
			uv.Error = u.Err.Error()
		}
		v.Units = append(v.Units, uv)
	}
	for _, s := range r.Steps {
		sv := StepView{Kind: s.Kind.String(), Target: s.Target, Outcome: string(s.Outcome)}
		if s.Err != nil {
			sv.Error = s.Err.Error()
		}
		v.Steps = append(v.Steps, sv)
	}
	v.Canceled = r.Canceled
	v.RolledBack = r.RolledBack
	v.Unsupported = r.Unsupported
	v.PriorStaged = r.PriorStaged
	v.Restaged = r.Restaged
	if r.UndoErr != nil {
		v.UndoError = r.UndoErr.Error()
	}
	return v
}

func fileViews(unit domain.CommitUnit) []FileView {
	out := make([]FileView, len(unit.Files))
	for i, fc := range unit.Files {
		out[i] = FileView{
			Path:      fc.Path,
			OldPath:   fc.OldPath,
			Kind:      fc.Kind.String(),
			Additions: fc.Stats.Additions,
			Deletions: fc.Stats.Deletions,
			Binary:    fc.Stats.Binary,
		}
	}
	return out
}

func rejectedViews(failures []smartcommit.DraftFailure) []RejectedView {
	if len(failures) == 0 {
		return nil
	}
	out := make([]RejectedView, len(failures))
	for i, f := range failures {
		out[i] = RejectedView{
			Draft: f.Draft.Header(),
			Rule:  f.Rule,
			Files: fileViews(f.Unit),
		}
		if f.Err != nil {
			out[i].Error = f.Err.Error()
		}
	}
	return out
}

// outcomeOf maps a view outcome string back to a command outcome.
func outcomeOf(s string) command.Outcome {
	return command.Outcome(s)
}
