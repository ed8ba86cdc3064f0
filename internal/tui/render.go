package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/gitsmart/internal/command"
	"github.com/mrz1836/gitsmart/internal/smartcommit"
)

// shortIDLength is how many characters of a commit id are shown.
const shortIDLength = 8

// Renderer writes plans and reports in one format.
type Renderer struct {
	w      io.Writer
	format Format
	styles *OutputStyles
}

// NewRenderer creates a Renderer writing to w.
func NewRenderer(w io.Writer, format Format) *Renderer {
	if format == FormatText || format == FormatMarkdown {
		CheckNoColor()
	}
	return &Renderer{w: w, format: format, styles: NewOutputStyles()}
}

// Format returns the output format.
func (r *Renderer) Format() Format {
	return r.format
}

// Plan writes plan.
func (r *Renderer) Plan(plan *smartcommit.Plan) error {
	v := NewPlanView(plan)
	switch r.format {
	case FormatJSON:
		return r.json(v)
	case FormatYAML:
		return r.yaml(v)
	case FormatMarkdown:
		_, err := io.WriteString(r.w, RenderMarkdown(PlanMarkdown(v)))
		return err
	case FormatText:
	}
	_, err := io.WriteString(r.w, r.planText(v))
	return err
}

// Report writes the outcome of a run. err is the error the run returned.
func (r *Renderer) Report(result *smartcommit.Result, err error) error {
	v := NewReportView(result, err)
	switch r.format {
	case FormatJSON:
		return r.json(v)
	case FormatYAML:
		return r.yaml(v)
	case FormatMarkdown:
		_, werr := io.WriteString(r.w, RenderMarkdown(ReportMarkdown(v)))
		return werr
	case FormatText:
	}
	_, werr := io.WriteString(r.w, r.reportText(v))
	return werr
}

func (r *Renderer) json(v any) error {
	encoder := json.NewEncoder(r.w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func (r *Renderer) yaml(v any) error {
	encoder := yaml.NewEncoder(r.w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

func (r *Renderer) planText(v PlanView) string {
	s := r.styles
	var sb strings.Builder

	grouping := v.Grouping
	if v.FallbackReason != "" {
		grouping += " (" + v.FallbackReason + ")"
	}
	sb.WriteString(s.Header.Render(fmt.Sprintf("Commit plan: %d files in %d commits", v.Files, len(v.Commits))))
	sb.WriteString("\n")
	sb.WriteString(s.Dim.Render(fmt.Sprintf("run %s · style %s · grouping %s", v.RunID, v.Style, grouping)))
	sb.WriteString("\n")

	for i, c := range v.Commits {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%2d. %s", i+1, StyleBold.Render(c.Header)))
		if c.Regenerated {
			sb.WriteString(s.Warning.Render("  (regenerated)"))
		}
		sb.WriteString("\n")
		for _, line := range nonEmptyLines(c.Body) {
			sb.WriteString("    " + s.Dim.Render(line) + "\n")
		}
		for _, f := range c.Files {
			sb.WriteString("    " + s.Info.Render("• "+f.Path) + " " + s.Dim.Render(fileDelta(f)) + "\n")
		}
	}

	if len(v.Rejected) > 0 {
		sb.WriteString("\n")
		sb.WriteString(s.Error.Render(fmt.Sprintf("%d unit(s) will not be committed:", len(v.Rejected))))
		sb.WriteString("\n")
		for _, rej := range v.Rejected {
			sb.WriteString("  ✗ " + rej.Draft + "\n")
			sb.WriteString("    " + s.Dim.Render(rej.Error) + "\n")
			for _, f := range rej.Files {
				sb.WriteString("    • " + f.Path + "\n")
			}
		}
	}
	return sb.String()
}

func (r *Renderer) reportText(v ReportView) string {
	s := r.styles
	var sb strings.Builder

	for _, u := range v.Units {
		o := outcomeOf(u.Outcome)
		line := OutcomeIcon(o) + " "
		if u.CommitID != "" {
			line += shortID(u.CommitID) + " "
		}
		line += u.Header
		if o != command.OutcomeSucceeded {
			line += " [" + u.Outcome + "]"
		}
		sb.WriteString(s.Outcome(o).Render(line) + "\n")
		if u.Error != "" {
			sb.WriteString("    " + s.Dim.Render(u.Error) + "\n")
			sb.WriteString("    " + s.Dim.Render("files: "+strings.Join(u.Files, ", ")) + "\n")
		}
	}

	for _, st := range v.Steps {
		o := outcomeOf(st.Outcome)
		sb.WriteString(s.Outcome(o).Render(fmt.Sprintf("%s %s %s [%s]", OutcomeIcon(o), st.Kind, st.Target, st.Outcome)) + "\n")
		if st.Error != "" {
			sb.WriteString("    " + s.Dim.Render(st.Error) + "\n")
		}
	}

	for _, rej := range v.Rejected {
		sb.WriteString(s.Error.Render("✗ not committed: "+rej.Draft) + "\n")
		sb.WriteString("    " + s.Dim.Render(rej.Error) + "\n")
	}

	if v.Canceled {
		sb.WriteString(s.Warning.Render("⚠ run canceled; remaining units were not attempted") + "\n")
	}
	if v.RolledBack {
		sb.WriteString(s.Warning.Render("↺ applied commands were rolled back") + "\n")
	}
	for _, u := range v.Unsupported {
		sb.WriteString(s.Warning.Render("⚠ cannot undo "+u) + "\n")
	}
	if v.UndoError != "" {
		sb.WriteString(s.Error.Render("✗ rollback incomplete: "+v.UndoError) + "\n")
	}
	if len(v.PriorStaged) > 0 {
		msg := "previously staged paths were unstaged: "
		if v.Restaged {
			msg = "previously staged paths were staged again: "
		}
		sb.WriteString(s.Dim.Render(msg+strings.Join(v.PriorStaged, ", ")) + "\n")
	}
	return sb.String()
}

func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
