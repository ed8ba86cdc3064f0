package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

//nolint:gochecknoglobals // Cached renderer, built on first use
var (
	glamourRenderer     *glamour.TermRenderer
	glamourRendererOnce sync.Once
)

// markdownWrap is the word-wrap column of rendered markdown.
const markdownWrap = 80

// getGlamourRenderer returns a cached glamour renderer, or nil when it
// cannot be created.
func getGlamourRenderer() *glamour.TermRenderer {
	glamourRendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(markdownWrap),
		)
		if err == nil {
			glamourRenderer = r
		}
	})
	return glamourRenderer
}

// RenderMarkdown renders md for the terminal. The raw markdown is returned
// when rendering fails.
func RenderMarkdown(md string) string {
	r := getGlamourRenderer()
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// PlanMarkdown writes a plan as a Markdown document.
func PlanMarkdown(v PlanView) string {
	var sb strings.Builder
	sb.WriteString("# Commit plan\n\n")
	fmt.Fprintf(&sb, "- Run: `%s`\n", v.RunID)
	fmt.Fprintf(&sb, "- Files: %d\n", v.Files)
	fmt.Fprintf(&sb, "- Style: %s\n", v.Style)
	if v.FallbackReason != "" {
		fmt.Fprintf(&sb, "- Grouping: %s (%s)\n", v.Grouping, v.FallbackReason)
	} else {
		fmt.Fprintf(&sb, "- Grouping: %s\n", v.Grouping)
	}

	for i, c := range v.Commits {
		fmt.Fprintf(&sb, "\n## %d. `%s`\n\n", i+1, c.Header)
		if c.Body != "" {
			sb.WriteString(c.Body)
			sb.WriteString("\n\n")
		}
		for _, f := range c.Files {
			fmt.Fprintf(&sb, "- `%s` %s\n", f.Path, fileDelta(f))
		}
	}

	if len(v.Rejected) > 0 {
		sb.WriteString("\n## Rejected\n")
		for _, r := range v.Rejected {
			fmt.Fprintf(&sb, "\n- `%s`: %s\n", r.Draft, r.Error)
			for _, f := range r.Files {
				fmt.Fprintf(&sb, "  - `%s`\n", f.Path)
			}
		}
	}
	return sb.String()
}

// ReportMarkdown writes a run result as a Markdown document.
func ReportMarkdown(v ReportView) string {
	var sb strings.Builder
	sb.WriteString("# Commit report\n\n")
	if v.RunID != "" {
		fmt.Fprintf(&sb, "- Run: `%s`\n", v.RunID)
	}
	if v.Success {
		sb.WriteString("- Result: success\n")
	} else {
		sb.WriteString("- Result: failed\n")
	}
	if v.Error != "" {
		fmt.Fprintf(&sb, "- Error: %s\n", v.Error)
	}

	if len(v.Units) > 0 {
		sb.WriteString("\n## Commits\n\n")
		sb.WriteString("| Outcome | Commit | Header |\n")
		sb.WriteString("| --- | --- | --- |\n")
		for _, u := range v.Units {
			id := "-"
			if u.CommitID != "" {
				id = "`" + shortID(u.CommitID) + "`"
			}
			fmt.Fprintf(&sb, "| %s | %s | `%s` |\n", u.Outcome, id, u.Header)
		}
		for _, u := range v.Units {
			if u.Error == "" {
				continue
			}
			fmt.Fprintf(&sb, "\n- `%s`: %s\n", u.Header, u.Error)
			for _, f := range u.Files {
				fmt.Fprintf(&sb, "  - `%s`\n", f)
			}
		}
	}

	if len(v.Steps) > 0 {
		sb.WriteString("\n## Steps\n\n")
		for _, st := range v.Steps {
			fmt.Fprintf(&sb, "- %s `%s`: %s", st.Kind, st.Target, st.Outcome)
			if st.Error != "" {
				fmt.Fprintf(&sb, " (%s)", st.Error)
			}
			sb.WriteString("\n")
		}
	}

	if len(v.Rejected) > 0 {
		sb.WriteString("\n## Not committed\n\n")
		for _, r := range v.Rejected {
			fmt.Fprintf(&sb, "- `%s`: %s\n", r.Draft, r.Error)
		}
	}

	var notes []string
	if v.Canceled {
		notes = append(notes, "Run canceled; remaining units were not attempted.")
	}
	if v.RolledBack {
		notes = append(notes, "Applied commands were rolled back.")
	}
	for _, u := range v.Unsupported {
		notes = append(notes, "Cannot undo "+u+".")
	}
	if v.UndoError != "" {
		notes = append(notes, "Rollback incomplete: "+v.UndoError)
	}
	if len(v.PriorStaged) > 0 {
		verb := "unstaged"
		if v.Restaged {
			verb = "staged again"
		}
		notes = append(notes, fmt.Sprintf("Previously staged paths were %s: `%s`", verb, strings.Join(v.PriorStaged, "`, `")))
	}
	if len(notes) > 0 {
		sb.WriteString("\n## Notes\n\n")
		for _, n := range notes {
			sb.WriteString("- " + n + "\n")
		}
	}
	return sb.String()
}

func fileDelta(f FileView) string {
	switch {
	case f.Binary:
		return "(" + f.Kind + ", binary)"
	case f.OldPath != "":
		return fmt.Sprintf("(%s from %s, +%d/-%d)", f.Kind, f.OldPath, f.Additions, f.Deletions)
	default:
		return fmt.Sprintf("(%s, +%d/-%d)", f.Kind, f.Additions, f.Deletions)
	}
}
