package message

import (
	"fmt"
	"strings"
)

// maxDiffContentLines is the largest diff whose changed lines are quoted in
// a prompt verbatim. Larger diffs contribute per-file counts only.
const maxDiffContentLines = 50

// SummarizeDiff condenses a unified diff into per-file line counts for the
// given paths, followed by the changed lines themselves when the diff is small.
func SummarizeDiff(diff string, paths []string) string {
	if strings.TrimSpace(diff) == "" {
		return ""
	}

	want := make(map[string]bool, len(paths))
	for _, p := range paths {
		want[p] = true
	}

	var (
		summary    strings.Builder
		content    strings.Builder
		current    string
		adds, dels int
		quoted     int
		tooLarge   bool
	)
	flush := func() {
		if current != "" && want[current] {
			fmt.Fprintf(&summary, "  %s: +%d/-%d lines\n", current, adds, dels)
		}
	}

	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git"):
			flush()
			current, adds, dels = diffPath(line), 0, 0
			continue
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"),
			strings.HasPrefix(line, "index "), strings.HasPrefix(line, "@@"):
			continue
		}

		changed := strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-")
		if !changed {
			continue
		}
		if strings.HasPrefix(line, "+") {
			adds++
		} else {
			dels++
		}
		if want[current] && !tooLarge {
			quoted++
			if quoted > maxDiffContentLines {
				tooLarge = true
				continue
			}
			content.WriteString(line)
			content.WriteString("\n")
		}
	}
	flush()

	if !tooLarge && content.Len() > 0 {
		summary.WriteString("\nActual changes:\n")
		summary.WriteString(content.String())
	}
	return strings.TrimRight(summary.String(), "\n")
}

// diffPath extracts the post-image path from a "diff --git a/x b/y" line.
func diffPath(line string) string {
	if i := strings.LastIndex(line, " b/"); i >= 0 {
		return line[i+3:]
	}
	parts := strings.Fields(line)
	if len(parts) >= 4 {
		return strings.TrimPrefix(parts[3], "b/")
	}
	return ""
}
