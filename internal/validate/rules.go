package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mrz1836/gitsmart/internal/domain"
)

// Rejection reasons returned by the rules. ValidationError carries them as text.
var (
	errEmptySubject   = errors.New("subject is empty")
	errNoRoom         = errors.New("prefix leaves no room for a subject")
	errMissingType    = errors.New("header does not match type(scope): subject")
	errUnknownType    = errors.New("unknown commit type")
	errInvalidScope   = errors.New("scope contains invalid characters")
	errLineTooLong    = errors.New("body line exceeds width")
	errSubjectTooLong = errors.New("header exceeds maximum length")
)

// scopeRegex limits scopes to words joined by ".", "/", or "-".
//
//nolint:gochecknoglobals // Compiled regex for scope validation
var scopeRegex = regexp.MustCompile(`^[\w./-]+$`)

func emptySubject(msg domain.CommitMessage, _ Options) (domain.CommitMessage, error) {
	msg.Subject = strings.TrimSpace(msg.Subject)
	if msg.Subject == "" {
		return msg, errEmptySubject
	}
	return msg, nil
}

func subjectLength(msg domain.CommitMessage, opts Options) (domain.CommitMessage, error) {
	header := utf8.RuneCountInString(msg.Header())
	if header <= opts.SubjectMaxLength {
		return msg, nil
	}
	if opts.SubjectPolicy == PolicyReject {
		return msg, fmt.Errorf("%w: %d > %d", errSubjectTooLong, header, opts.SubjectMaxLength)
	}

	room := opts.SubjectMaxLength - utf8.RuneCountInString(msg.Prefix())
	if room <= 0 {
		return msg, errNoRoom
	}
	msg.Subject = truncateWords(msg.Subject, room)
	if msg.Subject == "" {
		return msg, errNoRoom
	}
	return msg, nil
}

// trailingPeriod strips every trailing run of periods and whitespace, so
// "x. ." ends as "x" in one pass.
func trailingPeriod(msg domain.CommitMessage, _ Options) (domain.CommitMessage, error) {
	msg.Subject = strings.TrimSpace(strings.TrimRightFunc(msg.Subject, func(r rune) bool {
		return r == '.' || unicode.IsSpace(r)
	}))
	if msg.Subject == "" {
		return msg, errEmptySubject
	}
	return msg, nil
}

func conventionalFormat(msg domain.CommitMessage, opts Options) (domain.CommitMessage, error) {
	if opts.Style != domain.StyleConventional {
		return msg, nil
	}
	if msg.Type == "" {
		return msg, errMissingType
	}
	if !msg.Type.IsValid() {
		return msg, fmt.Errorf("%w %q", errUnknownType, msg.Type)
	}
	if msg.Scope != "" && !scopeRegex.MatchString(msg.Scope) {
		return msg, fmt.Errorf("%w: %q", errInvalidScope, msg.Scope)
	}
	return msg, nil
}

// blankLine trims blank lines around the body and footer. Header rendering
// then places exactly one blank line before each.
func blankLine(msg domain.CommitMessage, _ Options) (domain.CommitMessage, error) {
	msg.Body = trimBlankLines(msg.Body)
	msg.Footer = trimBlankLines(msg.Footer)
	return msg, nil
}

func bodyLineLength(msg domain.CommitMessage, opts Options) (domain.CommitMessage, error) {
	if msg.Body == "" {
		return msg, nil
	}
	width := opts.BodyLineWidth

	lines := strings.Split(msg.Body, "\n")
	if opts.BodyPolicy == PolicyReject {
		for i, line := range lines {
			if utf8.RuneCountInString(line) > width && breakable(line) {
				return msg, fmt.Errorf("%w: line %d has %d > %d", errLineTooLong,
					i+1, utf8.RuneCountInString(line), width)
			}
		}
		return msg, nil
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if utf8.RuneCountInString(line) <= width {
			out = append(out, line)
			continue
		}
		out = append(out, wrapLine(line, width)...)
	}
	msg.Body = strings.Join(out, "\n")
	return msg, nil
}

// truncateWords shortens s to at most limit runes, cutting at the last word
// boundary when one exists in the second half of the allowance.
func truncateWords(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := runes[:limit]
	if limit < len(runes) && runes[limit] != ' ' {
		if i := lastSpace(cut); i >= limit/2 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(string(cut), " ,;:-")
}

func lastSpace(r []rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == ' ' {
			return i
		}
	}
	return -1
}

// wrapLine greedily wraps words at width, keeping leading indentation.
// Words longer than width stay on a line of their own.
func wrapLine(line string, width int) []string {
	trimmed := strings.TrimLeft(line, " \t")
	indent := line[:len(line)-len(trimmed)]
	words := strings.Fields(trimmed)
	if len(words) <= 1 {
		return []string{line}
	}

	var (
		out []string
		cur strings.Builder
	)
	cur.WriteString(indent)
	curLen := utf8.RuneCountInString(indent)
	started := false
	for _, w := range words {
		wl := utf8.RuneCountInString(w)
		if started && curLen+1+wl > width {
			out = append(out, cur.String())
			cur.Reset()
			cur.WriteString(indent)
			curLen = utf8.RuneCountInString(indent)
			started = false
		}
		if started {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(w)
		curLen += wl
		started = true
	}
	if started {
		out = append(out, cur.String())
	}
	return out
}

func breakable(line string) bool {
	return len(strings.Fields(line)) > 1
}

func trimBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	for i := start; i < end; i++ {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	return strings.Join(lines[start:end], "\n")
}
