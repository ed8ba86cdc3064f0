package domain

import (
	"regexp"
	"strings"
)

// Style selects the commit message format.
type Style string

// Supported commit styles.
const (
	// StyleConventional renders "type(scope): subject" headers.
	StyleConventional Style = "conventional"

	// StyleSimple renders a plain subject line.
	StyleSimple Style = "simple"
)

// String returns the string representation of the Style.
func (s Style) String() string {
	return string(s)
}

// IsValid reports whether s is a supported style.
func (s Style) IsValid() bool {
	return s == StyleConventional || s == StyleSimple
}

// CommitType represents a conventional commit type.
type CommitType string

// Conventional commit types.
const (
	CommitTypeFeat     CommitType = "feat"
	CommitTypeFix      CommitType = "fix"
	CommitTypeDocs     CommitType = "docs"
	CommitTypeStyle    CommitType = "style"
	CommitTypeRefactor CommitType = "refactor"
	CommitTypeTest     CommitType = "test"
	CommitTypeChore    CommitType = "chore"
	CommitTypeBuild    CommitType = "build"
	CommitTypeCI       CommitType = "ci"
	CommitTypePerf     CommitType = "perf"
	CommitTypeRevert   CommitType = "revert"
)

// ValidCommitTypes returns all known conventional commit types.
func ValidCommitTypes() []CommitType {
	return []CommitType{
		CommitTypeFeat,
		CommitTypeFix,
		CommitTypeDocs,
		CommitTypeStyle,
		CommitTypeRefactor,
		CommitTypeTest,
		CommitTypeChore,
		CommitTypeBuild,
		CommitTypeCI,
		CommitTypePerf,
		CommitTypeRevert,
	}
}

// IsValid reports whether t is a known conventional commit type.
func (t CommitType) IsValid() bool {
	for _, v := range ValidCommitTypes() {
		if t == v {
			return true
		}
	}
	return false
}

// String returns the string representation of the CommitType.
func (t CommitType) String() string {
	return string(t)
}

// CommitMessage is a structured commit message.
// Type is empty for messages in the simple style.
type CommitMessage struct {
	Type     CommitType `json:"type,omitempty" yaml:"type,omitempty"`
	Scope    string     `json:"scope,omitempty" yaml:"scope,omitempty"`
	Breaking bool       `json:"breaking,omitempty" yaml:"breaking,omitempty"`
	Subject  string     `json:"subject" yaml:"subject"`
	Body     string     `json:"body,omitempty" yaml:"body,omitempty"`
	Footer   string     `json:"footer,omitempty" yaml:"footer,omitempty"`
}

// Prefix returns the conventional prefix including the trailing ": ",
// or an empty string for a message without a type.
func (m CommitMessage) Prefix() string {
	if m.Type == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(string(m.Type))
	if m.Scope != "" {
		sb.WriteString("(")
		sb.WriteString(m.Scope)
		sb.WriteString(")")
	}
	if m.Breaking {
		sb.WriteString("!")
	}
	sb.WriteString(": ")
	return sb.String()
}

// Header returns the first line of the message.
func (m CommitMessage) Header() string {
	return m.Prefix() + m.Subject
}

// String renders the full message: header, blank line, body, blank line, footer.
func (m CommitMessage) String() string {
	var sb strings.Builder
	sb.WriteString(m.Header())
	if body := strings.TrimSpace(m.Body); body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(body)
	}
	if footer := strings.TrimSpace(m.Footer); footer != "" {
		sb.WriteString("\n\n")
		sb.WriteString(footer)
	}
	return sb.String()
}

// conventionalHeaderRegex matches "type(scope)!: subject" with optional scope and bang.
// An explicit empty scope "type()" does not match.
//
//nolint:gochecknoglobals // Compiled regex for header parsing
var conventionalHeaderRegex = regexp.MustCompile(`^([a-zA-Z]+)(?:\(([^()]+)\))?(!)?:\s*(.*)$`)

// trailerRegex matches git trailer lines such as "Signed-off-by: Name".
//
//nolint:gochecknoglobals // Compiled regex for footer detection
var trailerRegex = regexp.MustCompile(`^(BREAKING CHANGE|[A-Za-z][A-Za-z-]*): .+$`)

// ParseCommitMessage parses raw text into a CommitMessage.
//
// Under the conventional style a header matching "type(scope): subject" is
// split into its parts; any other header becomes the subject with an empty
// type, which validation then rejects. A final paragraph made only of git
// trailers is returned as the footer.
func ParseCommitMessage(text string, style Style) CommitMessage {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(strings.TrimSpace(text), "\n")

	header := strings.TrimSpace(lines[0])
	var msg CommitMessage
	if style == StyleConventional {
		if m := conventionalHeaderRegex.FindStringSubmatch(header); m != nil {
			msg.Type = CommitType(strings.ToLower(m[1]))
			msg.Scope = strings.TrimSpace(m[2])
			msg.Breaking = m[3] == "!"
			msg.Subject = strings.TrimSpace(m[4])
		} else {
			msg.Subject = header
		}
	} else {
		msg.Subject = header
	}

	rest := strings.Trim(strings.Join(lines[1:], "\n"), "\n")
	if rest == "" {
		return msg
	}

	paragraphs := strings.Split(rest, "\n\n")
	last := strings.TrimSpace(paragraphs[len(paragraphs)-1])
	if isTrailerBlock(last) {
		msg.Footer = last
		paragraphs = paragraphs[:len(paragraphs)-1]
	}
	msg.Body = strings.TrimSpace(strings.Join(paragraphs, "\n\n"))
	return msg
}

func isTrailerBlock(paragraph string) bool {
	if paragraph == "" {
		return false
	}
	for _, line := range strings.Split(paragraph, "\n") {
		if !trailerRegex.MatchString(strings.TrimSpace(line)) {
			return false
		}
	}
	return true
}
