package tui

import (
	"fmt"
	"strings"

	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

// Format selects how plans and reports are written.
type Format string

// Output formats.
const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Formats returns the supported formats.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatYAML, FormatMarkdown}
}

// ParseFormat parses a format name. The empty string selects text and
// "md" is accepted for markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case "md":
		return FormatMarkdown, nil
	case FormatText, FormatJSON, FormatYAML, FormatMarkdown:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", gserrors.ErrInvalidOutputFormat, s)
}

// Structured reports whether f is meant for machines rather than people.
func (f Format) Structured() bool {
	return f == FormatJSON || f == FormatYAML
}
