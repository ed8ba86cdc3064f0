// Package tui renders commit plans and run reports for the terminal.
//
// Text output is styled with Lip Gloss using adaptive colors for light and
// dark terminals. Every status is shown as icon, color, and text together so
// it survives NO_COLOR. Machine-readable output is available as JSON and
// YAML, and plans can be rendered as Markdown.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mrz1836/gitsmart/internal/command"
)

//nolint:gochecknoglobals // Intentional package-level constants for TUI styling API
var (
	// ColorPrimary is blue, used for headers and commit ids.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for committed units.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for undone steps and fallbacks.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for failures and rejected drafts.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for file lists and secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// StyleBold applies bold formatting to text.
	StyleBold = lipgloss.NewStyle().Bold(true)

	// StyleDim applies dim/faint formatting to text.
	StyleDim = lipgloss.NewStyle().Faint(true)
)

// OutputStyles holds common output styles.
type OutputStyles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates common output styles using AdaptiveColor for light/dark terminal support.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Header: lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning),
		Info: lipgloss.NewStyle().
			Foreground(ColorPrimary),
		Dim: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}

// Outcome returns the style for a command outcome.
func (s *OutputStyles) Outcome(o command.Outcome) lipgloss.Style {
	switch o {
	case command.OutcomeSucceeded:
		return s.Success
	case command.OutcomeFailed:
		return s.Error
	case command.OutcomeUndone:
		return s.Warning
	case command.OutcomeNotAttempted:
		return s.Dim
	}
	return s.Dim
}

// OutcomeIcon returns the icon for a command outcome.
func OutcomeIcon(o command.Outcome) string {
	switch o {
	case command.OutcomeSucceeded:
		return "✓"
	case command.OutcomeFailed:
		return "✗"
	case command.OutcomeUndone:
		return "↺"
	case command.OutcomeNotAttempted:
		return "○"
	}
	return "?"
}

// CheckNoColor respects the NO_COLOR environment variable.
// Call this at the start of commands that output styled text.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns true if the terminal supports colors.
// Returns false if NO_COLOR is set (any value including empty string) or TERM=dumb.
// This follows the NO_COLOR standard: https://no-color.org/
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}
