// Package styles provides the colour theme and lipgloss styles for
// the chat TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette for the chat view.
type Theme struct {
	// Primary is the accent colour used for headers and the prompt.
	Primary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for hints, citations, and timings.
	Muted lipgloss.Color

	// Question is the colour for the user's questions.
	Question lipgloss.Color

	// Error indicates failed turns.
	Error lipgloss.Color

	// Border is the input border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#2E86AB"), // Blue
		Foreground: lipgloss.Color("#D8DEE9"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Question:   lipgloss.Color("#A3BE8C"), // Green
		Error:      lipgloss.Color("#BF616A"), // Red
		Border:     lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles for the chat view.
type Styles struct {
	theme *Theme

	// Title style for the header line.
	Title lipgloss.Style

	// Question style for the user's questions in the transcript.
	Question lipgloss.Style

	// Answer style for answer text.
	Answer lipgloss.Style

	// Citation style for the citation footer under an answer.
	Citation lipgloss.Style

	// Timing style for the per-answer timing line.
	Timing lipgloss.Style

	// Muted style for hints and placeholders.
	Muted lipgloss.Style

	// Error style for failed turns and status errors.
	Error lipgloss.Style

	// InputField style for the question input box.
	InputField lipgloss.Style

	// StatusBar style for the bottom status line.
	StatusBar lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Question: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Question),

		Answer: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Citation: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Timing: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
