// Package input provides the question input component for the chat TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/veritas-labs/counsel/internal/adapters/driving/tui/styles"
)

// QuestionInput wraps a bubbles textinput for entering questions.
type QuestionInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewQuestionInput creates a question input component.
func NewQuestionInput(s *styles.Styles) *QuestionInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about your documents..."
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 60

	return &QuestionInput{
		textinput: ti,
		styles:    s,
		width:     80,
	}
}

// Init initialises the input.
func (q *QuestionInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (q *QuestionInput) Update(msg tea.Msg) (*QuestionInput, tea.Cmd) {
	var cmd tea.Cmd
	q.textinput, cmd = q.textinput.Update(msg)
	return q, cmd
}

// View renders the input with its prompt.
func (q *QuestionInput) View() string {
	prompt := q.styles.Title.Render("? ")
	field := q.styles.InputField.Render(q.textinput.View())
	return lipgloss.JoinHorizontal(lipgloss.Center, prompt, field)
}

// Value returns the current input text.
func (q *QuestionInput) Value() string {
	return q.textinput.Value()
}

// SetValue sets the input text.
func (q *QuestionInput) SetValue(value string) {
	q.textinput.SetValue(value)
}

// Focus gives the input keyboard focus.
func (q *QuestionInput) Focus() tea.Cmd {
	return q.textinput.Focus()
}

// Blur removes keyboard focus.
func (q *QuestionInput) Blur() {
	q.textinput.Blur()
}

// Focused reports whether the input has focus.
func (q *QuestionInput) Focused() bool {
	return q.textinput.Focused()
}

// SetWidth sizes the input to the terminal width.
func (q *QuestionInput) SetWidth(width int) {
	q.width = width
	inputWidth := width - 8
	if inputWidth < 20 {
		inputWidth = 20
	}
	q.textinput.Width = inputWidth
}

// Reset clears the input.
func (q *QuestionInput) Reset() {
	q.textinput.Reset()
}
