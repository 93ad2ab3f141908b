// Package status provides the status bar for the chat TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/veritas-labs/counsel/internal/adapters/driving/tui/keymap"
	"github.com/veritas-labs/counsel/internal/adapters/driving/tui/styles"
)

// State is what the chat is currently doing.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
)

// Bar displays the chat state, the active scope and model, and key
// hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	scope   string
	model   string
	width   int
}

// NewBar creates a status bar.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (b *Bar) renderLeft() string {
	switch b.state {
	case StateThinking:
		return b.styles.Muted.Render("Thinking...")
	case StateError:
		if b.message != "" {
			return b.styles.Error.Render("Error: " + b.message)
		}
		return b.styles.Error.Render("Error")
	case StateReady:
	}

	parts := make([]string, 0, 2)
	if b.scope != "" {
		parts = append(parts, b.scope)
	}
	if b.model != "" {
		parts = append(parts, b.model)
	}
	if len(parts) == 0 {
		return b.styles.Muted.Render("Ready")
	}
	return b.styles.Muted.Render(strings.Join(parts, " | "))
}

func (b *Bar) renderRight() string {
	bindings := b.keymap.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, "  "))
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets the error detail shown in StateError.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// SetContext sets the scope and model labels shown when ready.
func (b *Bar) SetContext(scope, model string) {
	b.scope = scope
	b.model = model
}

// SetWidth sets the bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}
