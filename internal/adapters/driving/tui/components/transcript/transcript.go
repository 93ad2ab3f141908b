// Package transcript renders the scrolling question and answer history
// for the chat TUI.
package transcript

import (
	"fmt"
	"strings"
	"time"

	"github.com/veritas-labs/counsel/internal/adapters/driving/tui/styles"
	"github.com/veritas-labs/counsel/internal/core/domain"
)

// Turn is one question and its outcome. Answer stays nil while the
// question is in flight; Err marks a failed turn.
type Turn struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// Transcript displays chat turns with manual scrolling. It follows the
// bottom as new turns arrive until the user scrolls up.
type Transcript struct {
	turns        []Turn
	styles       *styles.Styles
	width        int
	height       int
	scrollOffset int
	follow       bool
}

// New creates an empty transcript.
func New(s *styles.Styles) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &Transcript{
		styles: s,
		width:  80,
		height: 16,
		follow: true,
	}
}

// AppendQuestion adds a new in-flight turn and snaps to the bottom.
func (t *Transcript) AppendQuestion(question string) {
	t.turns = append(t.turns, Turn{Question: question})
	t.follow = true
}

// SetAnswer completes the most recent turn with an answer.
func (t *Transcript) SetAnswer(answer *domain.Answer) {
	if len(t.turns) == 0 {
		return
	}
	t.turns[len(t.turns)-1].Answer = answer
	t.follow = true
}

// SetError completes the most recent turn with an error.
func (t *Transcript) SetError(err error) {
	if len(t.turns) == 0 {
		return
	}
	t.turns[len(t.turns)-1].Err = err
	t.follow = true
}

// Turns returns the recorded turns.
func (t *Transcript) Turns() []Turn {
	return t.turns
}

// ScrollUp moves one line towards the start and stops following.
func (t *Transcript) ScrollUp() {
	if t.follow {
		t.scrollOffset = t.maxScrollOffset()
		t.follow = false
	}
	if t.scrollOffset > 0 {
		t.scrollOffset--
	}
}

// ScrollDown moves one line towards the end. Reaching the end resumes
// following.
func (t *Transcript) ScrollDown() {
	max := t.maxScrollOffset()
	if t.scrollOffset < max {
		t.scrollOffset++
	}
	if t.scrollOffset >= max {
		t.follow = true
	}
}

// SetDimensions sizes the visible window.
func (t *Transcript) SetDimensions(width, height int) {
	if width > 0 {
		t.width = width
	}
	if height > 0 {
		t.height = height
	}
}

// View renders the visible window of the transcript.
func (t *Transcript) View() string {
	if len(t.turns) == 0 {
		return t.styles.Muted.Render("Ask a question to get started. Answers cite the source passages.")
	}

	lines := t.lines()
	offset := t.scrollOffset
	if t.follow {
		offset = t.maxScrollOffsetFor(len(lines))
	}

	end := offset + t.height
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[offset:end], "\n")
}

// lines renders every turn into display lines.
func (t *Transcript) lines() []string {
	var lines []string
	for i := range t.turns {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, t.renderTurn(&t.turns[i])...)
	}
	return lines
}

func (t *Transcript) renderTurn(turn *Turn) []string {
	var lines []string

	question := t.styles.Question.Width(t.width).Render("You: " + turn.Question)
	lines = append(lines, strings.Split(question, "\n")...)

	switch {
	case turn.Err != nil:
		rendered := t.styles.Error.Width(t.width).Render("Error: " + turn.Err.Error())
		lines = append(lines, strings.Split(rendered, "\n")...)
	case turn.Answer == nil:
		lines = append(lines, t.styles.Muted.Render("Thinking..."))
	default:
		rendered := t.styles.Answer.Width(t.width).Render(turn.Answer.Text)
		lines = append(lines, strings.Split(rendered, "\n")...)
		lines = append(lines, t.renderCitations(turn.Answer)...)
	}
	return lines
}

func (t *Transcript) renderCitations(answer *domain.Answer) []string {
	var lines []string
	for i, c := range answer.Citations {
		ref := c.DocumentTitle
		if c.KnowledgeBase != "" {
			ref += fmt.Sprintf(" (%s)", c.KnowledgeBase)
		}
		line := fmt.Sprintf("  [%d] %s, passage %d (score %.2f)", i+1, ref, c.ChunkIndex+1, c.Score)
		lines = append(lines, t.styles.Citation.Render(line))
	}

	timing := fmt.Sprintf("  retrieval %s, llm %s, total %s",
		answer.Timings.Retrieval.Round(time.Millisecond),
		answer.Timings.LLM.Round(time.Millisecond),
		answer.Timings.Total.Round(time.Millisecond))
	lines = append(lines, t.styles.Timing.Render(timing))
	return lines
}

func (t *Transcript) maxScrollOffset() int {
	return t.maxScrollOffsetFor(len(t.lines()))
}

func (t *Transcript) maxScrollOffsetFor(lineCount int) int {
	max := lineCount - t.height
	if max < 0 {
		return 0
	}
	return max
}
