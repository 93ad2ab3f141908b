package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/veritas-labs/counsel/internal/adapters/driving/tui/components/input"
	"github.com/veritas-labs/counsel/internal/adapters/driving/tui/components/status"
	"github.com/veritas-labs/counsel/internal/adapters/driving/tui/components/transcript"
	"github.com/veritas-labs/counsel/internal/adapters/driving/tui/keymap"
	"github.com/veritas-labs/counsel/internal/adapters/driving/tui/messages"
	"github.com/veritas-labs/counsel/internal/adapters/driving/tui/styles"
	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driving"
)

// Chat is the interactive question-answering TUI following the Elm
// architecture. It implements tea.Model for use with Bubbletea.
type Chat struct {
	// cfg carries the services and scope the chat runs against.
	cfg Config

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keys holds the chat keybindings.
	keys *keymap.KeyMap

	// input is the question input field.
	input *input.QuestionInput

	// transcript shows the questions and answers exchanged so far.
	transcript *transcript.Transcript

	// statusBar shows the chat state, scope and key hints.
	statusBar *status.Bar

	// history is the prior turns sent along with each question.
	history []driving.ChatTurn

	// waiting indicates a question is in flight.
	waiting bool

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the chat has initialised.
	ready bool
}

// Ensure Chat implements tea.Model.
var _ tea.Model = (*Chat)(nil)

// NewChat creates the chat TUI with the given configuration.
func NewChat(cfg Config) (*Chat, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating chat: %w", err)
	}

	s := styles.DefaultStyles()
	keys := keymap.DefaultKeyMap()
	bar := status.NewBar(s, keys)
	bar.SetContext(cfg.ScopeName, cfg.ModelName)

	return &Chat{
		cfg:        cfg,
		ctx:        context.Background(),
		styles:     s,
		keys:       keys,
		input:      input.NewQuestionInput(s),
		transcript: transcript.New(s),
		statusBar:  bar,
	}, nil
}

// WithContext sets the context used for ask requests.
func (c *Chat) WithContext(ctx context.Context) *Chat {
	c.ctx = ctx
	return c
}

// Init implements tea.Model.
func (c *Chat) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("counsel chat"),
		c.input.Init(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (c *Chat) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.SetDimensions(msg.Width, msg.Height)
		return c, nil

	case tea.KeyMsg:
		return c.handleKey(msg)

	case messages.AnswerReceived:
		return c.handleAnswer(msg)

	case messages.ErrorOccurred:
		c.waiting = false
		c.err = msg.Err
		c.statusBar.SetState(status.StateError)
		c.statusBar.SetMessage(msg.Err.Error())
		return c, nil
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

// handleKey processes key presses.
func (c *Chat) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, c.keys.Quit):
		return c, tea.Quit

	case keymap.Matches(keyStr, c.keys.ScrollUp):
		c.transcript.ScrollUp()
		return c, nil

	case keymap.Matches(keyStr, c.keys.ScrollDown):
		c.transcript.ScrollDown()
		return c, nil

	case keymap.Matches(keyStr, c.keys.Clear):
		c.input.Reset()
		return c, nil

	case keymap.Matches(keyStr, c.keys.Submit):
		return c.submit()
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

// submit sends the current question if one is typed and none is in
// flight.
func (c *Chat) submit() (tea.Model, tea.Cmd) {
	if c.waiting {
		return c, nil
	}

	question := strings.TrimSpace(c.input.Value())
	if question == "" {
		return c, nil
	}

	c.input.Reset()
	c.transcript.AppendQuestion(question)
	c.waiting = true
	c.statusBar.SetState(status.StateThinking)

	return c, c.performAsk(question)
}

// performAsk returns a command that answers the question with the prior
// turns as conversation history.
func (c *Chat) performAsk(question string) tea.Cmd {
	ctx := c.ctx
	query := domain.Query{
		Text:  question,
		Scope: c.cfg.Scope,
	}
	history := make([]driving.ChatTurn, len(c.history))
	copy(history, c.history)

	return func() tea.Msg {
		answer, err := c.cfg.Ask.Chat(ctx, query, history)
		return messages.AnswerReceived{
			Question: question,
			Answer:   answer,
			Err:      err,
		}
	}
}

// handleAnswer records the result of an in-flight question.
func (c *Chat) handleAnswer(msg messages.AnswerReceived) (tea.Model, tea.Cmd) {
	c.waiting = false

	if msg.Err != nil {
		c.err = msg.Err
		c.transcript.SetError(msg.Err)
		c.statusBar.SetState(status.StateError)
		c.statusBar.SetMessage(msg.Err.Error())
		return c, nil
	}

	c.err = nil
	c.transcript.SetAnswer(msg.Answer)
	c.history = append(c.history,
		driving.ChatTurn{Role: "user", Content: msg.Question},
		driving.ChatTurn{Role: "assistant", Content: msg.Answer.Text},
	)
	c.statusBar.SetState(status.StateReady)
	c.statusBar.SetMessage("")
	return c, nil
}

// View implements tea.Model.
func (c *Chat) View() string {
	if !c.ready {
		return "Initialising..."
	}

	sections := []string{
		c.styles.Title.Render("counsel chat"),
		"",
		c.transcript.View(),
		"",
		c.input.View(),
		c.statusBar.View(),
	}
	return strings.Join(sections, "\n")
}

// SetDimensions sets the terminal dimensions.
func (c *Chat) SetDimensions(width, height int) {
	c.width = width
	c.height = height
	c.ready = true

	c.input.SetWidth(width)
	c.statusBar.SetWidth(width)

	// The title, separators, bordered input and status bar take 7 rows.
	transcriptHeight := height - 7
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}
	c.transcript.SetDimensions(width, transcriptHeight)
}

// Question returns the text currently typed in the input field.
func (c *Chat) Question() string {
	return c.input.Value()
}

// History returns the conversation turns exchanged so far.
func (c *Chat) History() []driving.ChatTurn {
	return c.history
}

// Waiting returns whether a question is in flight.
func (c *Chat) Waiting() bool {
	return c.waiting
}

// Ready returns whether the chat has been initialised.
func (c *Chat) Ready() bool {
	return c.ready
}

// Err returns the last error that occurred.
func (c *Chat) Err() error {
	return c.err
}
