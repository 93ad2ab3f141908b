// Package messages defines Bubbletea message types for the chat TUI.
package messages

import (
	"github.com/veritas-labs/counsel/internal/core/domain"
)

// AnswerReceived carries the outcome of an asked question back to the
// model. Exactly one of Answer and Err is set.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// ErrorOccurred signals a failure outside the ask flow.
type ErrorOccurred struct {
	Err error
}
