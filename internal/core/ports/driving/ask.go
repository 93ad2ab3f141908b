package driving

import (
	"context"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

// AskService answers natural-language questions against indexed documents.
type AskService interface {
	// Ask retrieves the most relevant passages for the query, generates
	// a grounded answer and returns it with citations and stage timings.
	Ask(ctx context.Context, query domain.Query) (*domain.Answer, error)

	// Retrieve returns the raw retrieval results without answer
	// generation. Useful for inspection and debugging.
	Retrieve(ctx context.Context, query domain.Query) ([]domain.RetrievedPassage, error)

	// Summarise produces a short summary of a document's content.
	Summarise(ctx context.Context, documentID string, maxLength int) (string, error)

	// SummariseScope produces one combined summary of every indexed
	// document in the scope (a knowledge base or a conversation).
	SummariseScope(ctx context.Context, scope domain.Scope, maxLength int) (string, error)

	// Chat continues a conversation with retrieval over the
	// conversation's scope. History provides prior turns.
	Chat(ctx context.Context, query domain.Query, history []ChatTurn) (*domain.Answer, error)
}

// ChatTurn is a single prior exchange in a conversation.
type ChatTurn struct {
	// Role is "user" or "assistant".
	Role string

	// Content is the message text.
	Content string
}
