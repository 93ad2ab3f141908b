package driving

import (
	"context"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

// KnowledgeBaseService manages knowledge bases and conversations.
type KnowledgeBaseService interface {
	// Create makes a new knowledge base with a unique name.
	Create(ctx context.Context, name, description string) (*domain.KnowledgeBase, error)

	// Get retrieves a knowledge base by ID.
	Get(ctx context.Context, id string) (*domain.KnowledgeBase, error)

	// Resolve retrieves a knowledge base by ID or name.
	Resolve(ctx context.Context, idOrName string) (*domain.KnowledgeBase, error)

	// List returns all knowledge bases.
	List(ctx context.Context) ([]domain.KnowledgeBase, error)

	// Delete removes a knowledge base and all its documents.
	Delete(ctx context.Context, id string) error

	// StartConversation creates a conversation for chat-scoped ingestion.
	StartConversation(ctx context.Context, title string) (*domain.Conversation, error)

	// EndConversation deletes a conversation and its attached documents.
	EndConversation(ctx context.Context, id string) error
}
