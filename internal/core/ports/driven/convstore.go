package driven

import (
	"context"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

// ConversationStore persists chat conversations.
// Documents attached mid-conversation reference the conversation ID
// and are cleaned up when the conversation is deleted.
type ConversationStore interface {
	// SaveConversation stores or updates a conversation.
	SaveConversation(ctx context.Context, conv *domain.Conversation) error

	// GetConversation retrieves a conversation by ID.
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)

	// ListConversations returns all conversations, newest first.
	ListConversations(ctx context.Context) ([]domain.Conversation, error)

	// DeleteConversation removes a conversation.
	DeleteConversation(ctx context.Context, id string) error
}
