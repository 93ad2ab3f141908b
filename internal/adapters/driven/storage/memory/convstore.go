package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore is an in-memory implementation of driven.ConversationStore.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]domain.Conversation
}

// NewConversationStore creates a new in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[string]domain.Conversation),
	}
}

// SaveConversation stores or updates a conversation.
func (s *ConversationStore) SaveConversation(_ context.Context, conv *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[conv.ID] = *conv
	return nil
}

// GetConversation retrieves a conversation by ID.
func (s *ConversationStore) GetConversation(_ context.Context, id string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &conv, nil
}

// ListConversations returns all conversations, newest first.
func (s *ConversationStore) ListConversations(_ context.Context) ([]domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Conversation, 0, len(s.conversations))
	for id := range s.conversations {
		result = append(result, s.conversations[id])
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// DeleteConversation removes a conversation.
func (s *ConversationStore) DeleteConversation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, id)
	return nil
}
