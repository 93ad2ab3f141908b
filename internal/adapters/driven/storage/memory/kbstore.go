package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driven"
)

// Ensure KnowledgeBaseStore implements the interface.
var _ driven.KnowledgeBaseStore = (*KnowledgeBaseStore)(nil)

// KnowledgeBaseStore is an in-memory implementation of driven.KnowledgeBaseStore.
type KnowledgeBaseStore struct {
	mu    sync.RWMutex
	bases map[string]domain.KnowledgeBase
}

// NewKnowledgeBaseStore creates a new in-memory knowledge base store.
func NewKnowledgeBaseStore() *KnowledgeBaseStore {
	return &KnowledgeBaseStore{
		bases: make(map[string]domain.KnowledgeBase),
	}
}

// SaveKnowledgeBase stores or updates a knowledge base.
func (s *KnowledgeBaseStore) SaveKnowledgeBase(_ context.Context, kb *domain.KnowledgeBase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bases[kb.ID] = *kb
	return nil
}

// GetKnowledgeBase retrieves a knowledge base by ID.
func (s *KnowledgeBaseStore) GetKnowledgeBase(_ context.Context, id string) (*domain.KnowledgeBase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kb, ok := s.bases[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &kb, nil
}

// GetKnowledgeBaseByName retrieves a knowledge base by its unique name.
func (s *KnowledgeBaseStore) GetKnowledgeBaseByName(_ context.Context, name string) (*domain.KnowledgeBase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := range s.bases {
		if s.bases[id].Name == name {
			kb := s.bases[id]
			return &kb, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListKnowledgeBases returns all knowledge bases ordered by creation time.
func (s *KnowledgeBaseStore) ListKnowledgeBases(_ context.Context) ([]domain.KnowledgeBase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.KnowledgeBase, 0, len(s.bases))
	for id := range s.bases {
		result = append(result, s.bases[id])
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// DeleteKnowledgeBase removes a knowledge base.
func (s *KnowledgeBaseStore) DeleteKnowledgeBase(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bases, id)
	return nil
}
