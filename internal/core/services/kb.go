package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driven"
	"github.com/veritas-labs/counsel/internal/core/ports/driving"
	"github.com/veritas-labs/counsel/internal/logger"
)

// Ensure KnowledgeBaseService implements the interface.
var _ driving.KnowledgeBaseService = (*KnowledgeBaseService)(nil)

// KnowledgeBaseService manages knowledge bases and conversations.
// Deleting either cascades through the ingest service so documents,
// chunks and index vectors go together.
type KnowledgeBaseService struct {
	kbStore   driven.KnowledgeBaseStore
	convStore driven.ConversationStore
	ingest    driving.IngestService
}

// NewKnowledgeBaseService creates a knowledge base service.
func NewKnowledgeBaseService(
	kbStore driven.KnowledgeBaseStore,
	convStore driven.ConversationStore,
	ingest driving.IngestService,
) *KnowledgeBaseService {
	return &KnowledgeBaseService{
		kbStore:   kbStore,
		convStore: convStore,
		ingest:    ingest,
	}
}

// Create makes a new knowledge base with a unique name.
func (s *KnowledgeBaseService) Create(ctx context.Context, name, description string) (*domain.KnowledgeBase, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: knowledge base name is empty", domain.ErrInvalidInput)
	}

	existing, err := s.kbStore.GetKnowledgeBaseByName(ctx, name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check name: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: knowledge base %q", domain.ErrAlreadyExists, name)
	}

	kb := &domain.KnowledgeBase{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := s.kbStore.SaveKnowledgeBase(ctx, kb); err != nil {
		return nil, fmt.Errorf("save knowledge base: %w", err)
	}

	logger.Info("Created knowledge base %s (%s)", kb.Name, kb.ID)
	return kb, nil
}

// Get retrieves a knowledge base by ID.
func (s *KnowledgeBaseService) Get(ctx context.Context, id string) (*domain.KnowledgeBase, error) {
	return s.kbStore.GetKnowledgeBase(ctx, id)
}

// Resolve retrieves a knowledge base by ID, falling back to name.
func (s *KnowledgeBaseService) Resolve(ctx context.Context, idOrName string) (*domain.KnowledgeBase, error) {
	kb, err := s.kbStore.GetKnowledgeBase(ctx, idOrName)
	if err == nil {
		return kb, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.kbStore.GetKnowledgeBaseByName(ctx, idOrName)
}

// List returns all knowledge bases.
func (s *KnowledgeBaseService) List(ctx context.Context) ([]domain.KnowledgeBase, error) {
	return s.kbStore.ListKnowledgeBases(ctx)
}

// Delete removes a knowledge base and all its documents.
func (s *KnowledgeBaseService) Delete(ctx context.Context, id string) error {
	if _, err := s.kbStore.GetKnowledgeBase(ctx, id); err != nil {
		return err
	}

	if err := s.deleteScopedDocuments(ctx, domain.Scope{KnowledgeBaseID: id}); err != nil {
		return err
	}
	if err := s.kbStore.DeleteKnowledgeBase(ctx, id); err != nil {
		return fmt.Errorf("delete knowledge base: %w", err)
	}

	logger.Info("Deleted knowledge base %s", id)
	return nil
}

// StartConversation creates a conversation for chat-scoped ingestion.
func (s *KnowledgeBaseService) StartConversation(ctx context.Context, title string) (*domain.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Chat " + time.Now().Format("2006-01-02 15:04")
	}

	conv := &domain.Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: time.Now(),
	}
	if err := s.convStore.SaveConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}
	return conv, nil
}

// EndConversation deletes a conversation and its attached documents.
func (s *KnowledgeBaseService) EndConversation(ctx context.Context, id string) error {
	if _, err := s.convStore.GetConversation(ctx, id); err != nil {
		return err
	}

	if err := s.deleteScopedDocuments(ctx, domain.Scope{ConversationID: id}); err != nil {
		return err
	}
	if err := s.convStore.DeleteConversation(ctx, id); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

// deleteScopedDocuments removes every document in the scope through
// the ingest service so index vectors are cleaned up too. Individual
// failures are logged and skipped; the cleanup continues.
func (s *KnowledgeBaseService) deleteScopedDocuments(ctx context.Context, scope domain.Scope) error {
	docs, err := s.ingest.List(ctx, scope)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	for i := range docs {
		if err := s.ingest.Delete(ctx, docs[i].ID); err != nil {
			logger.Warn("Deleting document %s: %v", docs[i].ID, err)
		}
	}
	return nil
}
