package driven

import (
	"context"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

// KnowledgeBaseStore persists knowledge base records.
type KnowledgeBaseStore interface {
	// SaveKnowledgeBase stores or updates a knowledge base.
	SaveKnowledgeBase(ctx context.Context, kb *domain.KnowledgeBase) error

	// GetKnowledgeBase retrieves a knowledge base by ID.
	GetKnowledgeBase(ctx context.Context, id string) (*domain.KnowledgeBase, error)

	// GetKnowledgeBaseByName retrieves a knowledge base by its unique name.
	GetKnowledgeBaseByName(ctx context.Context, name string) (*domain.KnowledgeBase, error)

	// ListKnowledgeBases returns all knowledge bases ordered by creation time.
	ListKnowledgeBases(ctx context.Context) ([]domain.KnowledgeBase, error)

	// DeleteKnowledgeBase removes a knowledge base.
	// Documents belonging to it are removed by the caller first.
	DeleteKnowledgeBase(ctx context.Context, id string) error
}
