package driven

import (
	"context"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

// DocumentStore persists documents and chunks.
// Backed by SQLite for metadata storage.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// UpdateDocumentStatus transitions a document's lifecycle status.
	// The error message is recorded for failed documents and cleared otherwise.
	UpdateDocumentStatus(ctx context.Context, id string, status domain.DocumentStatus, errMsg string) error

	// SaveChunks stores chunks for a document.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document, ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns documents matching the scope.
	// A zero scope returns all documents.
	ListDocuments(ctx context.Context, scope domain.Scope) ([]domain.Document, error)
}
