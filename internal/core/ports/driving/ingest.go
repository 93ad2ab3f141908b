package driving

import (
	"context"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

// IngestService accepts documents and processes them in the background.
type IngestService interface {
	// Ingest registers a raw document and queues it for processing.
	// It returns immediately with the document in pending status;
	// extraction, chunking, embedding and indexing happen asynchronously.
	Ingest(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error)

	// Wait blocks until the document reaches a terminal status
	// (indexed or failed) or the context is cancelled.
	Wait(ctx context.Context, documentID string) (*domain.Document, error)

	// Get retrieves a document with its current status and, for failed
	// documents, the failure reason.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// List returns documents matching the scope, newest first.
	List(ctx context.Context, scope domain.Scope) ([]domain.Document, error)

	// Delete removes a document, its chunks and its index entries.
	// Subsequent queries never return passages from it.
	Delete(ctx context.Context, documentID string) error

	// Reindex rebuilds the vector index from stored chunks.
	// Used to recover from a corrupt or missing snapshot.
	Reindex(ctx context.Context) error
}
