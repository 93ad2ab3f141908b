package driven

import (
	"context"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

// VectorIndex provides semantic similarity search over chunk embeddings.
// Backed by an in-memory flat index with snapshot persistence.
type VectorIndex interface {
	// Insert adds vectors to the index. The insert is all-or-nothing:
	// if any record's vector has the wrong dimensionality, no record
	// is added and a domain.DimensionMismatchError is returned.
	Insert(ctx context.Context, records []domain.VectorRecord) error

	// Search finds the k most similar vectors to the query, restricted
	// to the given scope. A zero scope searches the whole index.
	// Results are ordered by descending similarity; equal scores keep
	// insertion order.
	Search(ctx context.Context, query []float32, k int, scope domain.Scope) ([]VectorHit, error)

	// Remove deletes all vectors belonging to a document.
	Remove(ctx context.Context, documentID string) error

	// Save persists the index to its snapshot location atomically.
	Save(ctx context.Context) error

	// Load restores the index from its most recent snapshot.
	// A missing snapshot yields an empty index. A corrupt snapshot
	// yields an empty index and domain.ErrCorruptIndex so the caller
	// can log and trigger reindexing.
	Load(ctx context.Context) error

	// Len returns the number of vectors currently in the index.
	Len() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the document the chunk belongs to.
	DocumentID string

	// Score is the cosine similarity in [-1, 1].
	Score float64
}
