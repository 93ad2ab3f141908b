package driven

import (
	"context"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

// Chunker splits extracted document text into overlapping passages.
type Chunker interface {
	// Split produces the document's chunks in positional order.
	// Each chunk's content appears verbatim in the document text at
	// its recorded byte offsets.
	Split(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
