package driven

import (
	"context"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

// Fetcher retrieves a document over the network.
// Used for URL ingestion; when nil, URL ingestion is disabled.
type Fetcher interface {
	// Fetch downloads the resource at the given URL and returns it as
	// a raw document with MIME type and title detected from the response.
	Fetch(ctx context.Context, url string) (*domain.RawDocument, error)
}
