package driven

import (
	"context"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

// Extractor turns raw document bytes into plain text.
// Each extractor handles specific MIME types (e.g., PDF, HTML).
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific extractors should return 50-89.
	// Fallback extractors should return 1-9.
	Priority() int

	// Extract transforms a raw document into a document with plain
	// text content. Chunking is handled separately.
	Extract(ctx context.Context, raw *domain.RawDocument) (*ExtractResult, error)
}

// ExtractResult contains the output of extraction.
type ExtractResult struct {
	// Document is the extracted document with Content populated.
	Document domain.Document
}
