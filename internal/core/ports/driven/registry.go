package driven

import (
	"context"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

// ExtractorRegistry selects the appropriate extractor for a document.
// It maintains a priority-ordered list of extractors and dispatches
// on MIME type.
type ExtractorRegistry interface {
	// Extract transforms a raw document using the best matching extractor.
	// Returns domain.ErrUnsupportedFormat when no extractor handles the
	// document's MIME type.
	Extract(ctx context.Context, raw *domain.RawDocument) (*ExtractResult, error)

	// Register adds an extractor to the registry.
	Register(extractor Extractor)

	// SupportedMIMETypes returns all MIME types that can be extracted.
	SupportedMIMETypes() []string
}
