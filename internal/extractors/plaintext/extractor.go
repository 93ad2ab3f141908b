// Package plaintext extracts text from documents that already are text.
package plaintext

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/markdown",
		"text/html",
		"text/xml",
		"application/json",
		"application/xml",
	}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 5 // Fallback extractor
}

// Extract passes the raw bytes through as text.
// Encoding validation is the chunker's job.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawDocument) (*driven.ExtractResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	title := raw.Title
	if title == "" {
		title = titleFromURI(raw.URI)
	}

	return &driven.ExtractResult{
		Document: domain.Document{
			KnowledgeBaseID: raw.KnowledgeBaseID,
			ConversationID:  raw.ConversationID,
			URI:             raw.URI,
			Title:           title,
			Description:     raw.Description,
			SourceKind:      raw.SourceKind,
			Content:         string(raw.Content),
			ByteSize:        int64(len(raw.Content)),
		},
	}, nil
}

// titleFromURI extracts a human-readable title from a URI.
func titleFromURI(uri string) string {
	filename := filepath.Base(uri)

	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}

	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")

	return filename
}
