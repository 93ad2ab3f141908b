// Package pdf extracts text from PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles PDF documents.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/pdf", "application/x-pdf"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Format-specific
}

// Extract pulls the text layer out of a PDF, page by page, with a blank
// line between pages. A PDF with no extractable text (scanned images,
// corrupt structure) fails with domain.ErrExtraction.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawDocument) (*driven.ExtractResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content, err := extractText(raw.Content)
	if err != nil {
		return nil, err
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
			Content:         content,
			ByteSize:        int64(len(raw.Content)),
		},
	}, nil
}

// extractText reads every page's text layer. The parser panics on some
// malformed files, so the panic is converted into ErrExtraction here.
func extractText(content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: malformed pdf: %v", domain.ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		// Font cache is per page: font names like "F1" are only
		// unique within one page's resource dictionary.
		fonts := make(map[string]*pdf.Font)
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}

		pageText = strings.TrimSpace(pageText)
		if pageText != "" {
			pages = append(pages, pageText)
		}
	}

	if len(pages) == 0 {
		return "", fmt.Errorf("%w: no text layer found", domain.ErrExtraction)
	}

	return strings.Join(pages, "\n\n"), nil
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
