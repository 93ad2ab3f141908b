// Package markdown extracts text from Markdown documents.
package markdown

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles Markdown documents.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Format-specific, higher than plaintext
}

// Extract converts a Markdown document to plain text with formatting
// markers stripped. Paragraph breaks are preserved.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawDocument) (*driven.ExtractResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	rawContent := string(raw.Content)

	title := raw.Title
	if title == "" {
		title = extractMarkdownTitle(rawContent, raw.URI)
	}

	return &driven.ExtractResult{
		Document: domain.Document{
			KnowledgeBaseID: raw.KnowledgeBaseID,
			ConversationID:  raw.ConversationID,
			URI:             raw.URI,
			Title:           title,
			Description:     raw.Description,
			SourceKind:      raw.SourceKind,
			Content:         stripMarkdown(rawContent),
			ByteSize:        int64(len(raw.Content)),
		},
	}, nil
}

// extractMarkdownTitle extracts a title from the first H1 heading or
// falls back to the filename.
func extractMarkdownTitle(content, uri string) string {
	lines := strings.Split(content, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}

	filename := filepath.Base(uri)
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// Pre-compiled regular expressions for Markdown stripping.
var (
	codeBlock     = regexp.MustCompile("(?s)```[^`]*```")
	inlineCode    = regexp.MustCompile("`[^`]+`")
	images        = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquote    = regexp.MustCompile(`(?m)^>\s*`)
	horizontal    = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkers   = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedList  = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes common markdown formatting for plain text content.
// This is a simplified implementation that handles common cases.
func stripMarkdown(content string) string {
	content = codeBlock.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "")
	content = images.ReplaceAllString(content, "")

	// Convert links [text](url) to just text
	content = links.ReplaceAllString(content, "$1")

	content = headings.ReplaceAllString(content, "")

	// Remove bold/italic markers
	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")

	content = blockquote.ReplaceAllString(content, "")
	content = horizontal.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")

	// Collapse runs of blank lines to a single paragraph break
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
