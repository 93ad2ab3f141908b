// Package html extracts text from HTML documents.
package html

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles HTML documents.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Format-specific, higher than plaintext
}

// Extract converts an HTML document to plain text. Non-content elements
// (scripts, styles, navigation chrome) are dropped, block elements become
// line breaks, and blank lines between blocks are kept so paragraph
// boundaries survive for chunking.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawDocument) (*driven.ExtractResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing html: %v", domain.ErrExtraction, err)
	}

	// Read the title before the head is removed.
	title := raw.Title
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		title = titleFromURI(raw.URI)
	}

	doc.Find("script, style, noscript, svg, head, nav, header, footer, aside").Remove()

	cleaned, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("%w: rendering html: %v", domain.ErrExtraction, err)
	}

	return &driven.ExtractResult{
		Document: domain.Document{
			KnowledgeBaseID: raw.KnowledgeBaseID,
			ConversationID:  raw.ConversationID,
			URI:             raw.URI,
			Title:           title,
			Description:     raw.Description,
			SourceKind:      raw.SourceKind,
			Content:         flattenHTML(cleaned),
			ByteSize:        int64(len(raw.Content)),
		},
	}, nil
}

// Pre-compiled regular expressions for flattening markup into text.
var (
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	blockElements     = regexp.MustCompile(`(?i)</(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	brTags            = regexp.MustCompile(`(?i)<br\s*/?>`)
	hrTags            = regexp.MustCompile(`(?i)<hr\s*/?>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	multiSpaces       = regexp.MustCompile(`[ \t]+`)
)

// flattenHTML turns cleaned markup into readable plain text. Block
// element boundaries become newlines; runs of blank lines collapse to a
// single blank line so "\n\n" keeps marking paragraph breaks.
func flattenHTML(content string) string {
	content = htmlComments.ReplaceAllString(content, "")

	// Block boundaries become newlines
	content = openBlockElements.ReplaceAllString(content, "\n")
	content = blockElements.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")
	content = hrTags.ReplaceAllString(content, "\n")

	// Strip all remaining tags and decode entities
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	// Collapse horizontal whitespace (but preserve newlines)
	content = multiSpaces.ReplaceAllString(content, " ")

	// Trim lines; keep at most one blank line between blocks
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))
	blank := true // swallow leading blanks
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				result = append(result, "")
			}
			blank = true
			continue
		}
		result = append(result, line)
		blank = false
	}
	for len(result) > 0 && result[len(result)-1] == "" {
		result = result[:len(result)-1]
	}

	return strings.Join(result, "\n")
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
