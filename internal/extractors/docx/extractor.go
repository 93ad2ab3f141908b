// Package docx extracts text from Word documents, the format most
// legal filings arrive in.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Format-specific
}

// Extract pulls paragraph text out of word/document.xml. The title
// comes from the caller, then docProps/core.xml, then the filename.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawDocument) (*driven.ExtractResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip archive: %v", domain.ErrExtraction, err)
	}

	content, err := documentText(reader)
	if err != nil {
		return nil, err
	}

	title := raw.Title
	if title == "" {
		title = documentTitle(reader, raw.URI)
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

// documentXML mirrors the parts of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// documentText extracts paragraph text from word/document.xml. Empty
// paragraphs (spacing in the source document) are dropped so the
// chunker sees clean paragraph breaks.
func documentText(reader *zip.Reader) (string, error) {
	payload, err := readArchiveFile(reader, "word/document.xml")
	if err != nil {
		return "", err
	}
	if payload == nil {
		return "", fmt.Errorf("%w: no word/document.xml", domain.ErrExtraction)
	}

	var doc documentXML
	if err := xml.Unmarshal(payload, &doc); err != nil {
		return "", fmt.Errorf("%w: malformed document.xml: %v", domain.ErrExtraction, err)
	}

	var paragraphs []string
	for _, para := range doc.Body.Paragraphs {
		var sb strings.Builder
		for _, r := range para.Runs {
			for _, text := range r.Text {
				sb.WriteString(text.Content)
			}
		}
		if p := strings.TrimSpace(sb.String()); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	return strings.Join(paragraphs, "\n\n"), nil
}

// coreXML mirrors the parts of docProps/core.xml we read.
type coreXML struct {
	Title string `xml:"title"`
}

// documentTitle reads the document title from docProps/core.xml,
// falling back to a cleaned-up filename.
func documentTitle(reader *zip.Reader, uri string) string {
	if payload, err := readArchiveFile(reader, "docProps/core.xml"); err == nil && payload != nil {
		var core coreXML
		if err := xml.Unmarshal(payload, &core); err == nil {
			if title := strings.TrimSpace(core.Title); title != "" {
				return title
			}
		}
	}

	return titleFromURI(uri)
}

// readArchiveFile returns the named file's bytes, or nil when the
// archive has no such entry.
func readArchiveFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", domain.ErrExtraction, name, err)
		}
		defer rc.Close()

		payload, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrExtraction, name, err)
		}
		return payload, nil
	}
	return nil, nil
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
