package extractors

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driven"
	"github.com/veritas-labs/counsel/internal/extractors/docx"
	"github.com/veritas-labs/counsel/internal/extractors/html"
	"github.com/veritas-labs/counsel/internal/extractors/markdown"
	"github.com/veritas-labs/counsel/internal/extractors/pdf"
	"github.com/veritas-labs/counsel/internal/extractors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry dispatches raw documents to the highest-priority extractor
// registered for their MIME type. Register at startup; Extract may then
// be called from concurrent ingest workers.
type Registry struct {
	extractors []driven.Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Defaults returns a registry with all built-in extractors registered.
func Defaults() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(html.New())
	r.Register(markdown.New())
	r.Register(plaintext.New())
	return r
}

// Register adds an extractor to the registry.
func (r *Registry) Register(extractor driven.Extractor) {
	r.extractors = append(r.extractors, extractor)
}

// Extract transforms a raw document using the best matching extractor.
func (r *Registry) Extract(ctx context.Context, raw *domain.RawDocument) (*driven.ExtractResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	extractor := r.match(raw.MIMEType)
	if extractor == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, raw.MIMEType)
	}

	return extractor.Extract(ctx, raw)
}

// match returns the highest-priority extractor supporting the MIME type,
// or nil if none does.
func (r *Registry) match(mimeType string) driven.Extractor {
	want := canonicalMIME(mimeType)

	var best driven.Extractor
	for _, e := range r.extractors {
		for _, supported := range e.SupportedMIMETypes() {
			if supported != want {
				continue
			}
			if best == nil || e.Priority() > best.Priority() {
				best = e
			}
		}
	}
	return best
}

// SupportedMIMETypes returns all MIME types that can be extracted, sorted
// and deduplicated.
func (r *Registry) SupportedMIMETypes() []string {
	seen := make(map[string]struct{})
	var types []string

	for _, e := range r.extractors {
		for _, m := range e.SupportedMIMETypes() {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			types = append(types, m)
		}
	}

	sort.Strings(types)
	return types
}

// canonicalMIME lowercases the type and strips parameters such as
// "; charset=utf-8".
func canonicalMIME(mimeType string) string {
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
