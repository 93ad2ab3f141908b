// Package chunking splits extracted document text into overlapping
// passages along natural boundaries, sized by a deterministic token
// heuristic.
package chunking

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

// DefaultMaxTokens is the default maximum tokens per chunk.
const DefaultMaxTokens = 750

// DefaultOverlap is the default number of overlapping tokens between
// adjacent chunks.
const DefaultOverlap = 150

// boundary classes, ordered by preference. A chunk boundary is placed
// at the highest-priority separator found inside the token window.
const (
	boundarySubword = iota // inside an unbroken over-long word
	boundaryWord           // plain whitespace between tokens
	boundarySentence
	boundaryNewline
	boundaryParagraph
)

// Chunker splits document text into bounded, overlapping passages.
type Chunker struct {
	maxTokens int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxTokens sets the maximum tokens per chunk.
func WithMaxTokens(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithOverlap sets the overlap between adjacent chunks in tokens.
func WithOverlap(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlap = n
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxTokens: DefaultMaxTokens,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave room for forward progress
	if c.overlap >= c.maxTokens {
		c.overlap = c.maxTokens / 4
	}

	return c
}

// MaxTokens returns the configured chunk size bound.
func (c *Chunker) MaxTokens() int {
	return c.maxTokens
}

// Overlap returns the configured overlap in tokens.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Split divides the document's extracted text into chunks.
//
// Chunks tile the text: the first chunk starts at byte 0, the last
// ends at the final byte, and each chunk after the first begins
// overlap tokens before the previous chunk's end. Every chunk's
// Content is the verbatim substring at [StartOffset, EndOffset).
// Empty or whitespace-only text yields zero chunks and no error.
func (c *Chunker) Split(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}
	text := doc.Content
	if !utf8.ValidString(text) {
		return nil, domain.ErrDecode
	}

	spans := Tokenize(text)
	if len(spans) == 0 {
		return nil, nil
	}

	estimated := len(spans)/(c.maxTokens-c.overlap+1) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	startIdx := 0
	for {
		remaining := len(spans) - startIdx
		if remaining <= c.maxTokens {
			chunks = append(chunks, c.buildChunk(doc.ID, text, spans, len(chunks), startIdx, len(spans)))
			break
		}

		windowEnd := startIdx + c.maxTokens
		endIdx := findBoundary(text, spans, startIdx, windowEnd)
		chunks = append(chunks, c.buildChunk(doc.ID, text, spans, len(chunks), startIdx, endIdx))

		nextStart := endIdx - c.overlap
		if nextStart <= startIdx {
			nextStart = startIdx + 1
		}
		startIdx = nextStart
	}

	return chunks, nil
}

// buildChunk assembles one chunk covering spans[startIdx:endIdx).
// The first chunk absorbs any leading bytes before the first token,
// every other chunk extends through the whitespace after its last
// token, and the final chunk runs to the end of the text. Chunk
// contents therefore tile the text with no byte left uncovered.
func (c *Chunker) buildChunk(docID, text string, spans []Span, index, startIdx, endIdx int) domain.Chunk {
	charStart := spans[startIdx].Start
	if index == 0 {
		charStart = 0
	}
	charEnd := len(text)
	if endIdx < len(spans) {
		charEnd = spans[endIdx].Start
	}

	return domain.Chunk{
		ID:          uuid.New().String(),
		DocumentID:  docID,
		Index:       index,
		Content:     text[charStart:charEnd],
		StartOffset: charStart,
		EndOffset:   charEnd,
		TokenCount:  endIdx - startIdx,
	}
}

// findBoundary picks the split point for a chunk starting at startIdx
// whose window ends at windowEnd (exclusive token index, < len(spans)).
// It returns an end index in (startIdx, windowEnd]: the last boundary
// of the highest-priority separator class found inside the window.
// When the window lies inside one unbroken over-long word the only
// boundaries are subword cuts, which is the hard character-split
// fallback.
func findBoundary(text string, spans []Span, startIdx, windowEnd int) int {
	best := struct {
		class int
		idx   int
	}{boundarySubword, windowEnd}

	for j := windowEnd; j > startIdx; j-- {
		class := classifyBoundary(text, spans, j)
		if class == boundaryParagraph {
			return j
		}
		if class > best.class {
			best.class = class
			best.idx = j
		}
	}

	return best.idx
}

// classifyBoundary inspects the gap between spans[j-1] and spans[j].
func classifyBoundary(text string, spans []Span, j int) int {
	gap := text[spans[j-1].End:spans[j].Start]
	if gap == "" {
		return boundarySubword
	}
	if strings.Contains(gap, "\n\n") {
		return boundaryParagraph
	}
	if strings.Contains(gap, "\n") {
		return boundaryNewline
	}
	if endsSentence(text[spans[j-1].Start:spans[j-1].End]) {
		return boundarySentence
	}
	return boundaryWord
}

// endsSentence reports whether a token ends with sentence-final
// punctuation, ignoring trailing closing quotes and brackets.
func endsSentence(token string) bool {
	token = strings.TrimRight(token, `"')]}`+"`")
	if token == "" {
		return false
	}
	switch token[len(token)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}
