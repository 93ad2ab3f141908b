package chunking

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

func testDoc(content string) *domain.Document {
	return &domain.Document{ID: "doc-1", Content: content}
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New()
		if c.maxTokens != DefaultMaxTokens {
			t.Errorf("expected maxTokens %d, got %d", DefaultMaxTokens, c.maxTokens)
		}
		if c.overlap != DefaultOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultOverlap, c.overlap)
		}
	})

	t.Run("custom settings", func(t *testing.T) {
		c := New(WithMaxTokens(200), WithOverlap(40))
		if c.maxTokens != 200 || c.overlap != 40 {
			t.Errorf("expected 200/40, got %d/%d", c.maxTokens, c.overlap)
		}
	})

	t.Run("overlap exceeding max is reduced", func(t *testing.T) {
		c := New(WithMaxTokens(100), WithOverlap(150))
		if c.overlap >= c.maxTokens {
			t.Error("overlap should be reduced when it exceeds max tokens")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		c := New(WithMaxTokens(0), WithOverlap(-1))
		if c.maxTokens != DefaultMaxTokens || c.overlap != DefaultOverlap {
			t.Errorf("expected defaults, got %d/%d", c.maxTokens, c.overlap)
		}
	})
}

func TestChunker_Split_EmptyContent(t *testing.T) {
	c := New()

	chunks, err := c.Split(context.Background(), testDoc(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty content, got %d", len(chunks))
	}

	chunks, err = c.Split(context.Background(), testDoc("  \n\n\t  "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for whitespace content, got %d", len(chunks))
	}
}

func TestChunker_Split_InvalidEncoding(t *testing.T) {
	c := New()
	doc := testDoc("valid prefix \xff\xfe invalid bytes")

	_, err := c.Split(context.Background(), doc)
	if err == nil {
		t.Fatal("expected error for malformed encoding")
	}
	if !errors.Is(err, domain.ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestChunker_Split_SingleChunk(t *testing.T) {
	c := New(WithMaxTokens(50), WithOverlap(10))
	text := "  The plaintiff filed a motion to dismiss.  "
	doc := testDoc(text)

	chunks, err := c.Split(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}

	ch := chunks[0]
	if ch.Content != text {
		t.Errorf("single chunk should cover the whole text, got %q", ch.Content)
	}
	if ch.StartOffset != 0 || ch.EndOffset != len(text) {
		t.Errorf("expected offsets [0,%d), got [%d,%d)", len(text), ch.StartOffset, ch.EndOffset)
	}
	if ch.Index != 0 {
		t.Errorf("expected index 0, got %d", ch.Index)
	}
	if ch.DocumentID != doc.ID {
		t.Errorf("expected DocumentID %q, got %q", doc.ID, ch.DocumentID)
	}
	if ch.TokenCount != CountTokens(text) {
		t.Errorf("expected token count %d, got %d", CountTokens(text), ch.TokenCount)
	}
}

// legalText builds a multi-paragraph document with n sentences.
func legalText(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("The court considered the argument advanced by counsel for the appellant. ")
		if i%5 == 4 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func TestChunker_Split_Coverage(t *testing.T) {
	c := New(WithMaxTokens(40), WithOverlap(8))
	text := legalText(30)
	doc := testDoc(text)

	chunks, err := c.Split(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Chunks tile the text: first starts at 0, last ends at len,
	// and no gap exists between consecutive chunks.
	if chunks[0].StartOffset != 0 {
		t.Errorf("first chunk should start at 0, got %d", chunks[0].StartOffset)
	}
	if last := chunks[len(chunks)-1]; last.EndOffset != len(text) {
		t.Errorf("last chunk should end at %d, got %d", len(text), last.EndOffset)
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].StartOffset > chunks[i-1].EndOffset {
			t.Errorf("gap between chunk %d and %d", i-1, i)
		}
		if chunks[i].StartOffset <= chunks[i-1].StartOffset {
			t.Errorf("chunk starts not strictly increasing at %d", i)
		}
	}

	// Concatenating the non-overlapping spans reconstructs the text.
	var b strings.Builder
	for i, ch := range chunks {
		end := ch.EndOffset
		if i < len(chunks)-1 {
			end = chunks[i+1].StartOffset
		}
		b.WriteString(text[ch.StartOffset:end])
	}
	if b.String() != text {
		t.Error("concatenated non-overlapping spans do not reconstruct the original text")
	}
}

func TestChunker_Split_SizeBound(t *testing.T) {
	c := New(WithMaxTokens(40), WithOverlap(8))
	doc := testDoc(legalText(40))

	chunks, err := c.Split(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, ch := range chunks {
		if ch.TokenCount > 40 {
			t.Errorf("chunk %d exceeds max tokens: %d", ch.Index, ch.TokenCount)
		}
		// The sizing tokenizer is also the validating tokenizer.
		if got := CountTokens(ch.Content); got != ch.TokenCount {
			t.Errorf("chunk %d: recorded %d tokens, retokenized %d", ch.Index, ch.TokenCount, got)
		}
	}
}

func TestChunker_Split_OverlapBound(t *testing.T) {
	const overlap = 8
	c := New(WithMaxTokens(40), WithOverlap(overlap))
	text := legalText(40)

	chunks, err := c.Split(context.Background(), testDoc(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		shared := CountTokens(text[chunks[i].StartOffset:chunks[i-1].EndOffset])
		if shared > overlap {
			t.Errorf("chunks %d/%d overlap by %d tokens, want <= %d", i-1, i, shared, overlap)
		}
		if shared == 0 {
			t.Errorf("chunks %d/%d have no overlap", i-1, i)
		}
	}
}

func TestChunker_Split_PrefersParagraphBoundary(t *testing.T) {
	// Ten words, a paragraph break, ten more words. A 15-token window
	// spans the break, so the split should land on it.
	part := strings.TrimSpace(strings.Repeat("word ", 10))
	text := part + "\n\n" + part
	c := New(WithMaxTokens(15), WithOverlap(3))

	chunks, err := c.Split(context.Background(), testDoc(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].TokenCount != 10 {
		t.Errorf("expected first chunk to end at the paragraph break (10 tokens), got %d", chunks[0].TokenCount)
	}
	if !strings.HasSuffix(chunks[0].Content, "\n\n") {
		t.Errorf("first chunk should run through the paragraph break, got %q", chunks[0].Content)
	}
}

func TestChunker_Split_VerbatimOffsets(t *testing.T) {
	// A ~2,000 character document of short words splits into several
	// chunks, each present verbatim at its recorded offsets.
	words := make([]string, 900)
	for i := range words {
		words[i] = "ad"
	}
	text := strings.Join(words, " ") // 900 tokens, ~2,700 bytes
	c := New()                       // defaults: 750 max, 150 overlap

	chunks, err := c.Split(context.Background(), testDoc(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}

	seenIDs := make(map[string]bool)
	for i, ch := range chunks {
		if ch.Content != text[ch.StartOffset:ch.EndOffset] {
			t.Errorf("chunk %d content does not match text at its offsets", i)
		}
		if !strings.Contains(text, ch.Content) {
			t.Errorf("chunk %d content is not a substring of the original", i)
		}
		if ch.Index != i {
			t.Errorf("expected index %d, got %d", i, ch.Index)
		}
		if seenIDs[ch.ID] {
			t.Errorf("duplicate chunk ID %s", ch.ID)
		}
		seenIDs[ch.ID] = true
	}
}

func TestChunker_Split_Deterministic(t *testing.T) {
	c := New(WithMaxTokens(30), WithOverlap(6))
	doc := testDoc(legalText(25))

	first, err := c.Split(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Split(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].StartOffset != second[i].StartOffset || first[i].EndOffset != second[i].EndOffset {
			t.Errorf("chunk %d offsets differ between runs", i)
		}
	}
}

func TestChunker_Split_UnbrokenText(t *testing.T) {
	// One giant unbroken word forces hard subword splits.
	text := strings.Repeat("x", 2000)
	c := New(WithMaxTokens(20), WithOverlap(4))

	chunks, err := c.Split(context.Background(), testDoc(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for unbroken text, got %d", len(chunks))
	}
	for _, ch := range chunks {
		if ch.TokenCount > 20 {
			t.Errorf("chunk %d exceeds max tokens: %d", ch.Index, ch.TokenCount)
		}
	}
	if last := chunks[len(chunks)-1]; last.EndOffset != len(text) {
		t.Errorf("unbroken text not fully covered: ends at %d of %d", last.EndOffset, len(text))
	}
}
