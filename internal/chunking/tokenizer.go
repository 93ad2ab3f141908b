package chunking

import (
	"unicode"
	"unicode/utf8"
)

// subwordRunes caps how many runes a single token may span. Words
// longer than this split into subword tokens so that unbroken runs of
// text (base64 blobs, OCR artifacts) still produce bounded chunks.
const subwordRunes = 16

// Span marks a token's byte range within the source text.
type Span struct {
	Start int
	End   int
}

// Tokenize splits text into token spans. Tokens are runs of
// non-whitespace runes; runs longer than subwordRunes are divided into
// subword spans. The tokenizer is deterministic and is the single
// sizing function for chunking: the same spans that size a chunk
// validate it.
func Tokenize(text string) []Span {
	spans := make([]Span, 0, len(text)/6+1)

	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}

		start := i
		runes := 0
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
			runes++
			if runes == subwordRunes {
				spans = append(spans, Span{Start: start, End: i})
				start = i
				runes = 0
			}
		}
		if i > start {
			spans = append(spans, Span{Start: start, End: i})
		}
	}

	return spans
}

// CountTokens returns the number of tokens in text under the same
// tokenizer used for chunk sizing.
func CountTokens(text string) int {
	return len(Tokenize(text))
}
