package domain

import (
	"errors"
	"fmt"
)

// Domain errors classify failures of the ingestion and query paths.
// Adapters wrap their underlying causes with these sentinels so the
// core can classify failures with errors.Is without knowing about
// HTTP status codes or file formats.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDecode indicates chunker input with malformed encoding.
	// Fatal to the ingestion of that document.
	ErrDecode = errors.New("malformed text encoding")

	// ErrUnsupportedFormat indicates no extractor handles the
	// document's MIME type. Fatal to that ingestion.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrExtraction indicates the document bytes are corrupt or
	// unreadable by the matching extractor. Fatal to that ingestion.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmbeddingService indicates the embedding service failed
	// after bounded retries. The last underlying cause is wrapped.
	ErrEmbeddingService = errors.New("embedding service failed")

	// ErrLLMService indicates the language-model call failed or timed
	// out. Fatal to that query only; index state is unaffected.
	ErrLLMService = errors.New("language model service failed")

	// ErrCorruptIndex indicates a persisted index file could not be
	// restored. Recovery is an empty index; the data loss is logged,
	// never hidden.
	ErrCorruptIndex = errors.New("corrupt index file")

	// ErrUnexpectedResponse indicates a collaborator returned a
	// response whose shape violates its contract.
	ErrUnexpectedResponse = errors.New("unexpected response shape")

	// ErrDimensionMismatch indicates a vector whose dimensionality
	// differs from the index's established dimension. This is a
	// configuration error (embedding model changed without
	// reindexing) and is never silently coerced.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrIngestCancelled indicates an in-flight ingestion was
	// abandoned before the final index insert. A no-op, not a failure.
	ErrIngestCancelled = errors.New("ingestion cancelled")
)

// DimensionMismatchError carries the expected and observed vector
// dimensions. It matches ErrDimensionMismatch under errors.Is.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: index expects %d, got %d", e.Want, e.Got)
}

// Unwrap ties the typed error to the ErrDimensionMismatch sentinel.
func (e *DimensionMismatchError) Unwrap() error {
	return ErrDimensionMismatch
}
