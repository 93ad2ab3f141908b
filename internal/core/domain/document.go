package domain

import "time"

// DocumentStatus tracks a document through the ingestion lifecycle.
type DocumentStatus string

const (
	// StatusPending means the document is accepted but not yet processed.
	StatusPending DocumentStatus = "pending"

	// StatusProcessing means extraction/chunking/embedding is underway.
	StatusProcessing DocumentStatus = "processing"

	// StatusIndexed means all chunks are embedded and searchable.
	StatusIndexed DocumentStatus = "indexed"

	// StatusFailed means ingestion hit an unrecoverable error.
	// ErrorMessage on the document carries the cause.
	StatusFailed DocumentStatus = "failed"
)

// Terminal reports whether the status is a terminal lifecycle state.
func (s DocumentStatus) Terminal() bool {
	return s == StatusIndexed || s == StatusFailed
}

// SourceKind identifies where a document's bytes came from.
type SourceKind string

const (
	// SourceFile is a document ingested from a local file.
	SourceFile SourceKind = "file"

	// SourceURL is a document fetched from a remote URL.
	SourceURL SourceKind = "url"
)

// Document represents an ingested legal document.
// It is owned by the ingestion pipeline during processing and is
// read-only afterwards except for status transitions, which the
// pipeline owns exclusively.
type Document struct {
	// ID is the unique identifier, assigned at ingestion.
	ID string

	// KnowledgeBaseID groups the document for scoped retrieval.
	// Empty means the document belongs to no knowledge base.
	KnowledgeBaseID string

	// ConversationID attaches the document to a conversation.
	// Empty means the document is not conversation-scoped.
	ConversationID string

	// URI is the original location (file path or URL).
	URI string

	// Title is the human-readable title used in citations.
	Title string

	// Description is an optional caller-supplied summary.
	Description string

	// SourceKind records whether the bytes came from a file or a URL.
	SourceKind SourceKind

	// Content is the full extracted text. Populated once extraction
	// succeeds; chunk offsets point into this text.
	Content string

	// ByteSize is the raw size of the ingested content in bytes.
	ByteSize int64

	// Status is the current lifecycle state.
	Status DocumentStatus

	// ErrorMessage is the human-readable cause when Status is failed.
	ErrorMessage string

	// CreatedAt is when the ingestion request was accepted.
	CreatedAt time.Time

	// UpdatedAt is when the document last changed state.
	UpdatedAt time.Time
}

// Chunk is a contiguous, bounded-size passage of a document's text.
// Chunks are the unit of embedding and retrieval. They are created in
// bulk by the chunker and immutable once stored.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Index is the 0-based, contiguous position within the document.
	Index int

	// Content is the passage text, verbatim from the extracted
	// document text at [StartOffset, EndOffset).
	Content string

	// StartOffset is the byte offset where the passage begins.
	StartOffset int

	// EndOffset is the byte offset where the passage ends (exclusive).
	EndOffset int

	// TokenCount is the passage size as measured by the tokenizer
	// that sized it.
	TokenCount int

	// Embedding is the vector representation, set once embedded.
	Embedding []float32
}
