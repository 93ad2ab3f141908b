package domain

// RawDocument represents opaque bytes prior to text extraction.
// It is the input to the extractor registry.
type RawDocument struct {
	// KnowledgeBaseID optionally scopes the resulting document.
	KnowledgeBaseID string

	// ConversationID optionally attaches the resulting document to a
	// conversation.
	ConversationID string

	// URI is the original location (file path or URL).
	URI string

	// MIMEType is the content type (e.g. "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Title is an optional caller-supplied title. Extractors may
	// derive one from the content when empty.
	Title string

	// Description is an optional caller-supplied summary.
	Description string

	// SourceKind records whether the bytes came from a file or a URL.
	SourceKind SourceKind
}
