package domain

import "time"

// DefaultTopK is the number of passages retrieved when the caller
// does not specify one.
const DefaultTopK = 5

// DefaultTemperature is the language-model temperature used when the
// query does not specify one.
const DefaultTemperature = 0.3

// Scope restricts retrieval to a knowledge base, a single document,
// or the documents attached to a conversation. At most one field is
// set; the zero value means global (unscoped) retrieval.
type Scope struct {
	KnowledgeBaseID string
	DocumentID      string
	ConversationID  string
}

// IsZero reports whether the scope is unrestricted.
func (s Scope) IsZero() bool {
	return s.KnowledgeBaseID == "" && s.DocumentID == "" && s.ConversationID == ""
}

// Matches reports whether a record with the given ownership falls
// inside the scope.
func (s Scope) Matches(knowledgeBaseID, documentID, conversationID string) bool {
	if s.KnowledgeBaseID != "" && s.KnowledgeBaseID != knowledgeBaseID {
		return false
	}
	if s.DocumentID != "" && s.DocumentID != documentID {
		return false
	}
	if s.ConversationID != "" && s.ConversationID != conversationID {
		return false
	}
	return true
}

// Query is an ephemeral question against the indexed corpus.
// Queries are read-only with respect to persisted state.
type Query struct {
	// Text is the question.
	Text string

	// Scope optionally restricts retrieval.
	Scope Scope

	// TopK is the number of passages to retrieve (DefaultTopK if 0).
	TopK int

	// Temperature is passed through to the language model.
	Temperature float64

	// MinScore drops passages scoring below the floor. Zero means
	// no floor.
	MinScore float64
}

// RetrievedPassage is one ranked retrieval hit joined back to its
// document metadata for citation display.
type RetrievedPassage struct {
	ChunkID           string
	DocumentID        string
	DocumentTitle     string
	KnowledgeBaseID   string
	KnowledgeBaseName string
	ChunkIndex        int
	Content           string

	// Score is the cosine similarity to the query vector, in [-1, 1].
	Score float64
}

// Citation references a source document passage supporting part of a
// generated answer. Citations are deduplicated by (document title,
// knowledge base), keeping the highest-scored instance.
type Citation struct {
	DocumentID    string
	DocumentTitle string
	KnowledgeBase string
	ChunkIndex    int
	Excerpt       string
	Score         float64
}

// Timings records elapsed wall-clock durations around the retrieval
// and language-model calls. Purely observational.
type Timings struct {
	Retrieval time.Duration
	LLM       time.Duration
	Total     time.Duration
}

// Answer is a cited response to a Query. Empty Citations with a
// non-empty Text is a valid outcome ("no relevant passages found" is
// not an error).
type Answer struct {
	Text      string
	Citations []Citation
	Timings   Timings
}

// VectorRecord is one indexed vector, identified by its owning chunk.
// Every record in one index instance has identical dimensionality.
type VectorRecord struct {
	ChunkID         string
	DocumentID      string
	KnowledgeBaseID string
	ConversationID  string
	Vector          []float32
}
