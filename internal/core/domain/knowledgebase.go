package domain

import "time"

// KnowledgeBase is a named grouping of documents used to scope
// retrieval. The query path treats it purely as a filter key.
type KnowledgeBase struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Conversation is a session that documents can be attached to.
// Conversation scope resolves to the set of attached document IDs.
type Conversation struct {
	ID        string
	Title     string
	CreatedAt time.Time
}
