package mcp

import (
	"context"

	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driving"
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer    *domain.Answer
	summary   string
	err       error
	lastQuery domain.Query
}

func (m *mockAskService) Ask(_ context.Context, query domain.Query) (*domain.Answer, error) {
	m.lastQuery = query
	return m.answer, m.err
}

func (m *mockAskService) Retrieve(_ context.Context, query domain.Query) ([]domain.RetrievedPassage, error) {
	m.lastQuery = query
	return nil, m.err
}

func (m *mockAskService) Summarise(_ context.Context, _ string, _ int) (string, error) {
	return m.summary, m.err
}

func (m *mockAskService) SummariseScope(_ context.Context, _ domain.Scope, _ int) (string, error) {
	return m.summary, m.err
}

func (m *mockAskService) Chat(
	_ context.Context, query domain.Query, _ []driving.ChatTurn,
) (*domain.Answer, error) {
	m.lastQuery = query
	return m.answer, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	doc       *domain.Document
	docs      []domain.Document
	err       error
	lastRaw   *domain.RawDocument
	lastScope domain.Scope
}

func (m *mockIngestService) Ingest(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	m.lastRaw = raw
	return m.doc, m.err
}

func (m *mockIngestService) Wait(_ context.Context, _ string) (*domain.Document, error) {
	return m.doc, m.err
}

func (m *mockIngestService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.doc, m.err
}

func (m *mockIngestService) List(_ context.Context, scope domain.Scope) ([]domain.Document, error) {
	m.lastScope = scope
	return m.docs, m.err
}

func (m *mockIngestService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockIngestService) Reindex(_ context.Context) error {
	return m.err
}

// mockKBService is a mock implementation of driving.KnowledgeBaseService.
type mockKBService struct {
	kb   *domain.KnowledgeBase
	kbs  []domain.KnowledgeBase
	conv *domain.Conversation
	err  error
}

func (m *mockKBService) Create(_ context.Context, _, _ string) (*domain.KnowledgeBase, error) {
	return m.kb, m.err
}

func (m *mockKBService) Get(_ context.Context, _ string) (*domain.KnowledgeBase, error) {
	return m.kb, m.err
}

func (m *mockKBService) Resolve(_ context.Context, _ string) (*domain.KnowledgeBase, error) {
	return m.kb, m.err
}

func (m *mockKBService) List(_ context.Context) ([]domain.KnowledgeBase, error) {
	return m.kbs, m.err
}

func (m *mockKBService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockKBService) StartConversation(_ context.Context, _ string) (*domain.Conversation, error) {
	return m.conv, m.err
}

func (m *mockKBService) EndConversation(_ context.Context, _ string) error {
	return m.err
}
