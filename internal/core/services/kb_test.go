package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-labs/counsel/internal/adapters/driven/storage/memory"
	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driving"
)

// --- Mock implementations for knowledge base testing ---

// kbMockIngest implements driving.IngestService, tracking deletions
// against a fixed document set.
type kbMockIngest struct {
	docs      []domain.Document
	deleted   []string
	deleteErr error
}

func (m *kbMockIngest) Ingest(_ context.Context, _ *domain.RawDocument) (*domain.Document, error) {
	return nil, errors.New("not implemented")
}

func (m *kbMockIngest) Wait(_ context.Context, _ string) (*domain.Document, error) {
	return nil, errors.New("not implemented")
}

func (m *kbMockIngest) Get(_ context.Context, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (m *kbMockIngest) List(_ context.Context, scope domain.Scope) ([]domain.Document, error) {
	var result []domain.Document
	for _, doc := range m.docs {
		if scope.Matches(doc.KnowledgeBaseID, doc.ID, doc.ConversationID) {
			result = append(result, doc)
		}
	}
	return result, nil
}

func (m *kbMockIngest) Delete(_ context.Context, documentID string) error {
	m.deleted = append(m.deleted, documentID)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	remaining := make([]domain.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		if doc.ID != documentID {
			remaining = append(remaining, doc)
		}
	}
	m.docs = remaining
	return nil
}

func (m *kbMockIngest) Reindex(_ context.Context) error { return nil }

var _ driving.IngestService = (*kbMockIngest)(nil)

// --- Tests ---

func TestKnowledgeBaseService_Create(t *testing.T) {
	kbStore := memory.NewKnowledgeBaseStore()
	svc := NewKnowledgeBaseService(kbStore, memory.NewConversationStore(), &kbMockIngest{})

	kb, err := svc.Create(context.Background(), "  contracts  ", "commercial agreements")

	require.NoError(t, err)
	assert.NotEmpty(t, kb.ID)
	assert.Equal(t, "contracts", kb.Name, "names are trimmed")
	assert.Equal(t, "commercial agreements", kb.Description)
	assert.False(t, kb.CreatedAt.IsZero())

	stored, err := kbStore.GetKnowledgeBase(context.Background(), kb.ID)
	require.NoError(t, err)
	assert.Equal(t, "contracts", stored.Name)
}

func TestKnowledgeBaseService_Create_EmptyName(t *testing.T) {
	svc := NewKnowledgeBaseService(memory.NewKnowledgeBaseStore(), memory.NewConversationStore(), &kbMockIngest{})

	_, err := svc.Create(context.Background(), "   ", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestKnowledgeBaseService_Create_DuplicateName(t *testing.T) {
	svc := NewKnowledgeBaseService(memory.NewKnowledgeBaseStore(), memory.NewConversationStore(), &kbMockIngest{})

	_, err := svc.Create(context.Background(), "contracts", "")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "contracts", "")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestKnowledgeBaseService_Resolve(t *testing.T) {
	kbStore := memory.NewKnowledgeBaseStore()
	svc := NewKnowledgeBaseService(kbStore, memory.NewConversationStore(), &kbMockIngest{})

	created, err := svc.Create(context.Background(), "contracts", "")
	require.NoError(t, err)

	byID, err := svc.Resolve(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	byName, err := svc.Resolve(context.Background(), "contracts")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	_, err = svc.Resolve(context.Background(), "litigation")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKnowledgeBaseService_Delete_CascadesThroughIngest(t *testing.T) {
	kbStore := memory.NewKnowledgeBaseStore()
	ingest := &kbMockIngest{docs: []domain.Document{
		{ID: "doc-1", KnowledgeBaseID: "kb-1"},
		{ID: "doc-2", KnowledgeBaseID: "kb-1"},
		{ID: "doc-3", KnowledgeBaseID: "kb-other"},
	}}
	svc := NewKnowledgeBaseService(kbStore, memory.NewConversationStore(), ingest)

	require.NoError(t, kbStore.SaveKnowledgeBase(context.Background(), &domain.KnowledgeBase{ID: "kb-1", Name: "contracts"}))

	require.NoError(t, svc.Delete(context.Background(), "kb-1"))

	assert.ElementsMatch(t, []string{"doc-1", "doc-2"}, ingest.deleted)
	_, err := kbStore.GetKnowledgeBase(context.Background(), "kb-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKnowledgeBaseService_Delete_NotFound(t *testing.T) {
	svc := NewKnowledgeBaseService(memory.NewKnowledgeBaseStore(), memory.NewConversationStore(), &kbMockIngest{})

	err := svc.Delete(context.Background(), "kb-missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKnowledgeBaseService_Delete_ContinuesPastFailures(t *testing.T) {
	kbStore := memory.NewKnowledgeBaseStore()
	ingest := &kbMockIngest{
		docs:      []domain.Document{{ID: "doc-1", KnowledgeBaseID: "kb-1"}, {ID: "doc-2", KnowledgeBaseID: "kb-1"}},
		deleteErr: errors.New("index unavailable"),
	}
	svc := NewKnowledgeBaseService(kbStore, memory.NewConversationStore(), ingest)
	require.NoError(t, kbStore.SaveKnowledgeBase(context.Background(), &domain.KnowledgeBase{ID: "kb-1", Name: "contracts"}))

	require.NoError(t, svc.Delete(context.Background(), "kb-1"), "per-document failures must not abort the cascade")

	assert.Len(t, ingest.deleted, 2, "every document was attempted")
	_, err := kbStore.GetKnowledgeBase(context.Background(), "kb-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKnowledgeBaseService_StartConversation(t *testing.T) {
	convStore := memory.NewConversationStore()
	svc := NewKnowledgeBaseService(memory.NewKnowledgeBaseStore(), convStore, &kbMockIngest{})

	conv, err := svc.StartConversation(context.Background(), "Lease review")
	require.NoError(t, err)
	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, "Lease review", conv.Title)

	untitled, err := svc.StartConversation(context.Background(), "  ")
	require.NoError(t, err)
	assert.Contains(t, untitled.Title, "Chat ", "blank titles get a timestamped default")
}

func TestKnowledgeBaseService_EndConversation(t *testing.T) {
	convStore := memory.NewConversationStore()
	ingest := &kbMockIngest{docs: []domain.Document{
		{ID: "doc-1", ConversationID: "conv-1"},
		{ID: "doc-2", KnowledgeBaseID: "kb-1"},
	}}
	svc := NewKnowledgeBaseService(memory.NewKnowledgeBaseStore(), convStore, ingest)

	require.NoError(t, convStore.SaveConversation(context.Background(), &domain.Conversation{ID: "conv-1", Title: "Chat"}))

	require.NoError(t, svc.EndConversation(context.Background(), "conv-1"))

	assert.Equal(t, []string{"doc-1"}, ingest.deleted, "only conversation-scoped documents go")
	_, err := convStore.GetConversation(context.Background(), "conv-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKnowledgeBaseService_EndConversation_NotFound(t *testing.T) {
	svc := NewKnowledgeBaseService(memory.NewKnowledgeBaseStore(), memory.NewConversationStore(), &kbMockIngest{})

	err := svc.EndConversation(context.Background(), "conv-missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
