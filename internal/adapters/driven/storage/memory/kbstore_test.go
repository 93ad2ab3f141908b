package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

func TestKnowledgeBaseStore_SaveAndResolve(t *testing.T) {
	store := NewKnowledgeBaseStore()
	ctx := context.Background()

	kb := &domain.KnowledgeBase{ID: "kb-1", Name: "contracts"}
	require.NoError(t, store.SaveKnowledgeBase(ctx, kb))

	byID, err := store.GetKnowledgeBase(ctx, "kb-1")
	require.NoError(t, err)
	assert.Equal(t, "contracts", byID.Name)

	byName, err := store.GetKnowledgeBaseByName(ctx, "contracts")
	require.NoError(t, err)
	assert.Equal(t, "kb-1", byName.ID)

	_, err = store.GetKnowledgeBaseByName(ctx, "litigation")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKnowledgeBaseStore_List_OrderedByCreation(t *testing.T) {
	store := NewKnowledgeBaseStore()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveKnowledgeBase(ctx, &domain.KnowledgeBase{ID: "kb-2", Name: "b", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, store.SaveKnowledgeBase(ctx, &domain.KnowledgeBase{ID: "kb-1", Name: "a", CreatedAt: base}))

	list, err := store.ListKnowledgeBases(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "kb-1", list[0].ID)
	assert.Equal(t, "kb-2", list[1].ID)
}

func TestKnowledgeBaseStore_Delete(t *testing.T) {
	store := NewKnowledgeBaseStore()
	ctx := context.Background()

	require.NoError(t, store.SaveKnowledgeBase(ctx, &domain.KnowledgeBase{ID: "kb-1", Name: "contracts"}))
	require.NoError(t, store.DeleteKnowledgeBase(ctx, "kb-1"))

	_, err := store.GetKnowledgeBase(ctx, "kb-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConversationStore_Lifecycle(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveConversation(ctx, &domain.Conversation{ID: "conv-1", Title: "Lease review", CreatedAt: base}))
	require.NoError(t, store.SaveConversation(ctx, &domain.Conversation{ID: "conv-2", Title: "NDA questions", CreatedAt: base.Add(time.Hour)}))

	got, err := store.GetConversation(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "Lease review", got.Title)

	list, err := store.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "conv-2", list[0].ID, "newest first")

	require.NoError(t, store.DeleteConversation(ctx, "conv-1"))
	_, err = store.GetConversation(ctx, "conv-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
