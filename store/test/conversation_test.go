package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/agenda/store"
)

func TestConversationStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	got, err := ts.GetConversation(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, ts.UpsertConversation(ctx, &store.Conversation{
		SessionID:   "s1",
		State:       "idle",
		ContextData: []byte(`{"messages":[]}`),
		CreatedTs:   100,
		UpdatedTs:   100,
	}))
	require.NoError(t, ts.UpsertConversation(ctx, &store.Conversation{
		SessionID:   "s1",
		State:       "awaiting_confirmation",
		ContextData: []byte(`{"messages":[{"role":"user","content":"hola"}]}`),
		CreatedTs:   100,
		UpdatedTs:   200,
	}))

	got, err = ts.GetConversation(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "awaiting_confirmation", got.State)
	require.Equal(t, int64(200), got.UpdatedTs)
	require.JSONEq(t, `{"messages":[{"role":"user","content":"hola"}]}`, string(got.ContextData))
}

func TestConversationStoreDelete(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	for i, id := range []string{"old", "older", "fresh"} {
		ts64 := int64([]int{50, 10, 500}[i])
		require.NoError(t, ts.UpsertConversation(ctx, &store.Conversation{
			SessionID: id, State: "idle", ContextData: []byte(`{}`), CreatedTs: ts64, UpdatedTs: ts64,
		}))
	}

	_, err := ts.DeleteConversations(ctx, &store.DeleteConversation{})
	require.Error(t, err)

	before := int64(100)
	n, err := ts.DeleteConversations(ctx, &store.DeleteConversation{UpdatedBefore: &before})
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	id := "fresh"
	n, err = ts.DeleteConversations(ctx, &store.DeleteConversation{SessionID: &id})
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	got, err := ts.GetConversation(ctx, "fresh")
	require.NoError(t, err)
	require.Nil(t, got)
}
