package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/agenda/plugin/ai/cache"
	"github.com/hrygo/agenda/store"
	teststore "github.com/hrygo/agenda/store/test"
)

// memStore is an in-memory Store.
type memStore struct {
	mu      sync.Mutex
	rows    map[string]store.Conversation
	getErr  error
	gets    int
	deletes []store.DeleteConversation
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]store.Conversation)}
}

func (m *memStore) UpsertConversation(_ context.Context, upsert *store.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[upsert.SessionID] = *upsert
	return nil
}

func (m *memStore) GetConversation(_ context.Context, sessionID string) (*store.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	row, ok := m.rows[sessionID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (m *memStore) DeleteConversations(_ context.Context, d *store.DeleteConversation) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, *d)
	var n int64
	for id, row := range m.rows {
		if (d.SessionID != nil && id == *d.SessionID) || (d.UpdatedBefore != nil && row.UpdatedTs < *d.UpdatedBefore) {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

func proposedContext() *ConversationContext {
	c := NewConversationContext("")
	c.State = StateAwaitingConfirmation
	c.Reservation = Reservation{
		Status: ReservationProposed,
		Start:  time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		End:    time.Date(2024, 3, 15, 10, 45, 0, 0, time.UTC),
	}
	c.AddMessage(RoleUser, "el 15 de marzo a las 10")
	return c
}

func TestSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newMemStore()
	svc := NewSessionStore(db, nil)

	require.NoError(t, svc.SaveContext(ctx, "s1", proposedContext()))

	row := db.rows["s1"]
	assert.Equal(t, "awaiting_confirmation", row.State)
	assert.JSONEq(t, `{
		"messages": [{"role": "user", "content": "el 15 de marzo a las 10"}],
		"reservation": {"status": "proposed", "start": "2024-03-15T10:00:00Z", "end": "2024-03-15T10:45:00Z"}
	}`, string(row.ContextData))

	loaded, err := svc.LoadContext(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingConfirmation, loaded.State)
	assert.True(t, loaded.Reservation.Start.Equal(proposedContext().Reservation.Start))
	assert.Equal(t, ReservationProposed, loaded.Reservation.Status)
	assert.Len(t, loaded.Messages, 1)

	missing, err := svc.LoadContext(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSessionStoreUsesCache(t *testing.T) {
	ctx := context.Background()
	db := newMemStore()
	c := cache.NewMockCacheService()
	svc := NewSessionStore(db, c)

	require.NoError(t, svc.SaveContext(ctx, "s1", proposedContext()))
	assert.Equal(t, 1, c.Size())

	_, err := svc.LoadContext(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, db.gets, "cached session should not hit the database")

	require.NoError(t, svc.DeleteContext(ctx, "s1"))
	assert.Zero(t, c.Size())

	loaded, err := svc.LoadContext(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
	assert.Equal(t, 1, db.gets)
}

func TestSessionStoreCacheFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMockCacheService()
	c.Err = errors.New("cache down")
	svc := NewSessionStore(newMemStore(), c)

	require.NoError(t, svc.SaveContext(ctx, "s1", proposedContext()))
	loaded, err := svc.LoadContext(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingConfirmation, loaded.State)
}

func TestSessionStoreLoadError(t *testing.T) {
	db := newMemStore()
	db.getErr = errors.New("boom")
	_, err := NewSessionStore(db, nil).LoadContext(context.Background(), "s1")
	assert.ErrorContains(t, err, "boom")
}

func TestSessionStoreCorruptData(t *testing.T) {
	db := newMemStore()
	db.rows["bad"] = store.Conversation{SessionID: "bad", State: "awaiting_confirmation", ContextData: []byte("{not json")}

	loaded, err := NewSessionStore(db, nil).LoadContext(context.Background(), "bad")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, loaded.State)
	assert.Equal(t, ReservationNone, loaded.Reservation.Status)
	assert.Empty(t, loaded.Messages)
}

func TestSessionStoreCleanupExpired(t *testing.T) {
	ctx := context.Background()
	db := newMemStore()
	c := cache.NewMockCacheService()
	s := NewSessionStore(db, c).(*sessionStore)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now.AddDate(0, 0, -40) }
	require.NoError(t, s.SaveContext(ctx, "old", NewConversationContext("")))
	s.now = func() time.Time { return now }
	require.NoError(t, s.SaveContext(ctx, "new", NewConversationContext("")))

	deleted, err := s.CleanupExpired(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Contains(t, db.rows, "new")
	assert.NotContains(t, db.rows, "old")
	assert.Zero(t, c.Size(), "cleanup flushes cached sessions")

	require.Len(t, db.deletes, 1)
	require.NotNil(t, db.deletes[0].UpdatedBefore)
	assert.Equal(t, now.AddDate(0, 0, -30).Unix(), *db.deletes[0].UpdatedBefore)
}

func TestSessionStoreWithDatabase(t *testing.T) {
	ctx := context.Background()
	ts := teststore.NewTestingStore(ctx, t)
	svc := NewSessionStore(ts, nil)

	require.NoError(t, svc.SaveContext(ctx, "db-1", proposedContext()))

	c := proposedContext()
	c.State = StateConfirmed
	c.Reservation.Status = ReservationConfirmed
	require.NoError(t, svc.SaveContext(ctx, "db-1", c))

	loaded, err := svc.LoadContext(ctx, "db-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, StateConfirmed, loaded.State)
	assert.Equal(t, ReservationConfirmed, loaded.Reservation.Status)

	require.NoError(t, svc.DeleteContext(ctx, "db-1"))
	loaded, err = svc.LoadContext(ctx, "db-1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
