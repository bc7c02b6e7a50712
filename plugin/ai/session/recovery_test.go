package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverSession(t *testing.T) {
	ctx := context.Background()
	svc := NewMockSessionService()
	recovery := NewSessionRecovery(svc)

	t.Run("new session is idle and unsaved", func(t *testing.T) {
		c, err := recovery.RecoverSession(ctx, "fresh")
		require.NoError(t, err)
		assert.Equal(t, "fresh", c.SessionID)
		assert.Equal(t, StateIdle, c.State)
		assert.Equal(t, 0, svc.Len())
	})

	t.Run("existing session is returned", func(t *testing.T) {
		existing := NewConversationContext("known")
		existing.State = StateAwaitingConfirmation
		svc.SetSessionDirectly(existing)

		c, err := recovery.RecoverSession(ctx, "known")
		require.NoError(t, err)
		assert.Equal(t, StateAwaitingConfirmation, c.State)
	})

	t.Run("load failure", func(t *testing.T) {
		failing := NewMockSessionService()
		failing.LoadErr = errors.New("db down")

		_, err := NewSessionRecovery(failing).RecoverSession(ctx, "x")
		assert.ErrorContains(t, err, "db down")
	})
}

func TestAppendTurn(t *testing.T) {
	ctx := context.Background()
	svc := NewMockSessionService()
	recovery := NewSessionRecovery(svc)

	require.NoError(t, recovery.AppendTurn(ctx, "s1", "hola", "Dame un momento", "¿Confirmo?"))
	require.NoError(t, recovery.AppendTurn(ctx, "s1", "sí"))

	msgs, err := recovery.GetRecentMessages(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, Message{Role: RoleUser, Content: "hola"}, msgs[0])
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, Message{Role: RoleUser, Content: "sí"}, msgs[3])

	last, err := recovery.GetRecentMessages(ctx, "s1", 2)
	require.NoError(t, err)
	assert.Equal(t, "¿Confirmo?", last[0].Content)

	none, err := recovery.GetRecentMessages(ctx, "unknown", 2)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	svc := NewMockSessionService()
	recovery := NewSessionRecovery(svc)

	c := NewConversationContext("s1")
	c.State = StateConfirmed
	c.Reservation.Status = ReservationConfirmed
	c.AddMessage(RoleUser, "hola")
	require.NoError(t, svc.SaveContext(ctx, "s1", c))

	require.NoError(t, recovery.Reset(ctx, "s1"))

	loaded, err := svc.LoadContext(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, loaded.State)
	assert.Equal(t, ReservationNone, loaded.Reservation.Status)
	assert.Empty(t, loaded.Messages)
	assert.Equal(t, c.CreatedAt, loaded.CreatedAt)

	assert.Error(t, recovery.Reset(ctx, "missing"))
}
