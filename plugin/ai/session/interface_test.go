package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversationContext(t *testing.T) {
	c := NewConversationContext("s1")
	assert.Equal(t, "s1", c.SessionID)
	assert.Equal(t, StateIdle, c.State)
	assert.Equal(t, ReservationNone, c.Reservation.Status)
	assert.Empty(t, c.Messages)
}

func TestAddMessageSlidingWindow(t *testing.T) {
	c := NewConversationContext("s1")
	for i := 0; i < MaxMessagesPerSession+5; i++ {
		c.AddMessage(RoleUser, fmt.Sprintf("msg-%d", i))
	}

	require.Len(t, c.Messages, MaxMessagesPerSession)
	assert.Equal(t, "msg-5", c.Messages[0].Content)
	assert.Equal(t, fmt.Sprintf("msg-%d", MaxMessagesPerSession+4), c.Messages[len(c.Messages)-1].Content)
}

func TestCloneIsDeep(t *testing.T) {
	c := NewConversationContext("s1")
	c.AddMessage(RoleUser, "hola")

	clone := c.Clone()
	clone.Messages[0].Content = "changed"
	clone.State = StateConfirmed

	assert.Equal(t, "hola", c.Messages[0].Content)
	assert.Equal(t, StateIdle, c.State)

	var nilCtx *ConversationContext
	assert.Nil(t, nilCtx.Clone())
}

// TestSessionServiceContract runs against the in-memory mock.
func TestSessionServiceContract(t *testing.T) {
	ctx := context.Background()
	svc := NewMockSessionService()

	t.Run("SaveContext_And_LoadContext", func(t *testing.T) {
		c := NewConversationContext("")
		c.State = StateAwaitingConfirmation
		c.Reservation = Reservation{
			Status: ReservationProposed,
			Start:  time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
			End:    time.Date(2024, 3, 15, 10, 45, 0, 0, time.UTC),
		}
		c.AddMessage(RoleUser, "mañana a las 10")
		c.AddMessage(RoleAssistant, "¿Confirmo tu reserva?")

		require.NoError(t, svc.SaveContext(ctx, "contract-1", c))

		loaded, err := svc.LoadContext(ctx, "contract-1")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, "contract-1", loaded.SessionID)
		assert.Equal(t, StateAwaitingConfirmation, loaded.State)
		assert.Equal(t, c.Reservation, loaded.Reservation)
		assert.Len(t, loaded.Messages, 2)
		assert.NotZero(t, loaded.CreatedAt)
	})

	t.Run("LoadContext_NonexistentSession", func(t *testing.T) {
		loaded, err := svc.LoadContext(ctx, "nonexistent-session")
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("LoadContext_ReturnsCopy", func(t *testing.T) {
		loaded, err := svc.LoadContext(ctx, "contract-1")
		require.NoError(t, err)
		loaded.Messages[0].Content = "mutated"

		again, err := svc.LoadContext(ctx, "contract-1")
		require.NoError(t, err)
		assert.Equal(t, "mañana a las 10", again.Messages[0].Content)
	})

	t.Run("DeleteContext", func(t *testing.T) {
		require.NoError(t, svc.DeleteContext(ctx, "contract-1"))
		loaded, err := svc.LoadContext(ctx, "contract-1")
		require.NoError(t, err)
		assert.Nil(t, loaded)

		// Deleting twice is not an error.
		assert.NoError(t, svc.DeleteContext(ctx, "contract-1"))
	})
}
