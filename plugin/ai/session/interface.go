// Package session persists per-conversation state: the transcript, the
// arbiter state and the pending reservation.
package session

import (
	"context"
	"time"
)

// SessionService defines the session persistence service interface.
// Writes are last-write-wins; there is no transactional guarantee.
type SessionService interface {
	// SaveContext saves the conversation context.
	SaveContext(ctx context.Context, sessionID string, context *ConversationContext) error

	// LoadContext loads the conversation context, or nil for an unknown session.
	LoadContext(ctx context.Context, sessionID string) (*ConversationContext, error)

	// DeleteContext ends a session and discards its reservation.
	DeleteContext(ctx context.Context, sessionID string) error

	// CleanupExpired removes sessions idle for more than retentionDays.
	CleanupExpired(ctx context.Context, retentionDays int) (int64, error)
}

// State is the arbiter state persisted between turns.
type State string

const (
	StateIdle                 State = "idle"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateConfirmed            State = "confirmed"
)

// ReservationStatus tracks the slot offered to the user.
type ReservationStatus string

const (
	ReservationNone      ReservationStatus = "none"
	ReservationProposed  ReservationStatus = "proposed"
	ReservationConfirmed ReservationStatus = "confirmed"
)

// Reservation is the slot proposed to, or confirmed by, the user.
type Reservation struct {
	Status ReservationStatus `json:"status"`
	Start  time.Time         `json:"start,omitzero"`
	End    time.Time         `json:"end,omitzero"`
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message represents a conversation message.
type Message struct {
	Role    string `json:"role"` // "user" | "assistant" | "system"
	Content string `json:"content"`
}

// ConversationContext represents the conversation context.
type ConversationContext struct {
	SessionID   string      `json:"session_id"`
	State       State       `json:"state"`
	Messages    []Message   `json:"messages"`
	Reservation Reservation `json:"reservation"`
	CreatedAt   int64       `json:"created_at"`
	UpdatedAt   int64       `json:"updated_at"`
}

// NewConversationContext returns an idle context with no reservation.
func NewConversationContext(sessionID string) *ConversationContext {
	return &ConversationContext{
		SessionID:   sessionID,
		State:       StateIdle,
		Messages:    make([]Message, 0, 8),
		Reservation: Reservation{Status: ReservationNone},
	}
}

// AddMessage appends to the transcript, keeping the last MaxMessagesPerSession.
func (c *ConversationContext) AddMessage(role, content string) {
	c.Messages = append(c.Messages, Message{Role: role, Content: content})
	if len(c.Messages) > MaxMessagesPerSession {
		c.Messages = append([]Message(nil), c.Messages[len(c.Messages)-MaxMessagesPerSession:]...)
	}
}

// Transcript returns a copy of the messages.
func (c *ConversationContext) Transcript() []Message {
	out := make([]Message, len(c.Messages))
	copy(out, c.Messages)
	return out
}

// Clone returns a deep copy.
func (c *ConversationContext) Clone() *ConversationContext {
	if c == nil {
		return nil
	}
	out := *c
	out.Messages = c.Transcript()
	return &out
}
