package session

import (
	"context"
	"fmt"
)

const (
	// MaxMessagesPerSession is the maximum number of messages to keep in a session.
	// Older messages fall out of the window and are not sent to the extractor.
	MaxMessagesPerSession = 40
)

// SessionRecovery loads sessions and records turns against them.
type SessionRecovery struct {
	sessionSvc SessionService
}

// NewSessionRecovery creates a new session recovery handler.
func NewSessionRecovery(sessionSvc SessionService) *SessionRecovery {
	return &SessionRecovery{
		sessionSvc: sessionSvc,
	}
}

// RecoverSession returns the stored context for sessionID, or a fresh idle
// one if the session is unknown. The fresh context is not saved.
func (r *SessionRecovery) RecoverSession(ctx context.Context, sessionID string) (*ConversationContext, error) {
	existing, err := r.sessionSvc.LoadContext(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if existing != nil {
		return existing, nil
	}
	return NewConversationContext(sessionID), nil
}

// AppendTurn adds a user message and the assistant replies to the session.
func (r *SessionRecovery) AppendTurn(ctx context.Context, sessionID string, userMsg string, replies ...string) error {
	session, err := r.RecoverSession(ctx, sessionID)
	if err != nil {
		return err
	}

	session.AddMessage(RoleUser, userMsg)
	for _, reply := range replies {
		session.AddMessage(RoleAssistant, reply)
	}

	return r.sessionSvc.SaveContext(ctx, sessionID, session)
}

// GetRecentMessages returns the last n messages from the session, or all of them when n <= 0.
func (r *SessionRecovery) GetRecentMessages(ctx context.Context, sessionID string, n int) ([]Message, error) {
	session, err := r.sessionSvc.LoadContext(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	messages := session.Transcript()
	if n > 0 && n < len(messages) {
		messages = messages[len(messages)-n:]
	}
	return messages, nil
}

// Reset returns the session to idle, dropping its transcript and reservation.
func (r *SessionRecovery) Reset(ctx context.Context, sessionID string) error {
	session, err := r.sessionSvc.LoadContext(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	fresh := NewConversationContext(sessionID)
	fresh.CreatedAt = session.CreatedAt
	return r.sessionSvc.SaveContext(ctx, sessionID, fresh)
}
