package session

import (
	"context"
	"sync"
	"time"
)

// MockSessionService is an in-memory SessionService for testing.
type MockSessionService struct {
	mu       sync.RWMutex
	sessions map[string]*ConversationContext

	// SaveErr and LoadErr, when set, are returned by every call.
	SaveErr error
	LoadErr error
	// Saves counts successful SaveContext calls.
	Saves int

	now func() time.Time
}

// NewMockSessionService creates an empty MockSessionService.
func NewMockSessionService() *MockSessionService {
	return &MockSessionService{
		sessions: make(map[string]*ConversationContext),
		now:      time.Now,
	}
}

// SaveContext saves the conversation context.
func (m *MockSessionService) SaveContext(ctx context.Context, sessionID string, context *ConversationContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}

	now := m.now().Unix()
	if context.CreatedAt == 0 {
		context.CreatedAt = now
	}
	context.UpdatedAt = now
	context.SessionID = sessionID

	m.sessions[sessionID] = context.Clone()
	m.Saves++
	return nil
}

// LoadContext loads the conversation context.
func (m *MockSessionService) LoadContext(ctx context.Context, sessionID string) (*ConversationContext, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.sessions[sessionID].Clone(), nil
}

// DeleteContext deletes a session.
func (m *MockSessionService) DeleteContext(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// CleanupExpired removes sessions not updated within retentionDays.
func (m *MockSessionService) CleanupExpired(ctx context.Context, retentionDays int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().AddDate(0, 0, -retentionDays).Unix()
	var deleted int64
	for id, s := range m.sessions {
		if s.UpdatedAt < cutoff {
			delete(m.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// SetSessionDirectly stores context as-is, keeping its timestamps.
func (m *MockSessionService) SetSessionDirectly(context *ConversationContext) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[context.SessionID] = context.Clone()
}

// Len returns the number of stored sessions.
func (m *MockSessionService) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Clear removes all sessions.
func (m *MockSessionService) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*ConversationContext)
}

// Ensure MockSessionService implements SessionService
var _ SessionService = (*MockSessionService)(nil)
