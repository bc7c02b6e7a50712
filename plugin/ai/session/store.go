package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hrygo/agenda/plugin/ai/cache"
	"github.com/hrygo/agenda/store"
)

const (
	cachePrefix = "session:"
	cacheTTL    = 30 * time.Minute
)

// Store is the subset of the store used for conversations.
type Store interface {
	UpsertConversation(ctx context.Context, upsert *store.Conversation) error
	GetConversation(ctx context.Context, sessionID string) (*store.Conversation, error)
	DeleteConversations(ctx context.Context, delete *store.DeleteConversation) (int64, error)
}

// sessionStore implements SessionService with SQL persistence and caching.
type sessionStore struct {
	store Store
	cache cache.CacheService
	now   func() time.Time
}

// NewSessionStore creates a new session store. cache may be nil.
func NewSessionStore(store Store, cache cache.CacheService) SessionService {
	return &sessionStore{
		store: store,
		cache: cache,
		now:   time.Now,
	}
}

// contextData is the JSON stored in conversation.context_data.
type contextData struct {
	Messages    []Message   `json:"messages"`
	Reservation Reservation `json:"reservation"`
}

// SaveContext saves the conversation context.
func (s *sessionStore) SaveContext(ctx context.Context, sessionID string, context *ConversationContext) error {
	now := s.now().Unix()
	if context.CreatedAt == 0 {
		context.CreatedAt = now
	}
	context.UpdatedAt = now
	context.SessionID = sessionID
	if context.State == "" {
		context.State = StateIdle
	}

	data, err := json.Marshal(contextData{
		Messages:    context.Messages,
		Reservation: context.Reservation,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}

	if err := s.store.UpsertConversation(ctx, &store.Conversation{
		SessionID:   sessionID,
		State:       string(context.State),
		ContextData: data,
		CreatedTs:   context.CreatedAt,
		UpdatedTs:   context.UpdatedAt,
	}); err != nil {
		return fmt.Errorf("failed to save context: %w", err)
	}

	s.updateCache(ctx, sessionID, context)
	return nil
}

// LoadContext loads the conversation context.
func (s *sessionStore) LoadContext(ctx context.Context, sessionID string) (*ConversationContext, error) {
	if cached := s.loadFromCache(ctx, sessionID); cached != nil {
		return cached, nil
	}

	conversation, err := s.store.GetConversation(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load context: %w", err)
	}
	if conversation == nil {
		return nil, nil // New session
	}

	result := &ConversationContext{
		SessionID: conversation.SessionID,
		State:     State(conversation.State),
		CreatedAt: conversation.CreatedTs,
		UpdatedAt: conversation.UpdatedTs,
	}

	var data contextData
	if err := json.Unmarshal(conversation.ContextData, &data); err != nil {
		// A corrupt transcript restarts the conversation rather than blocking it.
		slog.Warn("failed to unmarshal context data", "session_id", sessionID, "error", err)
		result.State = StateIdle
		result.Messages = []Message{}
		result.Reservation = Reservation{Status: ReservationNone}
	} else {
		result.Messages = data.Messages
		result.Reservation = data.Reservation
	}
	if result.Reservation.Status == "" {
		result.Reservation.Status = ReservationNone
	}

	s.updateCache(ctx, sessionID, result)
	return result, nil
}

// DeleteContext deletes a session.
func (s *sessionStore) DeleteContext(ctx context.Context, sessionID string) error {
	if _, err := s.store.DeleteConversations(ctx, &store.DeleteConversation{SessionID: &sessionID}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	// Idempotent: fine if the key is not cached.
	s.invalidateCache(ctx, sessionID)
	return nil
}

// CleanupExpired removes sessions older than retentionDays.
func (s *sessionStore) CleanupExpired(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := s.now().AddDate(0, 0, -retentionDays).Unix()

	deleted, err := s.store.DeleteConversations(ctx, &store.DeleteConversation{UpdatedBefore: &cutoff})
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired sessions: %w", err)
	}
	if deleted > 0 {
		// Cached copies of removed sessions would otherwise outlive them.
		s.invalidateCache(ctx, "*")
	}
	return deleted, nil
}

// updateCache stores context in cache.
func (s *sessionStore) updateCache(ctx context.Context, sessionID string, context *ConversationContext) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(context)
	if err != nil {
		slog.Warn("failed to marshal context for cache", "error", err)
		return
	}

	key := cachePrefix + sessionID
	if err := s.cache.Set(ctx, key, data, cacheTTL); err != nil {
		slog.Warn("failed to update cache", "key", key, "error", err)
	}
}

// loadFromCache retrieves context from cache.
func (s *sessionStore) loadFromCache(ctx context.Context, sessionID string) *ConversationContext {
	if s.cache == nil {
		return nil
	}

	key := cachePrefix + sessionID
	data, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil
	}

	var context ConversationContext
	if err := json.Unmarshal(data, &context); err != nil {
		slog.Warn("failed to unmarshal cached context", "key", key, "error", err)
		return nil
	}

	return &context
}

// invalidateCache removes context from cache.
func (s *sessionStore) invalidateCache(ctx context.Context, sessionID string) {
	if s.cache == nil {
		return
	}

	key := cachePrefix + sessionID
	if err := s.cache.Invalidate(ctx, key); err != nil {
		slog.Warn("failed to invalidate cache", "key", key, "error", err)
	}
}

// Ensure sessionStore implements SessionService
var _ SessionService = (*sessionStore)(nil)
