package store

import "context"

// Conversation is the persisted state of one chat session.
type Conversation struct {
	SessionID string
	State     string
	// ContextData is the JSON encoded transcript and reservation.
	ContextData []byte
	CreatedTs   int64
	UpdatedTs   int64
}

// DeleteConversation deletes a single session or every session idle since UpdatedBefore.
type DeleteConversation struct {
	SessionID     *string
	UpdatedBefore *int64
}

// UpsertConversation inserts or replaces a conversation (last write wins).
func (s *Store) UpsertConversation(ctx context.Context, upsert *Conversation) error {
	return s.driver.UpsertConversation(ctx, upsert)
}

// GetConversation returns the conversation for sessionID, or nil when it does not exist.
func (s *Store) GetConversation(ctx context.Context, sessionID string) (*Conversation, error) {
	return s.driver.GetConversation(ctx, sessionID)
}

// DeleteConversations deletes conversations and returns how many rows were removed.
func (s *Store) DeleteConversations(ctx context.Context, delete *DeleteConversation) (int64, error) {
	return s.driver.DeleteConversations(ctx, delete)
}
