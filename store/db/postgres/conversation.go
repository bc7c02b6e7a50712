package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hrygo/agenda/store"
)

func (d *DB) UpsertConversation(ctx context.Context, upsert *store.Conversation) error {
	stmt := `
		INSERT INTO conversation (session_id, state, context_data, created_ts, updated_ts)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE SET
			state = EXCLUDED.state,
			context_data = EXCLUDED.context_data,
			updated_ts = EXCLUDED.updated_ts`
	if _, err := d.db.ExecContext(ctx, stmt,
		upsert.SessionID, upsert.State, string(upsert.ContextData), upsert.CreatedTs, upsert.UpdatedTs,
	); err != nil {
		return fmt.Errorf("failed to upsert conversation: %w", err)
	}
	return nil
}

func (d *DB) GetConversation(ctx context.Context, sessionID string) (*store.Conversation, error) {
	query := `
		SELECT session_id, state, context_data, created_ts, updated_ts
		FROM conversation
		WHERE session_id = $1`

	var conversation store.Conversation
	err := d.db.QueryRowContext(ctx, query, sessionID).Scan(
		&conversation.SessionID,
		&conversation.State,
		&conversation.ContextData,
		&conversation.CreatedTs,
		&conversation.UpdatedTs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conversation, nil
}

func (d *DB) DeleteConversations(ctx context.Context, delete *store.DeleteConversation) (int64, error) {
	where, args := []string{}, []any{}
	if v := delete.SessionID; v != nil {
		where, args = append(where, "session_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := delete.UpdatedBefore; v != nil {
		where, args = append(where, "updated_ts < "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(where) == 0 {
		return 0, errors.New("refusing to delete every conversation")
	}

	result, err := d.db.ExecContext(ctx, `DELETE FROM conversation WHERE `+strings.Join(where, " AND "), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete conversations: %w", err)
	}
	return result.RowsAffected()
}
