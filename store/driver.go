package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Booking model related methods.
	CreateBooking(ctx context.Context, create *Booking) (*Booking, error)
	ListBookings(ctx context.Context, find *FindBooking) ([]*Booking, error)
	UpdateBooking(ctx context.Context, update *UpdateBooking) error

	// Conversation model related methods.
	UpsertConversation(ctx context.Context, upsert *Conversation) error
	GetConversation(ctx context.Context, sessionID string) (*Conversation, error)
	DeleteConversations(ctx context.Context, delete *DeleteConversation) (int64, error)
}
