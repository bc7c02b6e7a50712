package store

import (
	"context"
	"time"
)

// Booking is an occupied calendar slot. Only the start instant is persisted;
// the end is derived from the configured meeting duration.
type Booking struct {
	ID        int32
	UID       string
	SessionID string
	Name      string
	StartTs   int64
	CreatedTs int64
	RowStatus RowStatus
}

// FindBooking is the find condition for booking.
type FindBooking struct {
	ID        *int32
	UID       *string
	SessionID *string
	RowStatus *RowStatus

	// Time range filters on start_ts, [StartTsFrom, StartTsTo).
	StartTsFrom *int64
	StartTsTo   *int64

	Limit *int
}

// UpdateBooking is the update request for booking.
type UpdateBooking struct {
	ID        int32
	RowStatus *RowStatus
}

// StartTime returns the booking start as time.Time in the local location.
func (b *Booking) StartTime() time.Time {
	return time.Unix(b.StartTs, 0)
}

// CreateBooking creates a new booking.
func (s *Store) CreateBooking(ctx context.Context, create *Booking) (*Booking, error) {
	return s.driver.CreateBooking(ctx, create)
}

// ListBookings lists bookings ordered by start time.
func (s *Store) ListBookings(ctx context.Context, find *FindBooking) ([]*Booking, error) {
	return s.driver.ListBookings(ctx, find)
}

// GetBooking returns the first booking matching find, or nil.
func (s *Store) GetBooking(ctx context.Context, find *FindBooking) (*Booking, error) {
	limit := 1
	find.Limit = &limit
	list, err := s.driver.ListBookings(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateBooking updates a booking.
func (s *Store) UpdateBooking(ctx context.Context, update *UpdateBooking) error {
	return s.driver.UpdateBooking(ctx, update)
}
