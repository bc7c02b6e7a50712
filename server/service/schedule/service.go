// Package schedule holds the calendar arithmetic used to arbitrate meeting
// requests: half-hour rounding, business hours, endpoint conflict checks and
// the next-available search.
//
// The service layer exposes the store-backed calendar as a CalendarSource for
// the arbiter and persists confirmed reservations as bookings.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/agenda/store"
)

// Store is the interface for store operations needed by the schedule service.
type Store interface {
	CreateBooking(ctx context.Context, create *store.Booking) (*store.Booking, error)
	ListBookings(ctx context.Context, find *store.FindBooking) ([]*store.Booking, error)
}

type service struct {
	store Store
	loc   *time.Location
}

// NewService creates a new calendar service. Booking instants are reported in loc.
func NewService(store Store, loc *time.Location) Service {
	if loc == nil {
		loc = time.Local
	}
	return &service{store: store, loc: loc}
}

// ListOccupied returns every active booking. The result is never cached.
func (s *service) ListOccupied(ctx context.Context) ([]OccupiedRecord, error) {
	normalStatus := store.Normal
	list, err := s.store.ListBookings(ctx, &store.FindBooking{RowStatus: &normalStatus})
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	records := make([]OccupiedRecord, 0, len(list))
	for _, b := range list {
		records = append(records, OccupiedRecord{
			UID:   b.UID,
			Name:  b.Name,
			Start: time.Unix(b.StartTs, 0).In(s.loc),
		})
	}
	return records, nil
}

// ConfirmReservation stores the confirmed slot as a booking of the session.
// Two sessions confirming the same slot are not arbitrated against each other.
func (s *service) ConfirmReservation(ctx context.Context, sessionID string, slot ResolvedSlot) error {
	booking, err := s.store.CreateBooking(ctx, &store.Booking{
		UID:       shortuuid.New(),
		SessionID: sessionID,
		StartTs:   slot.Start.Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to confirm reservation: %w", err)
	}

	slog.Info("reservation confirmed",
		"session_id", sessionID,
		"booking_uid", booking.UID,
		"start", slot.Start,
	)
	return nil
}

// AddBooking records an occupied meeting entered by an operator.
func (s *service) AddBooking(ctx context.Context, name string, start time.Time) (*store.Booking, error) {
	if start.IsZero() {
		return nil, fmt.Errorf("booking start is required")
	}
	booking, err := s.store.CreateBooking(ctx, &store.Booking{
		UID:     shortuuid.New(),
		Name:    name,
		StartTs: start.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add booking: %w", err)
	}
	return booking, nil
}
