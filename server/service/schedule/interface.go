package schedule

import (
	"context"
	"time"

	"github.com/hrygo/agenda/store"
)

// OccupiedRecord is one booked meeting as reported by a calendar source.
// Only the start instant is authoritative.
type OccupiedRecord struct {
	UID   string    `json:"uid,omitempty"`
	Name  string    `json:"name,omitempty"`
	Start time.Time `json:"start"`
}

// CalendarSource returns the booked meetings. Callers fetch a fresh list per decision.
type CalendarSource interface {
	ListOccupied(ctx context.Context) ([]OccupiedRecord, error)
}

// Confirmer receives an accepted slot once the user confirms it.
type Confirmer interface {
	ConfirmReservation(ctx context.Context, sessionID string, slot ResolvedSlot) error
}

// Service is the calendar backed by the store.
type Service interface {
	CalendarSource
	Confirmer

	// AddBooking records an occupied meeting starting at start.
	AddBooking(ctx context.Context, name string, start time.Time) (*store.Booking, error)
}

// BookingRequest is the raw date expression a user asked for.
type BookingRequest struct {
	RawExpression string
}

// ResolvedSlot is a candidate meeting. Start is on the half-hour grid.
type ResolvedSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewResolvedSlot rounds start up to the half-hour grid and spans duration.
func NewResolvedSlot(start time.Time, duration time.Duration) ResolvedSlot {
	rounded := RoundUpToHalfHour(start)
	return ResolvedSlot{Start: rounded, End: rounded.Add(duration)}
}

// Interval returns the slot as a closed interval.
func (s ResolvedSlot) Interval() TimeInterval {
	return TimeInterval{From: s.Start, To: s.End}
}

// OccupiedCalendar is the set of booked intervals for one decision.
type OccupiedCalendar []TimeInterval

// ToIntervals expands every record to [start, start+duration].
func ToIntervals(records []OccupiedRecord, duration time.Duration) OccupiedCalendar {
	calendar := make(OccupiedCalendar, 0, len(records))
	for _, r := range records {
		calendar = append(calendar, NewTimeInterval(r.Start, duration))
	}
	return calendar
}
