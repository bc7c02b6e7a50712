// Package schedule arbitrates appointment requests made in conversation:
// it resolves the requested time, checks it against the business hours and
// the booked calendar, and walks the session through confirmation.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hrygo/agenda/plugin/ai/aitime"
	"github.com/hrygo/agenda/plugin/ai/session"
	sched "github.com/hrygo/agenda/server/service/schedule"
)

// DateExtractor finds the requested date expression in a transcript.
// It returns "" when the conversation holds no date.
type DateExtractor interface {
	ExtractDate(ctx context.Context, transcript []session.Message) (string, error)
}

// GenericKeywords mark a request for any available slot.
var GenericKeywords = []string{"turno", "cualquier horario", "primer horario disponible"}

// IsGenericRequest reports whether expr asks for any slot rather than a date.
func IsGenericRequest(expr string) bool {
	lower := strings.ToLower(expr)
	for _, kw := range GenericKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Resolution is a date expression turned into a candidate slot.
type Resolution struct {
	Request sched.BookingRequest
	Slot    sched.ResolvedSlot
}

// Resolver turns a transcript into a ResolvedSlot.
type Resolver struct {
	extractor DateExtractor
	times     aitime.TimeService
	duration  time.Duration
}

// NewResolver creates a resolver for meetings of the given duration.
func NewResolver(extractor DateExtractor, times aitime.TimeService, duration time.Duration) *Resolver {
	return &Resolver{
		extractor: extractor,
		times:     times,
		duration:  duration,
	}
}

// Resolve extracts the requested date from transcript and resolves it against now.
// It returns ErrMissingDate, ErrGenericSlotRequested, ErrUnparsableDate or ErrInvalidDate
// when no concrete slot can be produced.
func (r *Resolver) Resolve(ctx context.Context, transcript []session.Message, now time.Time) (*Resolution, error) {
	expr, err := r.extractor.ExtractDate(ctx, transcript)
	if err != nil {
		slog.Warn("date extraction failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrMissingDate, err)
	}
	return r.ResolveExpression(ctx, expr, now)
}

// ResolveExpression resolves an already extracted expression.
func (r *Resolver) ResolveExpression(ctx context.Context, expr string, now time.Time) (*Resolution, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, ErrMissingDate
	}
	if IsGenericRequest(expr) {
		return nil, ErrGenericSlotRequested
	}

	parsed, err := r.times.Normalize(ctx, expr, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnparsableDate, expr, err)
	}

	slot := sched.NewResolvedSlot(parsed, r.duration)
	if !validInstant(slot.Start) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, expr)
	}

	return &Resolution{
		Request: sched.BookingRequest{RawExpression: expr},
		Slot:    slot,
	}, nil
}

func validInstant(t time.Time) bool {
	return !t.IsZero() && t.Year() >= 1 && t.Year() <= 9999
}
