// Package aitime resolves Spanish date expressions, as extracted from a
// conversation, into concrete instants.
package aitime

import (
	"context"
	"time"
)

// TimeService defines the time parsing service interface.
type TimeService interface {
	// Normalize resolves a single date expression relative to reference.
	// Supports: "mañana a las 10", "el sábado", "15 de marzo", "2024/01/09 10:00:00"
	Normalize(ctx context.Context, input string, reference time.Time) (time.Time, error)

	// ParseNaturalTime parses range expressions such as "esta semana".
	// A single instant yields a one-hour range.
	ParseNaturalTime(ctx context.Context, input string, reference time.Time) (TimeRange, error)
}

// TimeRange represents a time range.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies in [Start, End).
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}
