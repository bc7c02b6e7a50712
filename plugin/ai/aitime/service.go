package aitime

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Service implements TimeService with rule-based parsing.
type Service struct {
	location *time.Location
}

// NewService creates a new time service interpreting expressions in loc.
func NewService(loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		location: loc,
	}
}

// Normalize resolves input relative to reference.
func (s *Service) Normalize(_ context.Context, input string, reference time.Time) (time.Time, error) {
	return NewParser(s.location).WithReference(reference).Parse(input)
}

// ParseNaturalTime parses natural language time expressions.
func (s *Service) ParseNaturalTime(ctx context.Context, input string, reference time.Time) (TimeRange, error) {
	ref := reference.In(s.location)

	// First try to parse as a time range keyword
	tr, err := s.parseRangeKeyword(strings.ToLower(strings.TrimSpace(input)), ref)
	if err == nil {
		return tr, nil
	}

	t, err := s.Normalize(ctx, input, ref)
	if err != nil {
		return TimeRange{}, err
	}

	// For specific times, default to 1-hour duration
	return TimeRange{
		Start: t,
		End:   t.Add(time.Hour),
	}, nil
}

// parseRangeKeyword parses range keywords like "hoy" or "la semana que viene".
func (s *Service) parseRangeKeyword(input string, ref time.Time) (TimeRange, error) {
	dayStart := startOfDay(ref)

	switch input {
	case "hoy":
		return TimeRange{Start: dayStart, End: dayStart.AddDate(0, 0, 1)}, nil
	case "mañana", "manana":
		start := dayStart.AddDate(0, 0, 1)
		return TimeRange{Start: start, End: start.AddDate(0, 0, 1)}, nil
	case "pasado mañana", "pasado manana":
		start := dayStart.AddDate(0, 0, 2)
		return TimeRange{Start: start, End: start.AddDate(0, 0, 1)}, nil
	}

	// Weeks start on Monday.
	weekday := int(ref.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := dayStart.AddDate(0, 0, -(weekday - 1))

	switch input {
	case "esta semana":
		return TimeRange{Start: monday, End: monday.AddDate(0, 0, 7)}, nil
	case "la semana que viene", "semana que viene", "la próxima semana", "próxima semana", "la proxima semana":
		start := monday.AddDate(0, 0, 7)
		return TimeRange{Start: start, End: start.AddDate(0, 0, 7)}, nil
	}

	monthStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())

	switch input {
	case "este mes":
		return TimeRange{Start: monthStart, End: monthStart.AddDate(0, 1, 0)}, nil
	case "el mes que viene", "mes que viene", "el próximo mes", "próximo mes":
		start := monthStart.AddDate(0, 1, 0)
		return TimeRange{Start: start, End: start.AddDate(0, 1, 0)}, nil
	}

	return TimeRange{}, fmt.Errorf("unable to parse time range: %s", input)
}

// Ensure Service implements TimeService
var _ TimeService = (*Service)(nil)
