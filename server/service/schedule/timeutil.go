package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" in 24h notation.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// On returns the instant at this time of day on day's calendar date, in day's location.
func (d TimeOfDay) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), d.Hour, d.Minute, 0, 0, day.Location())
}

func (d TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute)
}

func (d TimeOfDay) minutes() int {
	return d.Hour*60 + d.Minute
}

// BusinessHoursPolicy is the daily window and the weekdays on which meetings may start.
// It is built once at start and never mutated.
type BusinessHoursPolicy struct {
	Open  TimeOfDay
	Close TimeOfDay
	Days  map[time.Weekday]bool
}

// NewBusinessHoursPolicy builds a policy; windows crossing midnight are rejected.
func NewBusinessHoursPolicy(open, close string, days []time.Weekday) (*BusinessHoursPolicy, error) {
	o, err := ParseTimeOfDay(open)
	if err != nil {
		return nil, err
	}
	c, err := ParseTimeOfDay(close)
	if err != nil {
		return nil, err
	}
	if c.minutes() < o.minutes() {
		return nil, fmt.Errorf("business hours %s-%s cross midnight", o, c)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("business hours need at least one weekday")
	}

	set := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	return &BusinessHoursPolicy{Open: o, Close: c, Days: set}, nil
}

// Weekdays returns the open weekdays sorted from Sunday.
func (p *BusinessHoursPolicy) Weekdays() []time.Weekday {
	days := make([]time.Weekday, 0, len(p.Days))
	for d, ok := range p.Days {
		if ok {
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// RoundUpToHalfHour returns t unchanged when it already sits on a :00 or :30
// boundary, otherwise the next boundary. Seconds count as off-grid.
func RoundUpToHalfHour(t time.Time) time.Time {
	base := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	offset := t.Sub(base)
	switch {
	case offset == 0:
		return base
	case offset <= SlotGranularity:
		return base.Add(SlotGranularity)
	default:
		return base.Add(time.Hour)
	}
}

// IsWithinBusinessHours reports whether t falls on an open weekday between
// Open and Close of its own calendar day, both bounds included.
func IsWithinBusinessHours(t time.Time, policy *BusinessHoursPolicy) bool {
	if policy == nil || !policy.Days[t.Weekday()] {
		return false
	}
	return !t.Before(policy.Open.On(t)) && !t.After(policy.Close.On(t))
}

// TimeInterval is a closed interval [From, To].
type TimeInterval struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// NewTimeInterval returns [start, start+duration].
func NewTimeInterval(start time.Time, duration time.Duration) TimeInterval {
	return TimeInterval{From: start, To: start.Add(duration)}
}

// Contains reports whether t lies in the closed interval.
func (i TimeInterval) Contains(t time.Time) bool {
	return !t.Before(i.From) && !t.After(i.To)
}

// Overlaps reports whether a and b share any instant, testing containment in
// both directions.
func Overlaps(a, b TimeInterval) bool {
	return a.Contains(b.From) || b.Contains(a.From)
}

// containsEndpoint reports whether candidate's start or end lies inside occupied.
// A candidate that strictly contains occupied is not detected.
func containsEndpoint(candidate, occupied TimeInterval) bool {
	return occupied.Contains(candidate.From) || occupied.Contains(candidate.To)
}
