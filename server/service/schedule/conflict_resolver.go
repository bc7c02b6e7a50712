package schedule

import (
	"log/slog"
	"time"
)

// IsFree reports whether no occupied interval contains the candidate's start or end.
func IsFree(candidate TimeInterval, calendar OccupiedCalendar) bool {
	for _, occupied := range calendar {
		if containsEndpoint(candidate, occupied) {
			return false
		}
	}
	return true
}

// FindNextAvailable walks the half-hour grid from RoundUpToHalfHour(searchStart)
// while the candidate is not after searchCeiling and returns the first start
// whose [t, t+duration] is free. Business hours are not applied here.
func FindNextAvailable(calendar OccupiedCalendar, searchStart, searchCeiling time.Time, duration time.Duration) (time.Time, bool) {
	for t := RoundUpToHalfHour(searchStart); !t.After(searchCeiling); t = t.Add(SuggestionStep) {
		if IsFree(NewTimeInterval(t, duration), calendar) {
			return t, true
		}
	}

	slog.Debug("no available slot in window",
		"search_start", searchStart,
		"search_ceiling", searchCeiling,
		"occupied", len(calendar),
	)
	return time.Time{}, false
}

// TimeSlot is a bookable start on a given day.
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FreeSlotsOn lists every free grid start on day's date that lies inside
// business hours. Closed weekdays yield no slots.
func FreeSlotsOn(calendar OccupiedCalendar, day time.Time, policy *BusinessHoursPolicy, duration time.Duration) []TimeSlot {
	if policy == nil || !policy.Days[day.Weekday()] {
		return nil
	}

	var slots []TimeSlot
	closing := policy.Close.On(day)
	for t := RoundUpToHalfHour(policy.Open.On(day)); !t.After(closing); t = t.Add(SuggestionStep) {
		candidate := NewTimeInterval(t, duration)
		if !IsFree(candidate, calendar) {
			continue
		}
		slots = append(slots, TimeSlot{Start: candidate.From, End: candidate.To})
		if len(slots) >= MaxFreeSlots {
			break
		}
	}
	return slots
}
