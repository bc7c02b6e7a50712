package schedule

import "time"

const (
	// SlotGranularity is the grid every resolved slot start snaps to.
	SlotGranularity = 30 * time.Minute

	// SuggestionStep is how far the suggester moves between candidates.
	SuggestionStep = 30 * time.Minute

	// MaxFreeSlots caps the free slots listed for a single day.
	MaxFreeSlots = 48
)
