package domain

import (
	"time"

	"github.com/m04kA/SMC-CompanionBooking/pkg/types"
)

// AvailabilitySlot is a window of the companion's day, in the companion's local time.
// A recurring slot applies to DayOfWeek every week; a non-recurring slot overrides
// a single calendar Date. Available=false slots carve time out of the day.
type AvailabilitySlot struct {
	ID          int64
	CompanionID int64
	DayOfWeek   *time.Weekday // for recurring slots
	Date        *time.Time    // for date overrides, midnight of the local date
	StartTime   types.TimeString
	EndTime     types.TimeString // "24:00" for end of day
	Recurring   bool
	Available   bool
}

// AppliesTo reports whether the slot is defined for the given local calendar day
func (s *AvailabilitySlot) AppliesTo(day time.Time) bool {
	if s.Recurring {
		return s.DayOfWeek != nil && *s.DayOfWeek == day.Weekday()
	}
	if s.Date == nil {
		return false
	}
	y1, m1, d1 := s.Date.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Blackout is an absolute range during which the companion cannot be booked
type Blackout struct {
	ID          int64
	CompanionID int64
	Start       time.Time
	End         time.Time
	Reason      *string
}

// CompanionSchedule is everything the availability check needs for one companion
type CompanionSchedule struct {
	CompanionID int64
	Timezone    string
	Slots       []AvailabilitySlot
	Blackouts   []Blackout
}

// Location resolves the companion's timezone, falling back to UTC if unknown
func (s *CompanionSchedule) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HasData reports whether any slot is configured
func (s *CompanionSchedule) HasData() bool {
	return len(s.Slots) > 0
}

// FreeWindow is a bookable interval returned by the availability query
type FreeWindow struct {
	Start time.Time
	End   time.Time
}
