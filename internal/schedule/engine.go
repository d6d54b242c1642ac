// Package schedule computes bookable slots from a tutor's recurring
// availability rules and committed reservations. It is pure: callers load
// the data, the engine does the math. Results are recomputed per request;
// nothing is held by being displayed.
package schedule

import (
	"sort"
	"time"

	"tutorbook_backend/internal/model"
)

// LeadTime is the minimum gap between "now" and a slot's start for
// same-day bookings.
const LeadTime = 60 * time.Minute

// DefaultHorizonDays bounds how far ahead available dates are computed.
const DefaultHorizonDays = 7

// Slot is a concrete bookable interval on a single date, derived from one
// availability rule.
type Slot struct {
	Start model.MinuteOfDay `json:"start_time"`
	End   model.MinuteOfDay `json:"end_time"`
}

// AvailableSlots returns the open slots for a tutor on one date, ordered by
// start time.
//
// Each rule matching the date's weekday is tested independently: a rule
// overlapped by any reservation in a slot-blocking state on that date
// yields no slot at all (whole-rule granularity, deliberately preserved
// from the product's booking behavior — rules are never subdivided around
// a booked portion). For today, slots starting within LeadTime of now are
// dropped; past dates yield nothing. Overlapping rules are not
// deduplicated.
func AvailableSlots(rules []*model.Availability, reservations []*model.Reservation, date, now time.Time, loc *time.Location) []Slot {
	day := model.DateOnly(date, loc)
	today := model.DateOnly(now, loc)
	if day.Before(today) {
		return nil
	}
	sameDay := day.Equal(today)

	var slots []Slot
	for _, rule := range rules {
		if !rule.MatchesDate(day) {
			continue
		}
		if sameDay && !rule.Start.At(day, loc).After(now.Add(LeadTime)) {
			continue
		}
		if ruleTaken(rule, reservations, day, loc) {
			continue
		}
		slots = append(slots, Slot{Start: rule.Start, End: rule.End})
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Start != slots[j].Start {
			return slots[i].Start < slots[j].Start
		}
		return slots[i].End < slots[j].End
	})
	return slots
}

// AvailableDates returns the dates within [today, today+horizonDays) that
// still have at least one open slot, in ascending order.
func AvailableDates(rules []*model.Availability, reservations []*model.Reservation, horizonDays int, now time.Time, loc *time.Location) []time.Time {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	today := model.DateOnly(now, loc)

	var dates []time.Time
	for i := 0; i < horizonDays; i++ {
		day := today.AddDate(0, 0, i)
		if len(AvailableSlots(rules, reservations, day, now, loc)) > 0 {
			dates = append(dates, day)
		}
	}
	return dates
}

// SlotCovers reports whether the requested interval lies inside one of the
// open slots. Create validates requests against this before touching the
// store.
func SlotCovers(slots []Slot, start, end model.MinuteOfDay) bool {
	for _, s := range slots {
		if s.Start <= start && end <= s.End {
			return true
		}
	}
	return false
}

func ruleTaken(rule *model.Availability, reservations []*model.Reservation, day time.Time, loc *time.Location) bool {
	for _, r := range reservations {
		if !r.BlocksSlot() {
			continue
		}
		if !model.SameDate(r.Date, day, loc) {
			continue
		}
		if r.Overlaps(rule.Start, rule.End) {
			return true
		}
	}
	return false
}
