package model

import "time"

// Availability is a recurring weekly rule during which a tutor accepts
// bookings. Rules are created and deleted by the tutor and are otherwise
// immutable. Each rule is one atomic bookable unit: the engine never
// subdivides it around existing reservations.
type Availability struct {
	ID        int64       `json:"id"`
	TutorID   int64       `json:"tutor_id"`
	Weekday   int         `json:"weekday"` // ISO: 1 = Monday .. 7 = Sunday
	Start     MinuteOfDay `json:"start_time"`
	End       MinuteOfDay `json:"end_time"`
	CreatedAt time.Time   `json:"created_at"`
}

// MaxAvailabilitySpan caps the length of a single rule at creation time.
const MaxAvailabilitySpan = 2 * time.Hour

// MatchesDate reports whether the rule applies to the given calendar date.
func (a *Availability) MatchesDate(date time.Time) bool {
	return a.Weekday == ISOWeekday(date)
}

// Span returns the rule length.
func (a *Availability) Span() time.Duration {
	return time.Duration(a.End-a.Start) * time.Minute
}
