package model

import (
	"fmt"
	"time"
)

// MinuteOfDay is a wall-clock time within a day, stored as minutes from midnight.
type MinuteOfDay int

// ParseMinuteOfDay parses "HH:MM" into a MinuteOfDay.
func ParseMinuteOfDay(s string) (MinuteOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return MinuteOfDay(t.Hour()*60 + t.Minute()), nil
}

func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// MarshalJSON renders the minute as "HH:MM" so API payloads read as
// wall-clock times.
func (m MinuteOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *MinuteOfDay) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("parse time of day %s: expected quoted HH:MM", s)
	}
	parsed, err := ParseMinuteOfDay(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// At anchors the minute to a calendar date in the given location.
func (m MinuteOfDay) At(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(m)/60, int(m)%60, 0, 0, loc)
}

// ISOWeekday maps time.Weekday to ISO numbering (1 = Monday .. 7 = Sunday).
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// DateOnly truncates t to midnight in the given location.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// SameDate reports whether a and b fall on the same calendar day in loc.
func SameDate(a, b time.Time, loc *time.Location) bool {
	return DateOnly(a, loc).Equal(DateOnly(b, loc))
}
