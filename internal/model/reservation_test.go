package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTransitionRoles(t *testing.T) {
	cases := []struct {
		name     string
		from, to ReservationState
		role     Role
		want     bool
	}{
		{"tutor confirms pending", ReservationStatePending, ReservationStateConfirmed, RoleTutor, true},
		{"student cannot confirm", ReservationStatePending, ReservationStateConfirmed, RoleStudent, false},
		{"student cancels pending", ReservationStatePending, ReservationStateCancelled, RoleStudent, true},
		{"tutor cancels pending", ReservationStatePending, ReservationStateCancelled, RoleTutor, true},
		{"tutor completes confirmed", ReservationStateConfirmed, ReservationStateCompleted, RoleTutor, true},
		{"student cannot complete", ReservationStateConfirmed, ReservationStateCompleted, RoleStudent, false},
		{"student cancels confirmed", ReservationStateConfirmed, ReservationStateCancelled, RoleStudent, true},
		{"no transition out of completed", ReservationStateCompleted, ReservationStateCancelled, RoleTutor, false},
		{"no transition out of cancelled", ReservationStateCancelled, ReservationStateConfirmed, RoleTutor, false},
		{"no re-entering pending", ReservationStateConfirmed, ReservationStatePending, RoleTutor, false},
		{"no skipping confirmation", ReservationStatePending, ReservationStateCompleted, RoleTutor, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RoleMayTransition(tc.role, tc.from, tc.to); got != tc.want {
				t.Fatalf("RoleMayTransition(%s, %s -> %s) = %v, want %v", tc.role, tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestReservationBlocksSlot(t *testing.T) {
	for _, st := range ActiveReservationStates {
		r := Reservation{State: st}
		if !r.BlocksSlot() {
			t.Errorf("state %s should block its slot", st)
		}
	}
	r := Reservation{State: ReservationStateCancelled}
	if r.BlocksSlot() {
		t.Error("cancelled reservation should not block its slot")
	}
}

func TestReservationOverlaps(t *testing.T) {
	r := Reservation{Start: 600, End: 720}

	if !r.Overlaps(660, 780) {
		t.Error("11:00-13:00 should overlap 10:00-12:00")
	}
	if r.Overlaps(720, 780) {
		t.Error("ranges touching at 12:00 should not overlap")
	}
	if r.Overlaps(540, 600) {
		t.Error("ranges touching at 10:00 should not overlap")
	}
}

func TestMinuteOfDay(t *testing.T) {
	m, err := ParseMinuteOfDay("10:30")
	if err != nil {
		t.Fatalf("ParseMinuteOfDay: %v", err)
	}
	if m != 630 {
		t.Fatalf("got %d, want 630", m)
	}
	if m.String() != "10:30" {
		t.Fatalf("String() = %q", m.String())
	}
	if _, err := ParseMinuteOfDay("25:00"); err == nil {
		t.Error("expected error for 25:00")
	}

	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	at := m.At(day, time.UTC)
	if at.Hour() != 10 || at.Minute() != 30 {
		t.Fatalf("At() = %v", at)
	}
	if ISOWeekday(day) != 1 {
		t.Fatalf("ISOWeekday(Monday) = %d", ISOWeekday(day))
	}
	sunday := day.AddDate(0, 0, 6)
	if ISOWeekday(sunday) != 7 {
		t.Fatalf("ISOWeekday(Sunday) = %d", ISOWeekday(sunday))
	}
}

func TestMinuteOfDayJSON(t *testing.T) {
	b, err := json.Marshal(MinuteOfDay(630))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `"10:30"` {
		t.Fatalf("Marshal = %s", b)
	}

	var m MinuteOfDay
	if err := json.Unmarshal([]byte(`"09:05"`), &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m != 545 {
		t.Fatalf("Unmarshal = %d, want 545", m)
	}
	if err := json.Unmarshal([]byte(`630`), &m); err == nil {
		t.Error("expected error for unquoted value")
	}
}
