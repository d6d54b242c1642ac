package model

import "time"

type ReservationState string

const (
	ReservationStatePending   ReservationState = "pending"
	ReservationStateConfirmed ReservationState = "confirmed"
	ReservationStateCompleted ReservationState = "completed"
	ReservationStateCancelled ReservationState = "cancelled"
)

// ActiveReservationStates are the states that occupy a slot for conflict
// purposes. A cancelled reservation frees its slot.
var ActiveReservationStates = []ReservationState{
	ReservationStatePending,
	ReservationStateConfirmed,
	ReservationStateCompleted,
}

// CancellationWindow is the minimum gap between "now" and the scheduled
// start required to cancel a confirmed reservation.
const CancellationWindow = 2 * time.Hour

type Reservation struct {
	ID             int64            `json:"id"`
	TutorID        int64            `json:"tutor_id"`
	StudentID      int64            `json:"student_id"`
	ServiceID      int64            `json:"service_id"`
	Date           time.Time        `json:"date"` // midnight in the configured location
	Start          MinuteOfDay      `json:"start_time"`
	End            MinuteOfDay      `json:"end_time"`
	State          ReservationState `json:"state"`
	VirtualRoomRef string           `json:"virtual_room_ref"`
	Notes          string           `json:"notes"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// StartAt returns the absolute scheduled start in loc.
func (r *Reservation) StartAt(loc *time.Location) time.Time {
	return r.Start.At(r.Date, loc)
}

// EndAt returns the absolute scheduled end in loc.
func (r *Reservation) EndAt(loc *time.Location) time.Time {
	return r.End.At(r.Date, loc)
}

// BlocksSlot reports whether the reservation counts toward slot conflicts.
func (r *Reservation) BlocksSlot() bool {
	switch r.State {
	case ReservationStatePending, ReservationStateConfirmed, ReservationStateCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is permitted.
func (r *Reservation) IsTerminal() bool {
	return r.State == ReservationStateCompleted || r.State == ReservationStateCancelled
}

// Overlaps reports whether two half-open minute ranges on the same date
// intersect.
func (r *Reservation) Overlaps(start, end MinuteOfDay) bool {
	return r.Start < end && start < r.End
}

type transitionKey struct {
	from, to ReservationState
}

// transitions is the closed set of legal state changes with the roles
// allowed to drive each one. Creation into pending is handled separately
// by the conflict-checked create.
var transitions = map[transitionKey][]Role{
	{ReservationStatePending, ReservationStateConfirmed}:   {RoleTutor},
	{ReservationStatePending, ReservationStateCancelled}:   {RoleStudent, RoleTutor},
	{ReservationStateConfirmed, ReservationStateCompleted}: {RoleTutor},
	{ReservationStateConfirmed, ReservationStateCancelled}: {RoleStudent, RoleTutor},
}

// TransitionRoles returns the roles permitted to move a reservation from
// one state to another, and whether the transition exists at all.
func TransitionRoles(from, to ReservationState) ([]Role, bool) {
	roles, ok := transitions[transitionKey{from, to}]
	return roles, ok
}

// RoleMayTransition reports whether the role is allowed to drive the given
// transition.
func RoleMayTransition(role Role, from, to ReservationState) bool {
	roles, ok := TransitionRoles(from, to)
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
