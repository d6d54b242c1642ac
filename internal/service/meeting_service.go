package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tutorbook_backend/internal/model"
	"tutorbook_backend/internal/repository"
)

// JoinSlack is how far outside the scheduled span the virtual room stays
// joinable.
const JoinSlack = 15 * time.Minute

// CanJoin is the meeting-window predicate: the reservation is confirmed,
// its service allows virtual attendance, a room is assigned, and now falls
// within [start-JoinSlack, end+JoinSlack]. Pure in (reservation, now) so a
// client can re-evaluate it every tick without any core-held timer state.
func CanJoin(res *model.Reservation, svc *model.Service, now time.Time, loc *time.Location) bool {
	if res.State != model.ReservationStateConfirmed {
		return false
	}
	if svc == nil || !svc.AllowsVirtual() {
		return false
	}
	if res.VirtualRoomRef == "" {
		return false
	}

	opens := res.StartAt(loc).Add(-JoinSlack)
	closes := res.EndAt(loc).Add(JoinSlack)
	return !now.Before(opens) && !now.After(closes)
}

// JoinWindow returns the absolute interval during which the room is
// joinable. Countdown displays derive from this; they never accumulate
// state of their own.
func JoinWindow(res *model.Reservation, loc *time.Location) (opens, closes time.Time) {
	return res.StartAt(loc).Add(-JoinSlack), res.EndAt(loc).Add(JoinSlack)
}

// MeetingService loads the entities behind the pure predicate for callers
// that only hold a reservation id.
type MeetingService struct {
	reservations ReservationStore
	services     ServiceStore
	loc          *time.Location
}

func NewMeetingService(reservations ReservationStore, services ServiceStore, loc *time.Location) *MeetingService {
	return &MeetingService{reservations: reservations, services: services, loc: loc}
}

// CanJoin evaluates the meeting window for a reservation id at the given
// instant, restricted to the reservation's participants.
func (s *MeetingService) CanJoin(ctx context.Context, actor model.Actor, reservationID int64, now time.Time) (bool, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, guardErr(CodeNotFound, "reservation not found", "")
		}
		return false, fmt.Errorf("get reservation: %w", err)
	}
	if actor.UserID != res.StudentID && actor.UserID != res.TutorID {
		return false, guardErr(CodeActorNotAllowed, "caller is not a participant of this reservation", "")
	}

	svc, err := s.services.GetByID(ctx, res.ServiceID)
	if err != nil {
		return false, fmt.Errorf("get service: %w", err)
	}

	return CanJoin(res, svc, now, s.loc), nil
}
