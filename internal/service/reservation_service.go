package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tutorbook_backend/internal/model"
	"tutorbook_backend/internal/notification"
	"tutorbook_backend/internal/repository"
	"tutorbook_backend/internal/schedule"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReservationService is the single writer of reservation state. Every
// mutation goes through a conditional write against the store, so two
// racing callers resolve to one winner and a structured conflict for the
// rest.
type ReservationService struct {
	reservations ReservationStore
	availability AvailabilityStore
	services     ServiceStore
	dispatcher   notification.Dispatcher
	logger       *zap.Logger
	loc          *time.Location
	now          func() time.Time
}

func NewReservationService(
	reservations ReservationStore,
	availability AvailabilityStore,
	services ServiceStore,
	dispatcher notification.Dispatcher,
	logger *zap.Logger,
	loc *time.Location,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		availability: availability,
		services:     services,
		dispatcher:   dispatcher,
		logger:       logger,
		loc:          loc,
		now:          time.Now,
	}
}

// AvailableDates returns the dates within the horizon that still have at
// least one open slot for the tutor.
func (s *ReservationService) AvailableDates(ctx context.Context, tutorID, serviceID int64, horizonDays int) ([]time.Time, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, guardErr(CodeNotFound, "service not found", "")
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	if svc.TutorID != tutorID {
		return nil, validationErr("service does not belong to this tutor")
	}
	if !svc.IsActive {
		return nil, validationErr("service is not active")
	}

	if horizonDays <= 0 {
		horizonDays = schedule.DefaultHorizonDays
	}

	rules, reservations, err := s.loadScheduleData(ctx, tutorID, horizonDays)
	if err != nil {
		return nil, err
	}

	return schedule.AvailableDates(rules, reservations, horizonDays, s.now(), s.loc), nil
}

// AvailableSlots returns the open slots of a tutor on one date, ordered by
// start time. Results are recomputed per request; nothing is held by being
// displayed.
func (s *ReservationService) AvailableSlots(ctx context.Context, tutorID int64, date time.Time) ([]schedule.Slot, error) {
	rules, err := s.availability.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}

	day := model.DateOnly(date, s.loc)
	reservations, err := s.reservations.ListByTutorBetween(ctx, tutorID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	return schedule.AvailableSlots(rules, reservations, day, s.now(), s.loc), nil
}

type CreateReservationInput struct {
	ServiceID int64
	Date      time.Time
	Start     model.MinuteOfDay
	End       model.MinuteOfDay
	Notes     string
}

// Create books a slot for the acting student. The requested interval must
// lie inside a currently open slot; the store's exclusion constraint is
// the final authority against concurrent bookers. A student with a
// completed but unpaid reservation may not book again.
func (s *ReservationService) Create(ctx context.Context, actor model.Actor, in CreateReservationInput) (*model.Reservation, error) {
	if !actor.IsStudent() {
		return nil, guardErr(CodeActorNotAllowed, "only students create reservations", "")
	}
	if in.Start >= in.End {
		return nil, validationErr("start time must be before end time")
	}

	svc, err := s.services.GetByID(ctx, in.ServiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, guardErr(CodeNotFound, "service not found", "")
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	if !svc.IsActive {
		return nil, validationErr("service is not active")
	}

	unpaid, err := s.reservations.HasCompletedUnpaid(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("check unpaid reservations: %w", err)
	}
	if unpaid {
		return nil, guardErr(CodeUnpaidReservationExists,
			"settle the payment for your completed reservation before booking again", "")
	}

	// Re-validate the slot against current data; the display the student
	// booked from may be stale.
	slots, err := s.AvailableSlots(ctx, svc.TutorID, in.Date)
	if err != nil {
		return nil, err
	}
	if !schedule.SlotCovers(slots, in.Start, in.End) {
		return nil, guardErr(CodeSlotConflict, "requested slot is not available", "")
	}

	res := &model.Reservation{
		TutorID:        svc.TutorID,
		StudentID:      actor.UserID,
		ServiceID:      svc.ID,
		Date:           model.DateOnly(in.Date, s.loc),
		Start:          in.Start,
		End:            in.End,
		State:          model.ReservationStatePending,
		VirtualRoomRef: uuid.NewString(),
		Notes:          in.Notes,
	}

	if err := s.reservations.Create(ctx, res); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, guardErr(CodeSlotConflict, "a concurrent booking took this slot", "")
		}
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	s.logger.Info("Reservation created",
		zap.Int64("reservation_id", res.ID),
		zap.Int64("student_id", res.StudentID),
		zap.Int64("tutor_id", res.TutorID),
		zap.Time("date", res.Date),
		zap.String("start", res.Start.String()),
	)

	s.dispatcher.Notify(ctx, notification.Event{
		Type:        notification.EventReservationCreated,
		Reservation: *res,
		NewState:    res.State,
		ActorRole:   actor.Role,
	})

	return res, nil
}

// Transition drives the reservation state machine. Guards, in order:
// the transition must exist, the actor must be the right participant with
// the right role, and cancelling a confirmed reservation requires more
// than the cancellation window before its start. The state change itself
// is a compare-and-swap; a lost race surfaces as a state conflict.
func (s *ReservationService) Transition(ctx context.Context, actor model.Actor, reservationID int64, target model.ReservationState) (*model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, guardErr(CodeNotFound, "reservation not found", "")
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}

	if err := s.checkTransition(actor, res, target); err != nil {
		return nil, err
	}

	from := res.State
	if err := s.reservations.UpdateState(ctx, reservationID, from, target); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, guardErr(CodeStateConflict,
				"reservation was modified concurrently", string(from))
		}
		return nil, fmt.Errorf("transition reservation: %w", err)
	}

	res.State = target
	res.UpdatedAt = s.now()

	s.logger.Info("Reservation transitioned",
		zap.Int64("reservation_id", res.ID),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
		zap.String("actor_role", string(actor.Role)),
	)

	s.dispatcher.Notify(ctx, notification.Event{
		Type:          eventForTransition(target),
		Reservation:   *res,
		PreviousState: from,
		NewState:      target,
		ActorRole:     actor.Role,
	})

	return res, nil
}

func (s *ReservationService) checkTransition(actor model.Actor, res *model.Reservation, target model.ReservationState) error {
	if res.IsTerminal() {
		return guardErr(CodeInvalidTransition,
			fmt.Sprintf("no transition out of terminal state %s", res.State), string(res.State))
	}

	if _, ok := model.TransitionRoles(res.State, target); !ok {
		return guardErr(CodeInvalidTransition,
			fmt.Sprintf("cannot move from %s to %s", res.State, target), string(res.State))
	}

	if !s.actorParticipates(actor, res) {
		return guardErr(CodeActorNotAllowed, "caller is not a participant of this reservation", string(res.State))
	}
	if !model.RoleMayTransition(actor.Role, res.State, target) {
		return guardErr(CodeActorNotAllowed,
			fmt.Sprintf("role %s may not move %s to %s", actor.Role, res.State, target), string(res.State))
	}

	if res.State == model.ReservationStateConfirmed && target == model.ReservationStateCancelled {
		deadline := res.StartAt(s.loc).Add(-model.CancellationWindow)
		if !s.now().Before(deadline) {
			return guardErr(CodeCancellationWindowExpired,
				fmt.Sprintf("confirmed reservations can only be cancelled more than %s before start", model.CancellationWindow),
				string(res.State))
		}
	}

	return nil
}

// actorParticipates checks the actor against the side of the reservation
// matching its role.
func (s *ReservationService) actorParticipates(actor model.Actor, res *model.Reservation) bool {
	switch actor.Role {
	case model.RoleStudent:
		return actor.UserID == res.StudentID
	case model.RoleTutor:
		return actor.UserID == res.TutorID
	}
	return false
}

// ListForStudent is a read projection of the student's reservations,
// newest first, recomputed from authoritative state.
func (s *ReservationService) ListForStudent(ctx context.Context, studentID int64) ([]*model.Reservation, error) {
	return s.reservations.ListByStudent(ctx, studentID)
}

// ListForTutor is a read projection of the tutor's reservations, newest
// first.
func (s *ReservationService) ListForTutor(ctx context.Context, tutorID int64) ([]*model.Reservation, error) {
	return s.reservations.ListByTutor(ctx, tutorID)
}

// GetByID loads one reservation, restricted to its participants.
func (s *ReservationService) GetByID(ctx context.Context, actor model.Actor, reservationID int64) (*model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, guardErr(CodeNotFound, "reservation not found", "")
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if !s.actorParticipates(actor, res) {
		return nil, guardErr(CodeActorNotAllowed, "caller is not a participant of this reservation", "")
	}
	return res, nil
}

func (s *ReservationService) loadScheduleData(ctx context.Context, tutorID int64, horizonDays int) ([]*model.Availability, []*model.Reservation, error) {
	rules, err := s.availability.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, nil, fmt.Errorf("list availability: %w", err)
	}

	today := model.DateOnly(s.now(), s.loc)
	reservations, err := s.reservations.ListByTutorBetween(ctx, tutorID, today, today.AddDate(0, 0, horizonDays))
	if err != nil {
		return nil, nil, fmt.Errorf("list reservations: %w", err)
	}
	return rules, reservations, nil
}

func eventForTransition(target model.ReservationState) notification.EventType {
	switch target {
	case model.ReservationStateConfirmed:
		return notification.EventReservationConfirmed
	case model.ReservationStateCompleted:
		return notification.EventReservationCompleted
	case model.ReservationStateCancelled:
		return notification.EventReservationCancelled
	}
	return notification.EventReservationCreated
}
