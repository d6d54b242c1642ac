package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tutorbook_backend/internal/model"
	"tutorbook_backend/internal/notification"

	"go.uber.org/zap"
)

var utc = time.UTC

// 2026-08-31 is a Monday.
func mondayDate() time.Time {
	return time.Date(2026, 8, 31, 0, 0, 0, 0, utc)
}

func clockAt(day time.Time, hour, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, utc)
}

type testEnv struct {
	reservations *memReservationStore
	availability *memAvailabilityStore
	services     *memServiceStore
	payments     *memPaymentStore
	dispatcher   *recordingDispatcher
	svc          *ReservationService

	tutor   model.Actor
	student model.Actor
	service *model.Service
}

// newTestEnv builds a ReservationService around a tutor with a Monday
// 10:00-12:00 rule and one active offering. The clock is pinned to now.
func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()

	payments := newMemPaymentStore()
	env := &testEnv{
		reservations: newMemReservationStore(payments),
		availability: newMemAvailabilityStore(),
		services:     newMemServiceStore(),
		payments:     payments,
		dispatcher:   &recordingDispatcher{},
		tutor:        model.Actor{UserID: 10, Role: model.RoleTutor},
		student:      model.Actor{UserID: 20, Role: model.RoleStudent},
	}

	env.svc = NewReservationService(env.reservations, env.availability, env.services, env.dispatcher, zap.NewNop(), utc)
	env.svc.now = func() time.Time { return now }

	ctx := context.Background()
	if err := env.availability.Create(ctx, &model.Availability{
		TutorID: env.tutor.UserID, Weekday: 1, Start: 600, End: 720,
	}); err != nil {
		t.Fatalf("seed availability: %v", err)
	}

	env.service = &model.Service{
		TutorID: env.tutor.UserID, Subject: "Algebra", Price: 2500,
		Modality: model.ModalityVirtual, IsActive: true,
	}
	if err := env.services.Create(ctx, env.service); err != nil {
		t.Fatalf("seed service: %v", err)
	}

	return env
}

func (e *testEnv) createInput() CreateReservationInput {
	return CreateReservationInput{
		ServiceID: e.service.ID,
		Date:      mondayDate(),
		Start:     600,
		End:       720,
	}
}

func TestCreateReservation(t *testing.T) {
	env := newTestEnv(t, clockAt(mondayDate(), 8, 0))
	ctx := context.Background()

	res, err := env.svc.Create(ctx, env.student, env.createInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.State != model.ReservationStatePending {
		t.Errorf("state = %s, want pending", res.State)
	}
	if res.TutorID != env.tutor.UserID || res.StudentID != env.student.UserID {
		t.Errorf("participants = tutor %d student %d", res.TutorID, res.StudentID)
	}
	if res.VirtualRoomRef == "" {
		t.Error("virtual room ref not assigned")
	}

	ev, ok := env.dispatcher.last()
	if !ok || ev.Type != notification.EventReservationCreated {
		t.Fatalf("expected reservation_created event, got %+v", ev)
	}
}

func TestCreateReservation_SlotConflict(t *testing.T) {
	env := newTestEnv(t, clockAt(mondayDate(), 7, 0))
	ctx := context.Background()

	if _, err := env.svc.Create(ctx, env.student, env.createInput()); err != nil {
		t.Fatalf("first create: %v", err)
	}

	// Same slot again.
	other := model.Actor{UserID: 21, Role: model.RoleStudent}
	_, err := env.svc.Create(ctx, other, env.createInput())
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("second create: got %v, want slot conflict", err)
	}

	// Overlapping range (11:00-13:00) against the booked 10:00-12:00.
	in := env.createInput()
	in.Start, in.End = 660, 780
	if _, err := env.svc.Create(ctx, other, in); !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("overlapping create: got %v, want slot conflict", err)
	}
}

func TestCreateReservation_StoreRace(t *testing.T) {
	env := newTestEnv(t, clockAt(mondayDate(), 7, 0))
	ctx := context.Background()

	// A concurrent writer commits between our availability read and the
	// insert; the store constraint must catch it.
	env.reservations.seed(&model.Reservation{
		TutorID: env.tutor.UserID, StudentID: 99, ServiceID: env.service.ID,
		Date: mondayDate(), Start: 600, End: 720,
		State: model.ReservationStatePending,
	})

	_, err := env.svc.Create(ctx, env.student, env.createInput())
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("got %v, want slot conflict", err)
	}
}

func TestCreateReservation_LeadTime(t *testing.T) {
	// 09:30 is only 30 minutes before the 10:00 slot.
	env := newTestEnv(t, clockAt(mondayDate(), 9, 30))

	_, err := env.svc.Create(context.Background(), env.student, env.createInput())
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("got %v, want slot conflict inside lead-time buffer", err)
	}
}

func TestCreateReservation_UnpaidGuard(t *testing.T) {
	env := newTestEnv(t, clockAt(mondayDate(), 8, 0))
	ctx := context.Background()

	// Student owes for a completed session from last week.
	debt := env.reservations.seed(&model.Reservation{
		TutorID: env.tutor.UserID, StudentID: env.student.UserID, ServiceID: env.service.ID,
		Date: mondayDate().AddDate(0, 0, -7), Start: 600, End: 720,
		State: model.ReservationStateCompleted,
	})

	_, err := env.svc.Create(ctx, env.student, env.createInput())
	if !errors.Is(err, ErrUnpaidReservationExists) {
		t.Fatalf("got %v, want unpaid reservation guard", err)
	}

	// Settling the debt unblocks booking.
	p := &model.Payment{ReservationID: debt.ID, Amount: 2500, Method: model.PaymentMethodCash, State: model.PaymentStatePending}
	if err := env.payments.Create(ctx, p); err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	if err := env.payments.Complete(ctx, p.ID); err != nil {
		t.Fatalf("complete payment: %v", err)
	}

	if _, err := env.svc.Create(ctx, env.student, env.createInput()); err != nil {
		t.Fatalf("create after settling: %v", err)
	}
}

func TestCreateReservation_Validation(t *testing.T) {
	env := newTestEnv(t, clockAt(mondayDate(), 8, 0))
	ctx := context.Background()

	in := env.createInput()
	in.Start, in.End = 720, 600
	if _, err := env.svc.Create(ctx, env.student, in); err == nil {
		t.Fatal("expected validation error for start >= end")
	}

	if _, err := env.svc.Create(ctx, env.tutor, env.createInput()); !errors.Is(err, ErrActorNotAllowed) {
		t.Fatalf("tutor create: got %v, want actor not allowed", err)
	}

	env.services.Deactivate(ctx, env.service.ID, env.tutor.UserID)
	if _, err := env.svc.Create(ctx, env.student, env.createInput()); err == nil {
		t.Fatal("expected error for inactive service")
	}
}

func TestTransition_ConfirmAndComplete(t *testing.T) {
	env := newTestEnv(t, clockAt(mondayDate(), 7, 0))
	ctx := context.Background()

	res, err := env.svc.Create(ctx, env.student, env.createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Student may not confirm.
	if _, err := env.svc.Transition(ctx, env.student, res.ID, model.ReservationStateConfirmed); !errors.Is(err, ErrActorNotAllowed) {
		t.Fatalf("student confirm: got %v, want actor not allowed", err)
	}

	// A different tutor may not touch it either.
	stranger := model.Actor{UserID: 77, Role: model.RoleTutor}
	if _, err := env.svc.Transition(ctx, stranger, res.ID, model.ReservationStateConfirmed); !errors.Is(err, ErrActorNotAllowed) {
		t.Fatalf("stranger confirm: got %v, want actor not allowed", err)
	}

	res, err = env.svc.Transition(ctx, env.tutor, res.ID, model.ReservationStateConfirmed)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if res.State != model.ReservationStateConfirmed {
		t.Fatalf("state = %s, want confirmed", res.State)
	}
	if ev, _ := env.dispatcher.last(); ev.Type != notification.EventReservationConfirmed {
		t.Fatalf("expected reservation_confirmed event, got %s", ev.Type)
	}

	// Tutor may complete before the scheduled end.
	res, err = env.svc.Transition(ctx, env.tutor, res.ID, model.ReservationStateCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.State != model.ReservationStateCompleted {
		t.Fatalf("state = %s, want completed", res.State)
	}
}

func TestTransition_CancellationWindow(t *testing.T) {
	day := mondayDate()

	cases := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"2h01m before start", clockAt(day, 7, 59), nil},
		{"3h before start", clockAt(day, 7, 0), nil},
		{"exactly 2h before start", clockAt(day, 8, 0), ErrCancellationWindowExpired},
		{"1h59m before start", clockAt(day, 8, 1), ErrCancellationWindowExpired},
		{"1h before start", clockAt(day, 9, 0), ErrCancellationWindowExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, tc.now)
			ctx := context.Background()

			res := env.reservations.seed(&model.Reservation{
				TutorID: env.tutor.UserID, StudentID: env.student.UserID, ServiceID: env.service.ID,
				Date: day, Start: 600, End: 720,
				State: model.ReservationStateConfirmed,
			})

			_, err := env.svc.Transition(ctx, env.student, res.ID, model.ReservationStateCancelled)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("cancel: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("cancel: got %v, want %v", err, tc.wantErr)
			}
			be, ok := AsBusinessError(err)
			if !ok || be.State != string(model.ReservationStateConfirmed) {
				t.Fatalf("error should carry the current state, got %+v", be)
			}
		})
	}
}

func TestTransition_CancelledEventCarriesInitiator(t *testing.T) {
	env := newTestEnv(t, clockAt(mondayDate(), 7, 0))
	ctx := context.Background()

	res := env.reservations.seed(&model.Reservation{
		TutorID: env.tutor.UserID, StudentID: env.student.UserID, ServiceID: env.service.ID,
		Date: mondayDate(), Start: 600, End: 720,
		State: model.ReservationStateConfirmed,
	})

	if _, err := env.svc.Transition(ctx, env.tutor, res.ID, model.ReservationStateCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	ev, _ := env.dispatcher.last()
	if ev.Type != notification.EventReservationCancelled {
		t.Fatalf("event type = %s", ev.Type)
	}
	if ev.ActorRole != model.RoleTutor {
		t.Fatalf("actor role = %s, want tutor", ev.ActorRole)
	}
	if got := notification.Recipients(ev); len(got) != 1 || got[0] != env.student.UserID {
		t.Fatalf("recipients = %v, want only the student", got)
	}
}

func TestTransition_TerminalStatesImmutable(t *testing.T) {
	env := newTestEnv(t, clockAt(mondayDate(), 7, 0))
	ctx := context.Background()

	for _, terminal := range []model.ReservationState{
		model.ReservationStateCompleted,
		model.ReservationStateCancelled,
	} {
		res := env.reservations.seed(&model.Reservation{
			TutorID: env.tutor.UserID, StudentID: env.student.UserID, ServiceID: env.service.ID,
			Date: mondayDate(), Start: 600, End: 720,
			State: terminal,
		})

		for _, target := range []model.ReservationState{
			model.ReservationStatePending,
			model.ReservationStateConfirmed,
			model.ReservationStateCompleted,
			model.ReservationStateCancelled,
		} {
			if _, err := env.svc.Transition(ctx, env.tutor, res.ID, target); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("%s -> %s: got %v, want invalid transition", terminal, target, err)
			}
		}
	}
}

func TestTransition_ConcurrentLoserGetsConflict(t *testing.T) {
	env := newTestEnv(t, clockAt(mondayDate(), 7, 0))
	ctx := context.Background()

	res := env.reservations.seed(&model.Reservation{
		TutorID: env.tutor.UserID, StudentID: env.student.UserID, ServiceID: env.service.ID,
		Date: mondayDate(), Start: 600, End: 720,
		State: model.ReservationStatePending,
	})

	// The student cancels between our guard check and the CAS.
	interleaved := false
	env.reservations.beforeUpdate = func() {
		if interleaved {
			return
		}
		interleaved = true
		env.reservations.mu.Lock()
		env.reservations.items[res.ID].State = model.ReservationStateCancelled
		env.reservations.mu.Unlock()
	}

	_, err := env.svc.Transition(ctx, env.tutor, res.ID, model.ReservationStateConfirmed)
	if !errors.Is(err, ErrStateConflict) {
		t.Fatalf("got %v, want state conflict", err)
	}
}

func TestAvailableDatesAndSlots(t *testing.T) {
	env := newTestEnv(t, clockAt(mondayDate(), 8, 0))
	ctx := context.Background()

	dates, err := env.svc.AvailableDates(ctx, env.tutor.UserID, env.service.ID, 7)
	if err != nil {
		t.Fatalf("AvailableDates: %v", err)
	}
	if len(dates) != 1 || !dates[0].Equal(mondayDate()) {
		t.Fatalf("dates = %v, want just today", dates)
	}

	slots, err := env.svc.AvailableSlots(ctx, env.tutor.UserID, mondayDate())
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 1 || slots[0].Start != 600 || slots[0].End != 720 {
		t.Fatalf("slots = %v, want [10:00-12:00]", slots)
	}

	// Booking the slot removes both the slot and the date.
	if _, err := env.svc.Create(ctx, env.student, env.createInput()); err != nil {
		t.Fatalf("create: %v", err)
	}

	slots, err = env.svc.AvailableSlots(ctx, env.tutor.UserID, mondayDate())
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("slots after booking = %v, want none", slots)
	}

	dates, err = env.svc.AvailableDates(ctx, env.tutor.UserID, env.service.ID, 7)
	if err != nil {
		t.Fatalf("AvailableDates: %v", err)
	}
	if len(dates) != 0 {
		t.Fatalf("dates after booking = %v, want none", dates)
	}
}
