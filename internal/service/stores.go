package service

import (
	"context"
	"time"

	"tutorbook_backend/internal/model"
)

// Store interfaces are declared here, on the consumer side. The pgx
// repositories satisfy them in production; tests use in-memory fakes. All
// conditional writes report repository.ErrConflict when a concurrent
// writer wins, and repository.ErrNotFound for missing rows.

type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id int64) (*model.Reservation, error)
	UpdateState(ctx context.Context, id int64, from, to model.ReservationState) error
	ListByTutorBetween(ctx context.Context, tutorID int64, from, to time.Time) ([]*model.Reservation, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*model.Reservation, error)
	ListByTutor(ctx context.Context, tutorID int64) ([]*model.Reservation, error)
	HasCompletedUnpaid(ctx context.Context, studentID int64) (bool, error)
}

type AvailabilityStore interface {
	Create(ctx context.Context, a *model.Availability) error
	GetByID(ctx context.Context, id int64) (*model.Availability, error)
	ListByTutor(ctx context.Context, tutorID int64) ([]*model.Availability, error)
	Delete(ctx context.Context, id, tutorID int64) error
}

type ServiceStore interface {
	Create(ctx context.Context, s *model.Service) error
	GetByID(ctx context.Context, id int64) (*model.Service, error)
	ListByTutor(ctx context.Context, tutorID int64) ([]*model.Service, error)
	Update(ctx context.Context, s *model.Service) error
	Deactivate(ctx context.Context, id, tutorID int64) error
}

type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByID(ctx context.Context, id int64) (*model.Payment, error)
	HasCompletedForReservation(ctx context.Context, reservationID int64) (bool, error)
	ListByReservation(ctx context.Context, reservationID int64) ([]*model.Payment, error)
	Complete(ctx context.Context, id int64) error
	Cancel(ctx context.Context, id int64) error
}

type RatingStore interface {
	Create(ctx context.Context, rating *model.Rating) error
	ListByRatee(ctx context.Context, rateeID int64) ([]*model.Rating, error)
}
