package repository

import (
	"context"
	"fmt"
	"time"

	"tutorbook_backend/internal/model"
	"tutorbook_backend/internal/repository/base"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository struct {
	*base.Repository
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{Repository: base.NewRepository(pool)}
}

const reservationColumns = `id, tutor_id, student_id, service_id, date, start_min, end_min, state, virtual_room_ref, notes, created_at, updated_at`

// Create inserts a reservation in its initial state. The exclusion
// constraint on active reservation ranges is the authority on
// double-booking: when a concurrent writer already committed an
// overlapping reservation for the same tutor and date, the insert fails
// and ErrConflict is returned.
func (r *ReservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	query := `
		INSERT INTO reservations (tutor_id, student_id, service_id, date, start_min, end_min, state, virtual_room_ref, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		res.TutorID,
		res.StudentID,
		res.ServiceID,
		res.Date,
		res.Start,
		res.End,
		res.State,
		res.VirtualRoomRef,
		res.Notes,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)

	if err != nil {
		if base.IsConstraintConflict(err) {
			return fmt.Errorf("create reservation: %w", ErrConflict)
		}
		return fmt.Errorf("create reservation: %w", err)
	}

	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	res, err := scanReservation(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation by id: %w", err)
	}
	return res, nil
}

// UpdateState moves a reservation from one state to another with a
// compare-and-swap on the current state. Zero affected rows means the
// reservation is gone or a concurrent writer transitioned it first;
// ErrConflict is returned and the caller decides what that means.
func (r *ReservationRepository) UpdateState(ctx context.Context, id int64, from, to model.ReservationState) error {
	query := `
		UPDATE reservations
		SET state = $1, updated_at = now()
		WHERE id = $2 AND state = $3
	`

	affected, err := r.ExecAffected(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("update reservation state: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update reservation state: %w", ErrConflict)
	}
	return nil
}

// ListByTutorBetween returns the tutor's reservations with date in
// [from, to), all states, ordered by date and start time. The availability
// engine filters by state itself.
func (r *ReservationRepository) ListByTutorBetween(ctx context.Context, tutorID int64, from, to time.Time) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE tutor_id = $1 AND date >= $2 AND date < $3
		ORDER BY date, start_min
	`

	rows, err := r.Query(ctx, query, tutorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list reservations by tutor between: %w", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

func (r *ReservationRepository) ListByStudent(ctx context.Context, studentID int64) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE student_id = $1
		ORDER BY date DESC, start_min DESC
	`

	rows, err := r.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("list reservations by student: %w", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

func (r *ReservationRepository) ListByTutor(ctx context.Context, tutorID int64) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE tutor_id = $1
		ORDER BY date DESC, start_min DESC
	`

	rows, err := r.Query(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("list reservations by tutor: %w", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

// HasCompletedUnpaid reports whether the student has a completed
// reservation without a completed payment. Such debt blocks new bookings.
func (r *ReservationRepository) HasCompletedUnpaid(ctx context.Context, studentID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reservations res
			WHERE res.student_id = $1
			  AND res.state = 'completed'
			  AND NOT EXISTS (
				SELECT 1 FROM payments p
				WHERE p.reservation_id = res.id AND p.state = 'completed'
			  )
		)
	`

	var exists bool
	if err := r.QueryRow(ctx, query, studentID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check unpaid reservations: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(
		&res.ID,
		&res.TutorID,
		&res.StudentID,
		&res.ServiceID,
		&res.Date,
		&res.Start,
		&res.End,
		&res.State,
		&res.VirtualRoomRef,
		&res.Notes,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func collectReservations(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]*model.Reservation, error) {
	var out []*model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}
	return out, nil
}
