package repository

import (
	"context"
	"fmt"

	"tutorbook_backend/internal/model"
	"tutorbook_backend/internal/repository/base"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	*base.Repository
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{Repository: base.NewRepository(pool)}
}

const paymentColumns = `id, reservation_id, amount, method, state, provider_ref, paid_at, created_at`

func (r *PaymentRepository) Create(ctx context.Context, p *model.Payment) error {
	query := `
		INSERT INTO payments (reservation_id, amount, method, state, provider_ref)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, p.ReservationID, p.Amount, p.Method, p.State, p.ProviderRef).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if base.IsConstraintConflict(err) {
			return fmt.Errorf("create payment: %w", ErrConflict)
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	var p model.Payment
	err := r.QueryRow(ctx, query, id).
		Scan(&p.ID, &p.ReservationID, &p.Amount, &p.Method, &p.State, &p.ProviderRef, &p.PaidAt, &p.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get payment by id: %w", err)
	}
	return &p, nil
}

// HasCompletedForReservation reports whether a completed payment already
// exists for the reservation.
func (r *PaymentRepository) HasCompletedForReservation(ctx context.Context, reservationID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM payments
			WHERE reservation_id = $1 AND state = 'completed'
		)
	`

	var exists bool
	if err := r.QueryRow(ctx, query, reservationID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check completed payment: %w", err)
	}
	return exists, nil
}

func (r *PaymentRepository) ListByReservation(ctx context.Context, reservationID int64) ([]*model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE reservation_id = $1
		ORDER BY created_at
	`

	rows, err := r.Query(ctx, query, reservationID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.ReservationID, &p.Amount, &p.Method, &p.State, &p.ProviderRef, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return out, nil
}

// Complete moves a pending payment to completed and stamps paid_at, with a
// compare-and-swap on the pending state. The partial unique index on
// completed payments per reservation backs this up against two racing
// completions through different paths (cash confirm vs gateway callback).
func (r *PaymentRepository) Complete(ctx context.Context, id int64) error {
	query := `
		UPDATE payments
		SET state = 'completed', paid_at = now()
		WHERE id = $1 AND state = 'pending'
	`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		if base.IsConstraintConflict(err) {
			return fmt.Errorf("complete payment: %w", ErrConflict)
		}
		return fmt.Errorf("complete payment: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("complete payment: %w", ErrConflict)
	}
	return nil
}

// Cancel voids a pending payment (gateway declined or superseded).
func (r *PaymentRepository) Cancel(ctx context.Context, id int64) error {
	query := `
		UPDATE payments
		SET state = 'cancelled'
		WHERE id = $1 AND state = 'pending'
	`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return fmt.Errorf("cancel payment: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("cancel payment: %w", ErrConflict)
	}
	return nil
}
