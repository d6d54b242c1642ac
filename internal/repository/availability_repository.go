package repository

import (
	"context"
	"fmt"

	"tutorbook_backend/internal/model"
	"tutorbook_backend/internal/repository/base"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AvailabilityRepository struct {
	*base.Repository
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{Repository: base.NewRepository(pool)}
}

func (r *AvailabilityRepository) Create(ctx context.Context, a *model.Availability) error {
	query := `
		INSERT INTO availabilities (tutor_id, weekday, start_min, end_min)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, a.TutorID, a.Weekday, a.Start, a.End).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create availability: %w", err)
	}
	return nil
}

func (r *AvailabilityRepository) GetByID(ctx context.Context, id int64) (*model.Availability, error) {
	query := `
		SELECT id, tutor_id, weekday, start_min, end_min, created_at
		FROM availabilities
		WHERE id = $1
	`

	var a model.Availability
	err := r.QueryRow(ctx, query, id).
		Scan(&a.ID, &a.TutorID, &a.Weekday, &a.Start, &a.End, &a.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get availability by id: %w", err)
	}
	return &a, nil
}

func (r *AvailabilityRepository) ListByTutor(ctx context.Context, tutorID int64) ([]*model.Availability, error) {
	query := `
		SELECT id, tutor_id, weekday, start_min, end_min, created_at
		FROM availabilities
		WHERE tutor_id = $1
		ORDER BY weekday, start_min
	`

	rows, err := r.Query(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("list availabilities: %w", err)
	}
	defer rows.Close()

	var out []*model.Availability
	for rows.Next() {
		var a model.Availability
		if err := rows.Scan(&a.ID, &a.TutorID, &a.Weekday, &a.Start, &a.End, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan availability: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availabilities: %w", err)
	}
	return out, nil
}

// Delete removes a rule. The tutor_id condition doubles as the ownership
// check.
func (r *AvailabilityRepository) Delete(ctx context.Context, id, tutorID int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM availabilities WHERE id = $1 AND tutor_id = $2`, id, tutorID)
	if err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete availability: %w", ErrNotFound)
	}
	return nil
}
