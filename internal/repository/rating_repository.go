package repository

import (
	"context"
	"fmt"

	"tutorbook_backend/internal/model"
	"tutorbook_backend/internal/repository/base"

	"github.com/jackc/pgx/v5/pgxpool"
)

type RatingRepository struct {
	*base.Repository
}

func NewRatingRepository(pool *pgxpool.Pool) *RatingRepository {
	return &RatingRepository{Repository: base.NewRepository(pool)}
}

// Create inserts a rating. The unique index on (reservation_id, rater_id)
// rejects a second rating by the same participant; that surfaces as
// ErrConflict.
func (r *RatingRepository) Create(ctx context.Context, rating *model.Rating) error {
	query := `
		INSERT INTO ratings (reservation_id, rater_id, ratee_id, score, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, rating.ReservationID, rating.RaterID, rating.RateeID, rating.Score, rating.Comment).
		Scan(&rating.ID, &rating.CreatedAt)
	if err != nil {
		if base.IsConstraintConflict(err) {
			return fmt.Errorf("create rating: %w", ErrConflict)
		}
		return fmt.Errorf("create rating: %w", err)
	}
	return nil
}

func (r *RatingRepository) ListByRatee(ctx context.Context, rateeID int64) ([]*model.Rating, error) {
	query := `
		SELECT id, reservation_id, rater_id, ratee_id, score, comment, created_at
		FROM ratings
		WHERE ratee_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.Query(ctx, query, rateeID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var out []*model.Rating
	for rows.Next() {
		var rt model.Rating
		if err := rows.Scan(&rt.ID, &rt.ReservationID, &rt.RaterID, &rt.RateeID, &rt.Score, &rt.Comment, &rt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out = append(out, &rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return out, nil
}
