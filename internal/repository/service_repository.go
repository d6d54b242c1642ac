package repository

import (
	"context"
	"fmt"

	"tutorbook_backend/internal/model"
	"tutorbook_backend/internal/repository/base"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ServiceRepository struct {
	*base.Repository
}

func NewServiceRepository(pool *pgxpool.Pool) *ServiceRepository {
	return &ServiceRepository{Repository: base.NewRepository(pool)}
}

func (r *ServiceRepository) Create(ctx context.Context, s *model.Service) error {
	query := `
		INSERT INTO services (tutor_id, subject, description, price, modality, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, s.TutorID, s.Subject, s.Description, s.Price, s.Modality, s.IsActive).
		Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	return nil
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*model.Service, error) {
	query := `
		SELECT id, tutor_id, subject, description, price, modality, is_active, created_at
		FROM services
		WHERE id = $1
	`

	var s model.Service
	err := r.QueryRow(ctx, query, id).
		Scan(&s.ID, &s.TutorID, &s.Subject, &s.Description, &s.Price, &s.Modality, &s.IsActive, &s.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get service by id: %w", err)
	}
	return &s, nil
}

func (r *ServiceRepository) ListByTutor(ctx context.Context, tutorID int64) ([]*model.Service, error) {
	query := `
		SELECT id, tutor_id, subject, description, price, modality, is_active, created_at
		FROM services
		WHERE tutor_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.Query(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var out []*model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.TutorID, &s.Subject, &s.Description, &s.Price, &s.Modality, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}
	return out, nil
}

func (r *ServiceRepository) Update(ctx context.Context, s *model.Service) error {
	query := `
		UPDATE services
		SET subject = $1, description = $2, price = $3
		WHERE id = $4 AND tutor_id = $5
	`

	affected, err := r.ExecAffected(ctx, query, s.Subject, s.Description, s.Price, s.ID, s.TutorID)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update service: %w", ErrNotFound)
	}
	return nil
}

// Deactivate hides the offering from booking without breaking existing
// reservations that reference it.
func (r *ServiceRepository) Deactivate(ctx context.Context, id, tutorID int64) error {
	affected, err := r.ExecAffected(ctx, `UPDATE services SET is_active = false WHERE id = $1 AND tutor_id = $2`, id, tutorID)
	if err != nil {
		return fmt.Errorf("deactivate service: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("deactivate service: %w", ErrNotFound)
	}
	return nil
}
