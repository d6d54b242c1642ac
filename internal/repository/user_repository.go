package repository

import (
	"context"
	"fmt"

	"tutorbook_backend/internal/model"
	"tutorbook_backend/internal/repository/base"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository mirrors the identity provider's view of users. The core
// does not manage accounts; it keeps a local row per user for notification
// routing (Telegram chat id) and display data.
type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, role, first_name, last_name, email, telegram_chat_id, created_at
		FROM users
		WHERE id = $1
	`

	var u model.User
	err := r.QueryRow(ctx, query, id).
		Scan(&u.ID, &u.Role, &u.FirstName, &u.LastName, &u.Email, &u.TelegramChatID, &u.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}

// Upsert refreshes the local copy of an identity-provider user.
func (r *UserRepository) Upsert(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (id, role, first_name, last_name, email, telegram_chat_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET role = EXCLUDED.role,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    email = EXCLUDED.email,
		    telegram_chat_id = EXCLUDED.telegram_chat_id
		RETURNING created_at
	`

	err := r.QueryRow(ctx, query, u.ID, u.Role, u.FirstName, u.LastName, u.Email, u.TelegramChatID).
		Scan(&u.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
