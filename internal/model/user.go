package model

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
)

type User struct {
	ID             int64     `json:"id"`
	Role           Role      `json:"role"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	TelegramChatID *int64    `json:"telegram_chat_id"` // nil when the user never linked Telegram
	CreatedAt      time.Time `json:"created_at"`
}

// Actor is the authenticated caller of a core operation. Identity and role
// come from the upstream identity provider; the core trusts both and never
// reads ambient session state.
type Actor struct {
	UserID int64
	Role   Role
}

func (a Actor) IsStudent() bool {
	return a.Role == RoleStudent
}

func (a Actor) IsTutor() bool {
	return a.Role == RoleTutor
}
