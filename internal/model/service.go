package model

import "time"

type Modality string

const (
	ModalityVirtual Modality = "virtual"
)

// Service is a tutoring offering published by a tutor and referenced by
// reservations. Price is in cents.
type Service struct {
	ID          int64     `json:"id"`
	TutorID     int64     `json:"tutor_id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	Modality    Modality  `json:"modality"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// AllowsVirtual reports whether the offering can be attended through the
// virtual meeting room.
func (s *Service) AllowsVirtual() bool {
	return s.Modality == ModalityVirtual
}
