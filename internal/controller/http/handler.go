// Package http exposes the scheduling core over a JSON API. The upstream
// identity provider authenticates callers and forwards identity and role
// in headers; the handlers translate requests into core operations and
// business errors into statuses.
package http

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"tutorbook_backend/internal/service"
)

type Handler struct {
	tutors       *service.TutorService
	reservations *service.ReservationService
	payments     *service.PaymentService
	meetings     *service.MeetingService
	ratings      *service.RatingService
	validate     *validator.Validate
	logger       *zap.Logger
	loc          *time.Location
}

func NewHandler(
	tutors *service.TutorService,
	reservations *service.ReservationService,
	payments *service.PaymentService,
	meetings *service.MeetingService,
	ratings *service.RatingService,
	logger *zap.Logger,
	loc *time.Location,
) *Handler {
	return &Handler{
		tutors:       tutors,
		reservations: reservations,
		payments:     payments,
		meetings:     meetings,
		ratings:      ratings,
		validate:     validator.New(),
		logger:       logger,
		loc:          loc,
	}
}
