package http

import (
	"github.com/gofiber/fiber/v2"

	"tutorbook_backend/internal/service"
)

type createRatingRequest struct {
	ReservationID int64  `json:"reservation_id" validate:"required,gt=0"`
	Score         int    `json:"score" validate:"required,min=1,max=5"`
	Comment       string `json:"comment"`
}

func (h *Handler) CreateRating(c *fiber.Ctx) error {
	var req createRatingRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	r, err := h.ratings.Create(c.Context(), actorFrom(c), service.CreateRatingInput{
		ReservationID: req.ReservationID,
		Score:         req.Score,
		Comment:       req.Comment,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, r)
}

func (h *Handler) ListRatings(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ratings, err := h.ratings.ListForUser(c.Context(), userID)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, ratings)
}
