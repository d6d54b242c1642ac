package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CanJoin(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ok, err := h.meetings.CanJoin(c.Context(), actorFrom(c), id, time.Now())
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"can_join": ok})
}
