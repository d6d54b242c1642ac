package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tutorbook_backend/internal/service"
)

// respondError maps the core's closed error codes onto HTTP statuses.
// Conflicts are distinguished from validation so clients can refresh
// availability instead of retrying blindly; guard violations carry the
// violated rule and current state.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	be, ok := service.AsBusinessError(err)
	if !ok {
		h.logger.Error("Internal error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error",
		})
	}

	status := fiber.StatusUnprocessableEntity
	switch be.Code {
	case service.CodeValidation:
		status = fiber.StatusBadRequest
	case service.CodeNotFound:
		status = fiber.StatusNotFound
	case service.CodeActorNotAllowed:
		status = fiber.StatusForbidden
	case service.CodeSlotConflict, service.CodeStateConflict:
		status = fiber.StatusConflict
	}

	body := fiber.Map{
		"error": string(be.Code),
		"rule":  be.Rule,
	}
	if be.State != "" {
		body["current_state"] = be.State
	}
	return c.Status(status).JSON(body)
}

func respondData(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"data": data})
}

func (h *Handler) parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Struct(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return int64(id), nil
}
