package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"tutorbook_backend/internal/model"
)

const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"

	actorKey = "actor"
)

// RequireActor reads the caller identity forwarded by the identity
// provider. Requests without a valid identity never reach the core.
func RequireActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Get(headerUserID), 10, 64)
		if err != nil || id <= 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid " + headerUserID + " header",
			})
		}

		role := model.Role(c.Get(headerUserRole))
		if role != model.RoleStudent && role != model.RoleTutor {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid " + headerUserRole + " header",
			})
		}

		c.Locals(actorKey, model.Actor{UserID: id, Role: role})
		return c.Next()
	}
}

func actorFrom(c *fiber.Ctx) model.Actor {
	actor, _ := c.Locals(actorKey).(model.Actor)
	return actor
}
