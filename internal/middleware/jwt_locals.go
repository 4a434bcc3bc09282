package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/models"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/utils"
)

func AttachJWTLocals() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("user").(*utils.Claims)
		if !ok || claims == nil {
			return fiber.ErrUnauthorized
		}

		uid, err := uuid.Parse(strings.TrimSpace(claims.UserID))
		if err != nil {
			return fiber.ErrUnauthorized
		}
		role := strings.ToLower(strings.TrimSpace(claims.Role))

		c.Locals("userId", uid)
		c.Locals("role", role)

		return c.Next()
	}
}

// ActorFrom returns the authenticated caller set by AttachJWTLocals.
func ActorFrom(c *fiber.Ctx) (models.Actor, error) {
	uid, ok := c.Locals("userId").(uuid.UUID)
	if !ok {
		return models.Actor{}, fiber.ErrUnauthorized
	}
	role, _ := c.Locals("role").(string)
	return models.Actor{ID: uid, Role: models.Role(role)}, nil
}
