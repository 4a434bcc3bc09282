package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/profile"
)

type ProfileHandler struct {
	Svc *profile.ProfileService
}

func NewProfileHandler(svc *profile.ProfileService) *ProfileHandler {
	return &ProfileHandler{Svc: svc}
}

func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	p, err := h.Svc.GetForUser(c.UserContext(), actor.ID)
	if err != nil {
		return err
	}
	return ok(c, p)
}

func (h *ProfileHandler) UpdateMe(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	var req profile.ProfileInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	p, err := h.Svc.UpsertMine(c.UserContext(), actor, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "profile saved",
		"data":    p,
	})
}

// ForUser serves GET /api/users/:id/profile.
func (h *ProfileHandler) ForUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Svc.GetForUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, p)
}
