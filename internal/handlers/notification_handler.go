package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/notification"
)

type NotificationHandler struct {
	Svc *notification.NotificationService
}

func NewNotificationHandler(svc *notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Svc: svc}
}

// List serves GET /api/notifications?unread=true&limit=
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	list, err := h.Svc.List(c.UserContext(), actor, c.QueryBool("unread", false), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return ok(c, list)
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	n, err := h.Svc.UnreadCount(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{"unread": n})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	n, err := h.Svc.MarkRead(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return ok(c, n)
}

func (h *NotificationHandler) MarkUnread(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	n, err := h.Svc.MarkUnread(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return ok(c, n)
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	n, err := h.Svc.MarkAllRead(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{"updated": n})
}
