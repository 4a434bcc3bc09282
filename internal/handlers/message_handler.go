package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/messaging"
)

type MessageHandler struct {
	Svc *messaging.MessageService
}

func NewMessageHandler(svc *messaging.MessageService) *MessageHandler {
	return &MessageHandler{Svc: svc}
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	var req messaging.SendInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	msg, err := h.Svc.Send(c.UserContext(), actor, req)
	if err != nil {
		return err
	}
	return created(c, msg)
}

// Conversation serves GET /api/messages?user_id=&limit=
func (h *MessageHandler) Conversation(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	other, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		return apperr.Validation("user_id is required")
	}
	list, err := h.Svc.Conversation(c.UserContext(), actor, other, c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return ok(c, list)
}

// Inbox serves GET /api/messages/inbox?limit=
func (h *MessageHandler) Inbox(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	list, err := h.Svc.Inbox(c.UserContext(), actor, c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return ok(c, list)
}

func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	msg, err := h.Svc.MarkRead(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return ok(c, msg)
}

func (h *MessageHandler) MarkConversationRead(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	other, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	n, err := h.Svc.MarkConversationRead(c.UserContext(), actor, other)
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{"updated": n})
}
