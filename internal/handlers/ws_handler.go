package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/realtime"
)

type WSHandler struct {
	Hub *realtime.Hub
	Log *zap.Logger
}

func NewWSHandler(hub *realtime.Hub, log *zap.Logger) *WSHandler {
	return &WSHandler{Hub: hub, Log: log}
}

// Upgrade must run after the JWT middleware so userId is in locals.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

func (h *WSHandler) Notifications() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		uid, ok := conn.Locals("userId").(uuid.UUID)
		if !ok {
			_ = conn.Close()
			return
		}
		realtime.Serve(h.Hub, conn, uid, h.Log)
	})
}
