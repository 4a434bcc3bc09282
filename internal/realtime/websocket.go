// internal/realtime/websocket.go
package realtime

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Serve attaches conn to the hub for userID and blocks until the peer goes away.
func Serve(hub *Hub, conn *websocket.Conn, userID uuid.UUID, log *zap.Logger) {
	client := &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Send:   make(chan []byte, 256),
	}

	hub.RegisterClient(client)
	defer hub.UnregisterClient(client)

	go func() {
		for msg := range client.Send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}()

	// Reads only keep the connection alive; clients send pings.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Debug("websocket closed", zap.Stringer("user_id", userID), zap.Error(err))
			return
		}
	}
}
