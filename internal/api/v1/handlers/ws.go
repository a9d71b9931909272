package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"todo-api/internal/middleware"
	"todo-api/pkg/logger"
)

// RequireUpgrade rejects plain HTTP requests to the websocket route.
func RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("wsUserID", middleware.UserID(c))
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Stream keeps the connection registered in the hub until the client
// closes it. Incoming frames are ignored.
func (h *Handler) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("wsUserID").(int64)
		client := h.deps.Hub.Register(userID, conn)
		logger.SystemLogger.Info("Websocket connected", zap.Int64("user_id", userID))
		defer func() {
			h.deps.Hub.Unregister(client)
			logger.SystemLogger.Info("Websocket disconnected", zap.Int64("user_id", userID))
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
