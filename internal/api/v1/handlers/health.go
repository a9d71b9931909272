package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Health describes the service and its endpoints.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":   "Todo API is running",
		"version":   "1.0",
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"endpoints": fiber.Map{
			"auth": []string{
				"POST /api/register",
				"POST /api/login",
				"POST /api/logout (protected)",
				"GET /api/user (protected)",
				"DELETE /api/user (protected)",
			},
			"categories": []string{
				"GET /api/categories (protected)",
				"POST /api/categories (protected)",
				"GET /api/categories/{id} (protected)",
				"PUT /api/categories/{id} (protected)",
				"DELETE /api/categories/{id} (protected)",
			},
			"todos": []string{
				"GET /api/todos (protected)",
				"POST /api/todos (protected)",
				"GET /api/todos/{id} (protected)",
				"PUT /api/todos/{id} (protected)",
				"DELETE /api/todos/{id} (protected)",
				"POST /api/todos/{id}/toggle (protected)",
			},
			"realtime": []string{
				"GET /api/ws?token={token} (websocket)",
			},
		},
	})
}
