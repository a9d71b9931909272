package handlers

import (
	"github.com/gofiber/fiber/v2"

	"todo-api/internal/middleware"
)

func (h *Handler) CurrentUser(c *fiber.Ctx) error {
	user, err := h.deps.Auth.CurrentUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// DeleteAccount menghapus user beserta semua todo dan kategorinya
func (h *Handler) DeleteAccount(c *fiber.Ctx) error {
	if err := h.deps.Auth.DeleteAccount(c.UserContext(), middleware.Claims(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Account deleted successfully"})
}
