package handlers

import (
	"github.com/gofiber/fiber/v2"

	"todo-api/internal/middleware"
	"todo-api/internal/service"
)

// Register membuat user baru dan langsung mengembalikan token
func (h *Handler) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	session, err := h.deps.Auth.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	session, err := h.deps.Auth.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

// Logout mencabut token yang sedang dipakai
func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := h.deps.Auth.Logout(c.UserContext(), middleware.Claims(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}
