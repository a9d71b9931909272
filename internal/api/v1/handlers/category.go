package handlers

import (
	"github.com/gofiber/fiber/v2"

	"todo-api/internal/middleware"
	"todo-api/internal/service"
)

func (h *Handler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.deps.Categories.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(categories)
}

func (h *Handler) CreateCategory(c *fiber.Ctx) error {
	var req service.CreateCategoryInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	category, err := h.deps.Categories.Create(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *Handler) GetCategory(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c, "Category")
	}
	category, err := h.deps.Categories.Get(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(category)
}

func (h *Handler) UpdateCategory(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c, "Category")
	}
	var req service.UpdateCategoryInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	category, err := h.deps.Categories.Update(c.UserContext(), middleware.UserID(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(category)
}

// DeleteCategory menghapus kategori; todo yang memakainya tetap ada
func (h *Handler) DeleteCategory(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c, "Category")
	}
	if err := h.deps.Categories.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted successfully"})
}
