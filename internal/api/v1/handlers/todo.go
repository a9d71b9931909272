package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"todo-api/internal/middleware"
	"todo-api/internal/models"
	"todo-api/internal/service"
)

// ListTodos mengambil todo milik user, dengan filter dari query string
func (h *Handler) ListTodos(c *fiber.Ctx) error {
	filter := models.TodoFilter{
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			verr := &service.ValidationError{}
			verr.Add("category_id", "The category id field must be an integer.")
			return respondError(c, verr)
		}
		filter.CategoryID = &id
	}

	todos, err := h.deps.Todos.List(c.UserContext(), middleware.UserID(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(todos)
}

func (h *Handler) CreateTodo(c *fiber.Ctx) error {
	var req service.CreateTodoInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	todo, err := h.deps.Todos.Create(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(todo)
}

func (h *Handler) GetTodo(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c, "Todo")
	}
	todo, err := h.deps.Todos.Get(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(todo)
}

// UpdateTodo hanya mengubah field yang dikirim; null mengosongkan field
func (h *Handler) UpdateTodo(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c, "Todo")
	}
	var req service.UpdateTodoInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	todo, err := h.deps.Todos.Update(c.UserContext(), middleware.UserID(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(todo)
}

func (h *Handler) DeleteTodo(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c, "Todo")
	}
	if err := h.deps.Todos.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Todo deleted successfully"})
}

func (h *Handler) ToggleTodo(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c, "Todo")
	}
	todo, err := h.deps.Todos.Toggle(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(todo)
}
