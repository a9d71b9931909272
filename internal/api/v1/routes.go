package v1

import (
	"github.com/gofiber/fiber/v2"

	"todo-api/internal/api/v1/handlers"
	"todo-api/internal/config"
	"todo-api/internal/middleware"
)

func RegisterRoutes(app *fiber.App, deps *config.Dependencies) {
	h := handlers.New(deps)
	requireToken := middleware.UseToken(deps.Tokens, deps.Store.Users)

	api := app.Group("/api")
	api.Get("/", handlers.Health)

	// Auth
	api.Post("/register", h.Register)
	api.Post("/login", h.Login)
	api.Post("/logout", requireToken, h.Logout)

	// User
	userRoutes := api.Group("/user", requireToken)
	userRoutes.Get("/", h.CurrentUser)
	userRoutes.Delete("/", h.DeleteAccount)

	// Todo
	todoRoutes := api.Group("/todos", requireToken)
	todoRoutes.Get("/", h.ListTodos)
	todoRoutes.Post("/", h.CreateTodo)
	todoRoutes.Get("/:id", h.GetTodo)
	todoRoutes.Put("/:id", h.UpdateTodo)
	todoRoutes.Patch("/:id", h.UpdateTodo)
	todoRoutes.Delete("/:id", h.DeleteTodo)
	todoRoutes.Post("/:id/toggle", h.ToggleTodo)

	// Category
	categoryRoutes := api.Group("/categories", requireToken)
	categoryRoutes.Get("/", h.ListCategories)
	categoryRoutes.Post("/", h.CreateCategory)
	categoryRoutes.Get("/:id", h.GetCategory)
	categoryRoutes.Put("/:id", h.UpdateCategory)
	categoryRoutes.Patch("/:id", h.UpdateCategory)
	categoryRoutes.Delete("/:id", h.DeleteCategory)

	// Realtime
	api.Get("/ws", requireToken, handlers.RequireUpgrade, h.Stream())
}
