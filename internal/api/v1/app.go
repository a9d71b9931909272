package v1

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"todo-api/internal/config"
	"todo-api/internal/middleware"
)

// NewApp builds the Fiber application with middleware and /api routes.
func NewApp(deps *config.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "todo-api",
		ErrorHandler: middleware.JSONErrorHandler,
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  deps.Config.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + middleware.HeaderRequestID,
		ExposeHeaders: middleware.HeaderRequestID,
	}))
	if deps.Config.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        deps.Config.RateLimitMax,
			Expiration: 1 * time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Too Many Attempts."})
			},
		}))
	}

	RegisterRoutes(app, deps)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not found"})
	})
	return app
}
