package handlers

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"todo-api/internal/config"
	"todo-api/internal/service"
	"todo-api/pkg/logger"
)

// Handler serves the /api routes on top of the services in deps.
type Handler struct {
	deps *config.Dependencies
}

func New(deps *config.Dependencies) *Handler {
	return &Handler{deps: deps}
}

var errBadRequest = errors.New("bad request")

// parseBody decodes a JSON body into out. An empty body leaves out untouched.
func parseBody(c *fiber.Ctx, out any) error {
	if len(bytes.TrimSpace(c.Body())) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		logger.RequestLogger.Info("Bad request body", zap.String("url", c.OriginalURL()), zap.Error(err))
		return errBadRequest
	}
	return nil
}

// paramID reads the :id route parameter. Anything but a positive integer
// cannot name a row.
func paramID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

// respondError maps service errors onto status codes.
func respondError(c *fiber.Ctx, err error) error {
	var (
		verr *service.ValidationError
		nf   *service.NotFoundError
	)
	switch {
	case errors.Is(err, errBadRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Bad request"})
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": verr.Message(),
			"errors":  verr.Fields,
		})
	case errors.As(err, &nf):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": nf.Message()})
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not found"})
	case errors.Is(err, service.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Forbidden"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials"})
	default:
		logger.ErrorLogger.Error("Request failed",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server Error"})
	}
}

func notFound(c *fiber.Ctx, resource string) error {
	return respondError(c, &service.NotFoundError{Resource: resource})
}
