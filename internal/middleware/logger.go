package middleware

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"todo-api/pkg/logger"
)

const (
	HeaderRequestID = "X-Request-ID"
	localRequestID  = "requestID"
)

// RequestID reuses an incoming X-Request-ID or generates one.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Locals(localRequestID, id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(localRequestID).(string)
	return id
}

// ErrorHandler recovers panics and writes one request log line per request.
func ErrorHandler() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorLogger.Error(fmt.Sprintf("Recovered from panic: %v", r),
					zap.String("request_id", requestID(c)),
					zap.String("stack", string(debug.Stack())),
				)
				err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server Error"})
			}
			status := c.Response().StatusCode()
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
			logger.RequestLogger.Info("Request",
				zap.String("request_id", requestID(c)),
				zap.String("method", c.Method()),
				zap.String("url", c.OriginalURL()),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
			)
		}()
		return c.Next()
	}
}

// JSONErrorHandler renders errors that escape the handlers, such as unknown
// routes, as {"message": ...}.
func JSONErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Server Error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		logger.ErrorLogger.Error("Unhandled error", zap.String("request_id", requestID(c)), zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{"message": message})
}
