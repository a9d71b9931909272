package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"todo-api/internal/auth"
	"todo-api/internal/models"
	"todo-api/internal/repository"
	"todo-api/pkg/logger"
)

const (
	localUserID = "userID"
	localClaims = "claims"
)

// UserFinder loads the user a token was issued to.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (models.User, error)
}

// UseToken authenticates the bearer token and stores the user id and claims
// in Locals. Websocket upgrades may pass the token as ?token= instead.
// Tokens of deleted users are rejected.
func UseToken(tokens *auth.TokenManager, users UserFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c)
		if !ok {
			return unauthenticated(c, "missing or malformed token")
		}
		claims, err := tokens.Parse(c.UserContext(), raw)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrRevokedToken) {
				return unauthenticated(c, err.Error())
			}
			logger.ErrorLogger.Error("Token check failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server Error"})
		}
		if _, err := users.FindByID(c.UserContext(), claims.UserID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return unauthenticated(c, "user no longer exists")
			}
			logger.ErrorLogger.Error("User lookup failed", zap.Int64("user_id", claims.UserID), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server Error"})
		}
		c.Locals(localUserID, claims.UserID)
		c.Locals(localClaims, claims)
		logger.ContextLogger.Debug("Token accepted",
			zap.String("request_id", requestID(c)),
			zap.Int64("user_id", claims.UserID),
			zap.String("jti", claims.ID),
		)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}
	if c.Get(fiber.HeaderUpgrade) != "" {
		if token := c.Query("token"); token != "" {
			return token, true
		}
	}
	return "", false
}

func unauthenticated(c *fiber.Ctx, reason string) error {
	logger.SecurityLogger.Warn("Unauthenticated request",
		zap.String("reason", reason),
		zap.String("path", c.Path()),
		zap.String("ip", c.IP()),
	)
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthenticated."})
}

// UserID returns the authenticated user's id set by UseToken.
func UserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(localUserID).(int64)
	return id
}

// Claims returns the token claims set by UseToken.
func Claims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(localClaims).(*auth.Claims)
	return claims
}
