package middleware

import (
	"strings"

	"github.com/Zhihong0321/ATAP-solar/internal/logger"
	"github.com/gofiber/fiber/v2"
)

// TokenKey is the locals key holding the operator's bearer token.
const TokenKey = "adminToken"

// RequireToken extracts the operator's bearer token and stores it in the
// request locals. The token is not validated here: it is passed through to
// the remote content API on every mutating call, and that API is the single
// authority on whether it is valid.
func RequireToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			logger.Warn().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Msg("Admin request without bearer token")

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing access token",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing access token",
			})
		}

		c.Locals(TokenKey, token)
		return c.Next()
	}
}

// Token reads the bearer token stored by RequireToken.
func Token(c *fiber.Ctx) string {
	if token, ok := c.Locals(TokenKey).(string); ok {
		return token
	}
	return ""
}
