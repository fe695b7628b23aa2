package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"authgate/internal/auth"
	"authgate/internal/database"
	puser "authgate/internal/platform/user"
)

// AuthMiddleware gates protected routes. It requires a literal
// "Bearer <token>" Authorization header, verifies the access token, resolves
// the account and attaches a redacted copy under c.Locals("user").
func AuthMiddleware(c *fiber.Ctx) error {
	tokens := c.Locals("tokens").(*auth.TokenService)
	users := c.Locals("users").(*puser.UserService)

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "No token provided",
		})
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")

	userID, err := tokens.VerifyAccessToken(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid or expired token",
		})
	}

	user, err := users.GetByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Deleted mid-session; the token outlived the account.
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		log.Error().Err(err).Msg("auth middleware: user lookup failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	c.Locals("user", user.Redacted())

	return c.Next()
}
