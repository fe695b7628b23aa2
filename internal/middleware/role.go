package middleware

import (
	"github.com/gofiber/fiber/v2"

	"authgate/internal/database"
)

// RequireRole composes after AuthMiddleware and rejects identities whose
// role is not in the allowed set.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(database.User)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}

		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message":      "Access denied. Insufficient permissions.",
			"requiredRole": roles,
			"yourRole":     user.Role,
		})
	}
}
