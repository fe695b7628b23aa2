package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"authgate/internal/config"
	"authgate/internal/database"
	puser "authgate/internal/platform/user"
)

func GetProfile(c *fiber.Ctx) error {
	user := c.Locals("user").(database.User)

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":        user.ID,
			"email":     user.Email,
			"role":      user.Role,
			"createdAt": user.CreatedAt,
		},
	})
}

func UpdateProfile(c *fiber.Ctx) error {
	users := c.Locals("users").(*puser.UserService)
	user := c.Locals("user").(database.User)

	type UpdateProfileInput struct {
		Email string `json:"email" validate:"omitempty,email"`
	}

	var input UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Must be a valid email"})
	}

	if input.Email != "" {
		if err := users.UpdateEmail(c.UserContext(), user.ID, input.Email); err != nil {
			if errors.Is(err, database.ErrDuplicateEmail) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email already in use"})
			}
			log.Error().Err(err).Msg("profile update failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
		}
		user.Email = puser.NormalizeEmail(input.Email)
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    userPayload(&user),
	})
}
