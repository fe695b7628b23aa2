package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"authgate/internal/database"
	puser "authgate/internal/platform/user"
)

func GetAllUsers(c *fiber.Ctx) error {
	users := c.Locals("users").(*puser.UserService)

	list, err := users.List(c.UserContext())
	if err != nil {
		log.Error().Err(err).Msg("user list failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	for i := range list {
		list[i] = list[i].Redacted()
	}

	return c.JSON(fiber.Map{
		"count": len(list),
		"users": list,
	})
}

func GetUser(c *fiber.Ctx) error {
	users := c.Locals("users").(*puser.UserService)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}

	user, err := users.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		log.Error().Err(err).Msg("user lookup failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(fiber.Map{"user": user.Redacted()})
}

func DeleteUser(c *fiber.Ctx) error {
	users := c.Locals("users").(*puser.UserService)
	actor := c.Locals("user").(database.User)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}

	if id == actor.ID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cannot delete your own account"})
	}

	if err := users.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		log.Error().Err(err).Msg("user delete failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

func UpdateUserRole(c *fiber.Ctx) error {
	users := c.Locals("users").(*puser.UserService)
	actor := c.Locals("user").(database.User)

	type RoleInput struct {
		Role string `json:"role"`
	}

	var input RoleInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if !database.ValidRole(input.Role) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": `Invalid role. Must be "user" or "admin"`})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}

	if id == actor.ID && input.Role == database.RoleUser {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cannot demote yourself"})
	}

	user, err := users.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		log.Error().Err(err).Msg("user lookup failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	if err := users.UpdateRole(c.UserContext(), id, input.Role); err != nil {
		log.Error().Err(err).Msg("role update failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
	user.Role = input.Role

	return c.JSON(fiber.Map{
		"message": "User role updated successfully",
		"user":    userPayload(user),
	})
}
