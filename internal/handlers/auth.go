package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"authgate/internal/config"
	"authgate/internal/database"
	"authgate/internal/platform/session"
	puser "authgate/internal/platform/user"
)

const RefreshCookieName = "refreshToken"

func userPayload(u *database.User) fiber.Map {
	return fiber.Map{
		"id":    u.ID,
		"email": u.Email,
		"role":  u.Role,
	}
}

// setRefreshCookie delivers the refresh token as an HTTP-only, same-site
// strict cookie. It never appears in a JSON body.
func setRefreshCookie(c *fiber.Ctx, cfg *config.Config, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.RefreshTokenExpiry.Seconds()),
		HTTPOnly: true,
		Secure:   cfg.Production(),
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func clearRefreshCookie(c *fiber.Ctx, cfg *config.Config) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   cfg.Production(),
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func Signup(c *fiber.Ctx) error {
	sessions := c.Locals("sessions").(*session.Service)

	type SignupInput struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	var input SignupInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if input.Email == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email and password required"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Must be a valid email"})
	}

	user, err := sessions.Signup(c.UserContext(), input.Email, input.Password)
	if err != nil {
		var policyErr *puser.PolicyError
		switch {
		case errors.As(err, &policyErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": policyErr.Reason})
		case errors.Is(err, database.ErrDuplicateEmail):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "User already exists"})
		}
		log.Error().Err(err).Msg("signup failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    userPayload(user),
	})
}

func Login(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	sessions := c.Locals("sessions").(*session.Service)

	type LoginInput struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if input.Email == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email and password required"})
	}

	user, pair, err := sessions.Login(c.UserContext(), input.Email, input.Password)
	if err != nil {
		var lockedErr *session.LockedError
		switch {
		case errors.As(err, &lockedErr):
			return c.Status(fiber.StatusLocked).JSON(fiber.Map{
				"message": fmt.Sprintf(
					"Account locked due to too many failed login attempts. Try again in %d minutes.",
					lockedErr.RemainingMinutes()),
			})
		case errors.Is(err, session.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials"})
		}
		log.Error().Err(err).Msg("login failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	setRefreshCookie(c, cfg, pair.RefreshToken)

	return c.JSON(fiber.Map{
		"message":     "Login successful",
		"accessToken": pair.AccessToken,
		"user":        userPayload(user),
	})
}

func Refresh(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	sessions := c.Locals("sessions").(*session.Service)

	user, pair, err := sessions.Refresh(c.UserContext(), c.Cookies(RefreshCookieName))
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoRefreshToken):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "No refresh token provided"})
		case errors.Is(err, session.ErrInvalidRefreshToken):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid refresh token"})
		}
		log.Error().Err(err).Msg("token refresh failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	setRefreshCookie(c, cfg, pair.RefreshToken)

	return c.JSON(fiber.Map{
		"accessToken": pair.AccessToken,
		"user":        userPayload(user),
	})
}

// Logout clears the stored refresh slot and the cookie. It always reports
// success so the response cannot leak whether the token was live.
func Logout(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	sessions := c.Locals("sessions").(*session.Service)

	if err := sessions.Logout(c.UserContext(), c.Cookies(RefreshCookieName)); err != nil {
		log.Error().Err(err).Msg("logout: refresh slot clear failed")
	}

	clearRefreshCookie(c, cfg)

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// ForgotPassword is a stub; password reset is not part of this service yet.
func ForgotPassword(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
		"message": "Password reset is not available",
	})
}
