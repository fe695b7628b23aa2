package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"authgate/internal/auth"
	"authgate/internal/config"
	"authgate/internal/database"
	"authgate/internal/middleware"
	"authgate/internal/platform/session"
	puser "authgate/internal/platform/user"
)

// newTestApp wires the full route table against an in-memory store, the same
// shape as cmd/server but without the rate limiters.
func newTestApp() (*fiber.App, *puser.UserService) {
	config.Validate = validator.New()

	cfg := &config.Config{
		Environment:        "development",
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 168 * time.Hour,
		LockoutMaxAttempts: 5,
		LockoutDuration:    2 * time.Hour,
	}

	users := puser.NewService(database.NewMemoryStore())
	users.SetLockout(cfg.LockoutMaxAttempts, cfg.LockoutDuration)
	tokens := auth.NewTokenService(cfg)
	sessions := session.NewService(users, tokens)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", cfg)
		c.Locals("users", users)
		c.Locals("tokens", tokens)
		c.Locals("sessions", sessions)
		return c.Next()
	})

	app.Get("/health", HealthCheck)
	app.Post("/signup", Signup)
	app.Post("/login", Login)
	app.Post("/refresh", Refresh)
	app.Post("/logout", Logout)
	app.Post("/forgot-password", ForgotPassword)

	profile := app.Group("/profile", middleware.AuthMiddleware)
	profile.Get("/", GetProfile)
	profile.Put("/", UpdateProfile)

	admin := app.Group("/admin", middleware.AuthMiddleware, middleware.RequireRole(database.RoleAdmin))
	admin.Get("/users", GetAllUsers)
	admin.Get("/users/:id", GetUser)
	admin.Delete("/users/:id", DeleteUser)
	admin.Put("/users/:id/role", UpdateUserRole)

	return app, users
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func readBody(t *testing.T, resp *http.Response) (string, map[string]any) {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	return string(raw), decoded
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func signupUser(t *testing.T, app *fiber.App, email, password string) {
	t.Helper()

	resp, err := app.Test(jsonRequest(http.MethodPost, "/signup",
		`{"email":"`+email+`","password":"`+password+`"}`), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

// loginUser returns the access token and the refresh cookie.
func loginUser(t *testing.T, app *fiber.App, email, password string) (string, *http.Cookie) {
	t.Helper()

	resp, err := app.Test(jsonRequest(http.MethodPost, "/login",
		`{"email":"`+email+`","password":"`+password+`"}`), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, body := readBody(t, resp)
	token, ok := body["accessToken"].(string)
	require.True(t, ok)

	cookie := findCookie(resp, RefreshCookieName)
	require.NotNil(t, cookie)

	return token, cookie
}
