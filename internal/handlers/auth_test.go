package handlers

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupCreatesUser(t *testing.T) {
	app, _ := newTestApp()

	resp, err := app.Test(jsonRequest(http.MethodPost, "/signup",
		`{"email":"a@b.com","password":"abc123"}`), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	raw, body := readBody(t, resp)
	user := body["user"].(map[string]any)
	assert.Equal(t, "a@b.com", user["email"])
	assert.Equal(t, "user", user["role"])
	assert.NotEmpty(t, user["id"])

	// The response never carries credential material.
	assert.NotContains(t, raw, "password")
	assert.NotContains(t, raw, "hash")
	assert.NotContains(t, raw, "refresh")
}

func TestSignupValidation(t *testing.T) {
	app, _ := newTestApp()

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing email", `{"password":"abc123"}`, "Email and password required"},
		{"missing password", `{"email":"a@b.com"}`, "Email and password required"},
		{"malformed email", `{"email":"not-an-email","password":"abc123"}`, "Must be a valid email"},
		{"too short", `{"email":"a@b.com","password":"ab1"}`, "Password must be at least 6 characters"},
		{"no digit", `{"email":"a@b.com","password":"abcdef"}`, "Password must contain at least one number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest(http.MethodPost, "/signup", tt.body), -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

			_, body := readBody(t, resp)
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	app, _ := newTestApp()
	signupUser(t, app, "a@b.com", "abc123")

	resp, err := app.Test(jsonRequest(http.MethodPost, "/signup",
		`{"email":"A@B.com","password":"abc123"}`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	_, body := readBody(t, resp)
	assert.Equal(t, "User already exists", body["message"])
}

func TestLoginSetsRefreshCookie(t *testing.T) {
	app, _ := newTestApp()
	signupUser(t, app, "a@b.com", "abc123")

	resp, err := app.Test(jsonRequest(http.MethodPost, "/login",
		`{"email":"a@b.com","password":"abc123"}`), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, body := readBody(t, resp)
	assert.NotEmpty(t, body["accessToken"])
	assert.NotContains(t, raw, "refreshToken")

	cookie := findCookie(resp, RefreshCookieName)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	app, _ := newTestApp()
	signupUser(t, app, "a@b.com", "abc123")

	unknown, err := app.Test(jsonRequest(http.MethodPost, "/login",
		`{"email":"nobody@b.com","password":"abc123"}`), -1)
	require.NoError(t, err)
	wrong, err := app.Test(jsonRequest(http.MethodPost, "/login",
		`{"email":"a@b.com","password":"wrong99"}`), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, unknown.StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, wrong.StatusCode)

	unknownRaw, _ := readBody(t, unknown)
	wrongRaw, _ := readBody(t, wrong)
	assert.Equal(t, unknownRaw, wrongRaw)
}

func TestLoginLockout(t *testing.T) {
	app, _ := newTestApp()
	signupUser(t, app, "a@b.com", "abc123")

	for i := 0; i < 4; i++ {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/login",
			`{"email":"a@b.com","password":"wrong99"}`), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	}

	// Fifth failure crosses the threshold.
	resp, err := app.Test(jsonRequest(http.MethodPost, "/login",
		`{"email":"a@b.com","password":"wrong99"}`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusLocked, resp.StatusCode)

	_, body := readBody(t, resp)
	assert.Contains(t, body["message"], "Account locked")

	// The correct password is rejected while the lock holds.
	resp, err = app.Test(jsonRequest(http.MethodPost, "/login",
		`{"email":"a@b.com","password":"abc123"}`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusLocked, resp.StatusCode)
}

func TestRefreshRotatesToken(t *testing.T) {
	app, _ := newTestApp()
	signupUser(t, app, "a@b.com", "abc123")
	_, first := loginUser(t, app, "a@b.com", "abc123")

	req := jsonRequest(http.MethodPost, "/refresh", "")
	req.AddCookie(first)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, body := readBody(t, resp)
	assert.NotEmpty(t, body["accessToken"])

	rotated := findCookie(resp, RefreshCookieName)
	require.NotNil(t, rotated)
	assert.NotEqual(t, first.Value, rotated.Value)

	// The consumed token is single-use.
	req = jsonRequest(http.MethodPost, "/refresh", "")
	req.AddCookie(first)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// The rotated one still works.
	req = jsonRequest(http.MethodPost, "/refresh", "")
	req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: rotated.Value})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRefreshWithoutCookie(t *testing.T) {
	app, _ := newTestApp()

	resp, err := app.Test(jsonRequest(http.MethodPost, "/refresh", ""), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	_, body := readBody(t, resp)
	assert.Equal(t, "No refresh token provided", body["message"])
}

func TestLogoutClearsRefreshToken(t *testing.T) {
	app, _ := newTestApp()
	signupUser(t, app, "a@b.com", "abc123")
	_, cookie := loginUser(t, app, "a@b.com", "abc123")

	req := jsonRequest(http.MethodPost, "/logout", "")
	req.AddCookie(cookie)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	cleared := findCookie(resp, RefreshCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	// The revoked token can no longer be exchanged.
	req = jsonRequest(http.MethodPost, "/refresh", "")
	req.AddCookie(cookie)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutWithoutCookieSucceeds(t *testing.T) {
	app, _ := newTestApp()

	resp, err := app.Test(jsonRequest(http.MethodPost, "/logout", ""), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, body := readBody(t, resp)
	assert.Equal(t, "Logged out successfully", body["message"])
}

func TestForgotPasswordStub(t *testing.T) {
	app, _ := newTestApp()

	resp, err := app.Test(jsonRequest(http.MethodPost, "/forgot-password",
		`{"email":"a@b.com"}`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotImplemented, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	app, _ := newTestApp()

	resp, err := app.Test(jsonRequest(http.MethodGet, "/health", ""), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, body := readBody(t, resp)
	assert.Equal(t, "OK", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}
