package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxxcyber/hisab-kitab/internal/middleware"
	"github.com/foxxcyber/hisab-kitab/internal/models"
)

func TestRegisterValidation(t *testing.T) {
	h := testHandler()
	app := fiber.New()
	app.Post("/register", h.Register)

	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"malformed", `{"name":`, "invalid request body"},
		{"missing name", `{"name":"  ","email":"asha@example.com","password":"secret1"}`, "name is required"},
		{"bad email", `{"name":"Asha","email":"asha@","password":"secret1"}`, "invalid email format"},
		{"short password", `{"name":"Asha","email":"asha@example.com","password":"12345"}`, "password must be at least 6 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, http.MethodPost, "/register", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.False(t, body.Success)
			assert.Equal(t, tt.msg, body.Error)
		})
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	h := testHandler()
	app := fiber.New()
	app.Post("/login", h.Login)

	status, body := doJSON(t, app, http.MethodPost, "/login", `{"email":"asha@example.com"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "email and password are required", body.Error)
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	h := testHandler()
	h.now = time.Now

	user := &models.User{ID: 42, Email: "asha@example.com", Role: models.RoleAdmin}
	token, err := h.generateToken(user)
	require.NoError(t, err)

	claims, err := middleware.ParseToken(token, h.cfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "asha@example.com", claims.Subject)

	_, err = middleware.ParseToken(token, "another-secret")
	assert.Error(t, err)

	// Tokens issued at a fixed past instant are already expired
	h.now = func() time.Time { return testNow }
	stale, err := h.generateToken(user)
	require.NoError(t, err)
	_, err = middleware.ParseToken(stale, h.cfg.JWTSecret)
	assert.Error(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	store := newMemStore()
	h := storeHandler(store)
	app := fiber.New()
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)

	status, body := doJSON(t, app, http.MethodPost, "/register",
		`{"name":" Asha ","email":"asha@example.com","password":"secret1"}`)
	require.Equal(t, fiber.StatusCreated, status)
	var auth models.AuthResponse
	dataAs(t, body, &auth)
	assert.NotEmpty(t, auth.Token)
	require.NotNil(t, auth.User)
	assert.Equal(t, "Asha", auth.User.FullName)
	assert.NotEqual(t, "secret1", store.users[auth.User.ID].PasswordHash)

	status, body = doJSON(t, app, http.MethodPost, "/register",
		`{"name":"Asha again","email":"ASHA@example.com","password":"secret2"}`)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "email already registered", body.Error)

	status, body = doJSON(t, app, http.MethodPost, "/login", `{"email":"asha@example.com","password":"wrong-one"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "invalid email or password", body.Error)

	status, body = doJSON(t, app, http.MethodPost, "/login", `{"email":"nobody@example.com","password":"secret1"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "invalid email or password", body.Error)

	status, body = doJSON(t, app, http.MethodPost, "/login", `{"email":"asha@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, status)
	dataAs(t, body, &auth)
	assert.NotEmpty(t, auth.Token)
	require.NotNil(t, store.users[auth.User.ID].LastLoginAt)
}
