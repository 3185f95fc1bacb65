package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxxcyber/hisab-kitab/internal/config"
	"github.com/foxxcyber/hisab-kitab/internal/handlers"
	"github.com/foxxcyber/hisab-kitab/internal/metrics"
	"github.com/foxxcyber/hisab-kitab/internal/services"
)

func testApp() *fiber.App {
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour, Timezone: "UTC"}
	h := handlers.New(nil, cfg, nil, nil, nil)
	bh := handlers.NewBillHandler(cfg, nil, nil, services.NewBillParser(), nil, nil)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	setupRoutes(app, cfg, h, bh, metrics.New(nil, time.UTC))
	return app
}

func TestRegistrationAliases(t *testing.T) {
	app := testApp()

	for _, path := range []string{"/api/auth/register", "/api/auth/signup", "/api/users/register"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, path,
				strings.NewReader(`{"name":"  ","email":"asha@example.com","password":"secret1"}`))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			var body handlers.APIResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "name is required", body.Error)
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := testApp()

	for _, path := range []string{"/api/auth/me", "/api/users/me", "/api/categories", "/api/admin/users"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}
}
