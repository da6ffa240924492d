package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"equipment-backend/internal/models"
	"equipment-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret-1234"

func newApp(a Authenticator) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: response.ErrorHandler})
	app.Use(Authenticate(a))
	app.Get("/me", func(c *fiber.Ctx) error {
		p, _ := PrincipalFrom(c)
		return c.JSON(p)
	})
	app.Delete("/admin", RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestJWTAuthenticatorDefaultsToStaff(t *testing.T) {
	id := uuid.New()
	token, err := GenerateToken(testSecret, Principal{ID: id, Email: "s@example.com"}, time.Hour)
	require.NoError(t, err)

	p, err := NewJWTAuthenticator(testSecret).Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "s@example.com", p.Email)
	assert.Equal(t, models.RoleStaff, p.Role)
}

func TestJWTAuthenticatorRejectsBadTokens(t *testing.T) {
	a := NewJWTAuthenticator(testSecret)

	other, err := GenerateToken("another-secret-another-secret-another", Principal{ID: uuid.New()}, time.Hour)
	require.NoError(t, err)
	_, err = a.Authenticate(context.Background(), other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateToken(testSecret, Principal{ID: uuid.New()}, -time.Minute)
	require.NoError(t, err)
	_, err = a.Authenticate(context.Background(), expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateMiddleware(t *testing.T) {
	app := newApp(NewJWTAuthenticator(testSecret))

	resp := do(t, app, "GET", "/me", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = do(t, app, "GET", "/me", "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	id := uuid.New()
	token, _ := GenerateToken(testSecret, Principal{ID: id, Role: models.RoleAdmin}, time.Hour)
	resp = do(t, app, "GET", "/me", token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var p Principal
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Equal(t, id, p.ID)
	assert.True(t, p.IsAdmin())
}

func TestRequireRole(t *testing.T) {
	app := newApp(NewJWTAuthenticator(testSecret))

	staff, _ := GenerateToken(testSecret, Principal{ID: uuid.New(), Role: models.RoleStaff}, time.Hour)
	assert.Equal(t, fiber.StatusForbidden, do(t, app, "DELETE", "/admin", staff).StatusCode)

	admin, _ := GenerateToken(testSecret, Principal{ID: uuid.New(), Role: models.RoleAdmin}, time.Hour)
	assert.Equal(t, fiber.StatusNoContent, do(t, app, "DELETE", "/admin", admin).StatusCode)
}

func TestRemoteAuthenticator(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" || r.Header.Get("apikey") != "anon" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            id.String(),
			"email":         "a@example.com",
			"user_metadata": map[string]any{"role": "admin"},
		})
	}))
	defer srv.Close()

	a := NewRemoteAuthenticator(srv.URL, "anon")

	p, err := a.Authenticate(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, models.RoleAdmin, p.Role)

	_, err = a.Authenticate(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
