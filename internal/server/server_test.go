package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"equipment-backend/internal/auth"
	"equipment-backend/internal/config"
	"equipment-backend/internal/models"
	"equipment-backend/internal/order"
	"equipment-backend/internal/response"
	"equipment-backend/internal/server"
	"equipment-backend/internal/storage"
	"equipment-backend/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const secret = "test-secret-test-secret-test-secret!"

var (
	admin = auth.Principal{ID: uuid.New(), Email: "admin@example.com", Role: models.RoleAdmin}
	staff = auth.Principal{ID: uuid.New(), Email: "staff@example.com", Role: models.RoleStaff}
)

func newApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	return newAppWithIdempotency(t, nil)
}

func newAppWithIdempotency(t *testing.T, idem *order.Idempotency) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir, "/uploads")
	require.NoError(t, err)

	cfg := &config.Config{UploadDir: dir, UploadMaxMB: 1, MetricsEnabled: true}
	cfg.SetOrigins("http://app.example.com")

	app := server.New(server.Deps{
		Config:        cfg,
		DB:            db,
		Authenticator: auth.NewJWTAuthenticator(secret),
		Store:         store,
		Idempotency:   idem,
	})
	return app, db
}

func token(t *testing.T, p auth.Principal) string {
	t.Helper()
	tok, err := auth.GenerateToken(secret, p, time.Hour)
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, app *fiber.App, method, path string, p *auth.Principal, body any) (int, response.Envelope) {
	t.Helper()
	return doWithHeaders(t, app, method, path, p, body, nil)
}

func doWithHeaders(t *testing.T, app *fiber.App, method, path string, p *auth.Principal, body any, headers map[string]string) (int, response.Envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if p != nil {
		req.Header.Set("Authorization", "Bearer "+token(t, *p))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func TestHealthIsPublic(t *testing.T) {
	app, _ := newApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSPredicate(t *testing.T) {
	app, _ := newApp(t)

	preflight := func(origin string) string {
		req := httptest.NewRequest("OPTIONS", "/api/equipments", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", "GET")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.Header.Get("Access-Control-Allow-Origin")
	}

	assert.Equal(t, "http://app.example.com", preflight("http://app.example.com"))
	assert.Empty(t, preflight("http://evil.example.com"))
}

func TestAuthGate(t *testing.T) {
	app, _ := newApp(t)

	status, env := do(t, app, "GET", "/api/equipments", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "No token provided", env.Error)

	status, _ = do(t, app, "GET", "/api/equipments", &staff, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = do(t, app, "GET", "/api/auth/me", &staff, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, staff.Email, env.Data.(map[string]any)["email"])
}

func TestEquipmentWritesRequireAdmin(t *testing.T) {
	app, _ := newApp(t)
	body := map[string]any{"name": "Drill", "type": "electrical", "quantity_total": 5, "minimum_threshold": 1}

	status, env := do(t, app, "POST", "/api/equipments", &staff, body)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Admin access required", env.Error)

	status, env = do(t, app, "POST", "/api/equipments", &admin, body)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(5), env.Data.(map[string]any)["quantity_available"])

	status, _ = do(t, app, "GET", "/api/audit-logs", &staff, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestOrderFlowOverHTTP(t *testing.T) {
	app, db := newApp(t)
	eq := testutil.SeedEquipment(t, db, "Cable", 10, 10, 2)

	body := map[string]any{
		"generator_model": "GX-200",
		"order_reference": "ORD-1",
		"receiver_name":   "Ayşe",
		"materials":       []map[string]any{{"equipment_id": eq.ID, "quantity": 4}},
	}
	status, env := do(t, app, "POST", "/api/orders", &staff, body)
	require.Equal(t, http.StatusCreated, status, env.Error)
	assert.True(t, env.Success)
	assert.Equal(t, 6, testutil.Available(t, db, eq.ID))
	orderID := env.Data.(map[string]any)["id"].(string)

	status, env = do(t, app, "PUT", "/api/orders/"+orderID, &staff, map[string]any{"notes": "deliver to gate 2"})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, "Order updated successfully", env.Message)
	assert.Equal(t, "deliver to gate 2", env.Data.(map[string]any)["notes"])

	body["materials"] = []map[string]any{{"equipment_id": eq.ID, "quantity": 7}}
	body["order_reference"] = "ORD-2"
	status, env = do(t, app, "POST", "/api/orders", &staff, body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Insufficient stock for Cable. Available: 6, Requested: 7", env.Error)
	assert.Equal(t, 6, testutil.Available(t, db, eq.ID))

	status, env = do(t, app, "GET", "/api/orders/history/movements?type=OUT", &staff, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, env.Data, 1)

	status, _ = do(t, app, "GET", fmt.Sprintf("/api/orders/%s", uuid.New()), &staff, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, "GET", "/api/orders/not-a-uuid", &staff, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestConsumptionOverHTTP(t *testing.T) {
	app, db := newApp(t)
	eq := testutil.SeedEquipment(t, db, "Gloves", 5, 5, 3)

	status, env := do(t, app, "POST", "/api/consumption", &staff,
		map[string]any{"equipment_id": eq.ID, "quantity_used": 2, "purpose": "site work"})
	require.Equal(t, http.StatusCreated, status, env.Error)
	assert.Equal(t, 3, testutil.Available(t, db, eq.ID))

	status, env = do(t, app, "GET", "/api/notifications?sent=false", &staff, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, env.Data, 1)
}

func TestIdempotentOrderCreateOverHTTP(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	app, db := newAppWithIdempotency(t, order.NewIdempotency(rdb))
	eq := testutil.SeedEquipment(t, db, "Cable", 10, 10, 2)
	body := map[string]any{
		"generator_model": "GX-200",
		"order_reference": "ORD-IDEM",
		"receiver_name":   "Mehmet",
		"materials":       []map[string]any{{"equipment_id": eq.ID, "quantity": 3}},
	}
	key := map[string]string{order.HeaderIdempotencyKey: "retry-123"}

	status, first := doWithHeaders(t, app, "POST", "/api/orders", &staff, body, key)
	require.Equal(t, http.StatusCreated, status, first.Error)

	status, again := doWithHeaders(t, app, "POST", "/api/orders", &staff, body, key)
	require.Equal(t, http.StatusOK, status, again.Error)
	assert.Equal(t, first.Data.(map[string]any)["id"], again.Data.(map[string]any)["id"])

	// stok yalnızca bir kez düştü
	assert.Equal(t, 7, testutil.Available(t, db, eq.ID))
	assert.Equal(t, int64(1), testutil.Count(t, db, &models.Order{}))

	// başka kullanıcı aynı anahtarla yeni sipariş oluşturur
	status, _ = doWithHeaders(t, app, "POST", "/api/orders", &admin, body, key)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 4, testutil.Available(t, db, eq.ID))
}
