package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quickshelf/internal/app"
	"quickshelf/internal/config"
	"quickshelf/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func memoryConfig() *config.Config {
	return &config.Config{
		AppPort:              ":0",
		DescriptionMaxLength: 1000,
		Database:             database.Config{Driver: config.DriverMemory},
		JWTTTL:               time.Hour,
	}
}

func newApp(t *testing.T, cfg *config.Config) *app.App {
	t.Helper()
	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown() })
	return a
}

func call(t *testing.T, a *app.App, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.Fiber.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func listLength(t *testing.T, a *app.App) int {
	t.Helper()
	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/products", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var products []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	return len(products)
}

func TestInfo(t *testing.T) {
	a := newApp(t, memoryConfig())

	status, body := call(t, a, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]interface{}{
		"name":        "QuickShelf API",
		"description": "RESTful API for managing product inventory",
		"version":     "1.0.0",
	}, body)
}

func TestHealth_Memory(t *testing.T) {
	a := newApp(t, memoryConfig())

	status, body := call(t, a, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "memory", body["database"])
	assert.Equal(t, "disabled", body["broker"])
	_, err := time.Parse(time.RFC3339, body["time"].(string))
	assert.NoError(t, err)
}

func TestHealth_SQLite(t *testing.T) {
	cfg := memoryConfig()
	cfg.Database = database.Config{
		Driver:         database.DriverSQLite,
		DSN:            "file:" + filepath.Join(t.TempDir(), "health.db"),
		ConnectTimeout: 5 * time.Second,
		LogLevel:       "silent",
	}
	a := newApp(t, cfg)

	status, body := call(t, a, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", body["database"])

	status, _ = call(t, a, http.MethodPost, "/products", map[string]interface{}{
		"name": "Widget", "price": 1, "category": "Tools", "stockQuantity": 1,
	}, "")
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 1, listLength(t, a))
}

func TestDescriptionLimitAboveDefault(t *testing.T) {
	cfg := memoryConfig()
	cfg.DescriptionMaxLength = 2000
	cfg.Database = database.Config{
		Driver:   database.DriverSQLite,
		DSN:      "file:" + filepath.Join(t.TempDir(), "long.db"),
		LogLevel: "silent",
	}
	a := newApp(t, cfg)

	product := map[string]interface{}{
		"name": "Manual", "description": strings.Repeat("d", 1500), "price": 1, "category": "Books", "stockQuantity": 1,
	}
	status, body := call(t, a, http.MethodPost, "/products", product, "")
	require.Equal(t, http.StatusCreated, status)
	assert.Len(t, body["description"], 1500)

	product["description"] = strings.Repeat("d", 2001)
	status, body = call(t, a, http.MethodPost, "/products", product, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]interface{}{
		"description": "Description must not exceed 2000 characters",
	}, body["errors"])
}

func TestNew_UnknownDriverFails(t *testing.T) {
	cfg := memoryConfig()
	cfg.Database = database.Config{Driver: "mongo", DSN: "mongodb://localhost"}

	_, err := app.New(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown database driver: mongo")
}

func TestSeedData(t *testing.T) {
	cfg := memoryConfig()
	cfg.SeedData = true
	a := newApp(t, cfg)

	assert.Equal(t, 3, listLength(t, a))
}

func TestWritesArePublicWithoutAuth(t *testing.T) {
	a := newApp(t, memoryConfig())

	status, _ := call(t, a, http.MethodPost, "/products", map[string]interface{}{
		"name": "Widget", "price": 1, "category": "Tools", "stockQuantity": 1,
	}, "")
	assert.Equal(t, http.StatusCreated, status)

	status, _ = call(t, a, http.MethodPost, "/auth/login", map[string]interface{}{
		"username": "alice", "password": "secret123",
	}, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAuthEnabled(t *testing.T) {
	cfg := memoryConfig()
	cfg.AuthEnabled = true
	cfg.JWTSecret = "test-secret"
	a := newApp(t, cfg)

	product := map[string]interface{}{"name": "Widget", "price": 1, "category": "Tools", "stockQuantity": 1}

	t.Run("writes need a token", func(t *testing.T) {
		status, body := call(t, a, http.MethodPost, "/products", product, "")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.EqualValues(t, http.StatusUnauthorized, body["status"])
		assert.Equal(t, "Authorization header is required", body["message"])
		assert.NotEmpty(t, body["timestamp"])

		status, body = call(t, a, http.MethodDelete, "/products/any", nil, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid or expired token", body["message"])
	})

	t.Run("reads stay public", func(t *testing.T) {
		status, _ := call(t, a, http.MethodGet, "/products/missing", nil, "")
		assert.Equal(t, http.StatusNotFound, status)
	})

	user := map[string]interface{}{"username": "alice", "email": "alice@example.com", "password": "secret123"}

	status, body := call(t, a, http.MethodPost, "/auth/register", user, "")
	require.Equal(t, http.StatusCreated, status)
	registered := body["user"].(map[string]interface{})
	assert.Equal(t, "alice", registered["username"])
	assert.NotContains(t, registered, "password")

	status, body = call(t, a, http.MethodPost, "/auth/register", user, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body["message"], "already taken")

	status, body = call(t, a, http.MethodPost, "/auth/register", map[string]interface{}{
		"username": "al", "email": "nope", "password": "123",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]interface{}{
		"username": "Username must be at least 3 characters",
		"email":    "Email must be a valid email address",
		"password": "Password must be at least 6 characters",
	}, body["errors"])

	status, _ = call(t, a, http.MethodPost, "/auth/login", map[string]interface{}{
		"username": "alice", "password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = call(t, a, http.MethodPost, "/auth/login", map[string]interface{}{
		"username": "alice", "password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	status, body = call(t, a, http.MethodPost, "/products", product, token)
	require.Equal(t, http.StatusCreated, status)
	id := body["id"].(string)

	status, _ = call(t, a, http.MethodDelete, "/products/"+id, nil, token)
	assert.Equal(t, http.StatusNoContent, status)
}
