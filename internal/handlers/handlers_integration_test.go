package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"playbox/internal/handlers"
	"playbox/internal/models"
	"playbox/internal/repositories"
	"playbox/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp sets up a Fiber app for testing with an in-memory SQLite store
// and the full handler/service/repository stack.
func setupApp(t *testing.T) (*fiber.App, *services.AuthService, *gorm.DB) {
	t.Helper()

	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// A per-test database name keeps tests isolated from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	userRepo := repositories.NewGORMUserRepository(db)
	authService := services.NewAuthService(userRepo, jwtSecret, nil) // nil broker

	app := fiber.New()
	api := app.Group("/api")
	handlers.NewUserHandler(authService).RegisterRoutes(api)

	return app, authService, db
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	return do(t, app, req)
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp, payload
}

func userCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	return n
}

func TestRegisterAndLogin(t *testing.T) {
	app, authService, _ := setupApp(t)

	resp, payload := postJSON(t, app, "/api/user/register", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, models.RoleUser, payload["role"])
	require.NotEmpty(t, payload["token"])

	claims, err := authService.ValidateToken(payload["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, claims["role"])

	resp, payload = postJSON(t, app, "/api/user/login", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, models.RoleUser, payload["role"])
	assert.NotEmpty(t, payload["token"])
}

func TestRegisterWeakPassword(t *testing.T) {
	app, _, db := setupApp(t)

	resp, payload := postJSON(t, app, "/api/user/register", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "short12", // 7 characters
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "please enter a strong password ", payload["message"])
	assert.EqualValues(t, 0, userCount(t, db))
}

func TestRegisterInvalidEmail(t *testing.T) {
	app, _, db := setupApp(t)

	resp, payload := postJSON(t, app, "/api/user/register", map[string]string{
		"name":     "Test User",
		"email":    "not-an-email",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "please enter a valid email ", payload["message"])
	assert.EqualValues(t, 0, userCount(t, db))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app, _, db := setupApp(t)

	_, payload := postJSON(t, app, "/api/user/register", map[string]string{
		"name":     "First",
		"email":    "test@example.com",
		"password": "password123",
	})
	require.Equal(t, true, payload["success"])

	resp, payload := postJSON(t, app, "/api/user/register", map[string]string{
		"name":     "Second",
		"email":    "test@example.com",
		"password": "password456",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "user already exist", payload["message"])
	assert.EqualValues(t, 1, userCount(t, db))

	// The original record is unchanged.
	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "test@example.com").Error)
	assert.Equal(t, "First", user.Name)
}

func TestLoginFailures(t *testing.T) {
	app, _, _ := setupApp(t)

	_, payload := postJSON(t, app, "/api/user/register", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "password123",
	})
	require.Equal(t, true, payload["success"])

	// Wrong password: no token issued.
	resp, payload := postJSON(t, app, "/api/user/login", map[string]string{
		"email":    "test@example.com",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "Invalid Credentials", payload["message"])
	assert.Nil(t, payload["token"])

	// Unknown email uses a distinct message (existing wire contract).
	resp, payload = postJSON(t, app, "/api/user/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "user does not exist ", payload["message"])
}

func TestGetUser(t *testing.T) {
	app, _, db := setupApp(t)

	_, payload := postJSON(t, app, "/api/user/register", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "password123",
	})
	require.Equal(t, true, payload["success"])

	var stored models.User
	require.NoError(t, db.First(&stored, "email = ?", "test@example.com").Error)

	req := httptest.NewRequest(http.MethodGet, "/api/user/"+stored.ID, nil)
	resp, payload := do(t, app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["success"])

	user, ok := payload["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, stored.ID, user["id"])
	assert.Equal(t, "test@example.com", user["email"])
	assert.NotContains(t, user, "password")

	// Unknown id.
	req = httptest.NewRequest(http.MethodGet, "/api/user/does-not-exist", nil)
	resp, payload = do(t, app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "User not found", payload["message"])
}

func TestDeleteUser(t *testing.T) {
	app, _, db := setupApp(t)

	_, payload := postJSON(t, app, "/api/user/register", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "password123",
	})
	require.Equal(t, true, payload["success"])

	var stored models.User
	require.NoError(t, db.First(&stored, "email = ?", "test@example.com").Error)

	req := httptest.NewRequest(http.MethodDelete, "/api/user/"+stored.ID, nil)
	resp, payload := do(t, app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "User deleted successfully", payload["message"])
	assert.EqualValues(t, 0, userCount(t, db))

	// Deleting a non-existent id leaves the collection unchanged.
	req = httptest.NewRequest(http.MethodDelete, "/api/user/does-not-exist", nil)
	resp, payload = do(t, app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "User not found", payload["message"])
}

func TestFailuresNeverUseErrorStatusCodes(t *testing.T) {
	app, _, _ := setupApp(t)

	requests := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/user/missing", nil),
		httptest.NewRequest(http.MethodDelete, "/api/user/missing", nil),
	}
	for _, req := range requests {
		resp, payload := do(t, app, req)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, false, payload["success"])
		assert.NotEmpty(t, payload["message"])
	}
}
