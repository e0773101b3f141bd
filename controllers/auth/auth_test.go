package authController_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"govlearn/config"
	"govlearn/database"
	authRoutes "govlearn/routers/authRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuthApp(t *testing.T) *fiber.App {
	t.Helper()

	config.AppConfig = &config.Config{
		Port:             "3000",
		JWTKey:           "test-secret",
		SaltRound:        4,
		MaxQuizQuestions: 15,
		UploadDir:        t.TempDir(),
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}

	app := fiber.New()
	authRoutes.SetupAuthRoutes(app)

	return app
}

func postJSON(t *testing.T, app *fiber.App, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var result map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&result)

	return resp.StatusCode, result
}

func TestRegisterAndLogin(t *testing.T) {
	app := setupAuthApp(t)

	status, result := postJSON(t, app, "/auth/register", "", map[string]interface{}{
		"name":     "Asha",
		"email":    "asha@gov.test",
		"password": "supersecret",
		"ministry": "Finance",
	})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, true, result["status"])

	status, result = postJSON(t, app, "/auth/login", "", map[string]interface{}{
		"email":    "asha@gov.test",
		"password": "supersecret",
	})
	require.Equal(t, fiber.StatusOK, status)

	data := result["data"].(map[string]interface{})
	token, ok := data["token"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	user := data["user"].(map[string]interface{})
	assert.Equal(t, "LEARNER", user["role"])

	// The token works against a protected route
	req := httptest.NewRequest("GET", "/user/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := setupAuthApp(t)

	payload := map[string]interface{}{
		"name":     "Asha",
		"email":    "asha@gov.test",
		"password": "supersecret",
	}

	status, _ := postJSON(t, app, "/auth/register", "", payload)
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = postJSON(t, app, "/auth/register", "", payload)
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestRegisterValidation(t *testing.T) {
	app := setupAuthApp(t)

	// Bad email and short password
	status, _ := postJSON(t, app, "/auth/register", "", map[string]interface{}{
		"name":     "Asha",
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestLoginWrongPassword(t *testing.T) {
	app := setupAuthApp(t)

	status, _ := postJSON(t, app, "/auth/register", "", map[string]interface{}{
		"name":     "Asha",
		"email":    "asha@gov.test",
		"password": "supersecret",
	})
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = postJSON(t, app, "/auth/login", "", map[string]interface{}{
		"email":    "asha@gov.test",
		"password": "wrong-password",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestProfileWithoutToken(t *testing.T) {
	app := setupAuthApp(t)

	req := httptest.NewRequest("GET", "/user/profile", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
