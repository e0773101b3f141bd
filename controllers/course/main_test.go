package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"govlearn/config"
	"govlearn/database"
	"govlearn/middleware"
	"govlearn/models"
	courseModels "govlearn/models/course"
	authRoutes "govlearn/routers/authRoutes"
	courseRoutes "govlearn/routers/courseRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestApp wires the full fiber app to a fresh in-memory database
func setupTestApp(t *testing.T) *fiber.App {
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

	// A single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}

	app := fiber.New()
	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)

	return app
}

func seedUser(t *testing.T, name, email, role string) (models.User, string) {
	t.Helper()

	user := models.User{Name: name, Email: email, Password: "not-used", Role: role}
	require.NoError(t, database.Database.Db.Create(&user).Error)

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	require.NoError(t, err)

	return user, token
}

func seedCourse(t *testing.T, title, level string, orderIndex int, published bool) courseModels.Course {
	t.Helper()

	course := courseModels.Course{Title: title, Level: level, OrderIndex: orderIndex, IsPublished: published}
	require.NoError(t, database.Database.Db.Create(&course).Error)

	return course
}

func seedLesson(t *testing.T, courseID uint, title string, orderIndex int, published bool) courseModels.Lesson {
	t.Helper()

	lesson := courseModels.Lesson{
		CourseID:    courseID,
		Title:       title,
		Type:        courseModels.LessonTypeText,
		DurationMin: 10,
		OrderIndex:  orderIndex,
		IsPublished: published,
	}
	require.NoError(t, database.Database.Db.Create(&lesson).Error)

	return lesson
}

// doRequest performs a JSON request against the app and decodes the envelope
func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var result map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&result)

	return resp.StatusCode, result
}

// data extracts the envelope's data object
func data(t *testing.T, result map[string]interface{}) map[string]interface{} {
	t.Helper()

	d, ok := result["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", result)
	return d
}
