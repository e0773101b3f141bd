package controllers_test

import (
	"fmt"
	"testing"

	courseModels "govlearn/models/course"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catalogLevels fetches the catalog and indexes the level groups by name
func catalogLevels(t *testing.T, app *fiber.App, token string) map[string]map[string]interface{} {
	t.Helper()

	status, result := doRequest(t, app, "GET", "/course/catalog", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	raw, ok := data(t, result)["levels"].([]interface{})
	require.True(t, ok)

	levels := make(map[string]map[string]interface{}, len(raw))
	for _, item := range raw {
		group := item.(map[string]interface{})
		levels[group["level"].(string)] = group
	}
	return levels
}

func completeAllLessons(t *testing.T, app *fiber.App, token string, lessons ...courseModels.Lesson) {
	t.Helper()

	for _, lesson := range lessons {
		status, _ := doRequest(t, app, "POST", fmt.Sprintf("/course/lesson/%d/complete", lesson.ID), token, nil)
		require.Equal(t, fiber.StatusOK, status)
	}
}

func TestLevelGateUnlocksAfterAllEnrolledComplete(t *testing.T) {
	app := setupTestApp(t)
	_, token := seedUser(t, "Learner", "learner@gov.test", "LEARNER")

	beginner1 := seedCourse(t, "Beginner One", courseModels.LevelBeginner, 0, true)
	beginner2 := seedCourse(t, "Beginner Two", courseModels.LevelBeginner, 1, true)
	intermediate := seedCourse(t, "Intermediate One", courseModels.LevelIntermediate, 0, true)

	lessonB1 := seedLesson(t, beginner1.ID, "B1 L1", 0, true)
	lessonB2 := seedLesson(t, beginner2.ID, "B2 L1", 0, true)

	enroll(t, app, token, beginner1.ID)
	enroll(t, app, token, beginner2.ID)

	levels := catalogLevels(t, app, token)
	assert.True(t, levels[courseModels.LevelBeginner]["is_unlocked"].(bool))
	assert.False(t, levels[courseModels.LevelIntermediate]["is_unlocked"].(bool))

	// One of two enrolled beginner courses done: still locked
	completeAllLessons(t, app, token, lessonB1)
	levels = catalogLevels(t, app, token)
	assert.False(t, levels[courseModels.LevelIntermediate]["is_unlocked"].(bool))

	status, _ := doRequest(t, app, "POST", fmt.Sprintf("/course/%d/enroll", intermediate.ID), token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	// Both done: intermediate opens and enrollment goes through
	completeAllLessons(t, app, token, lessonB2)
	levels = catalogLevels(t, app, token)
	assert.True(t, levels[courseModels.LevelIntermediate]["is_unlocked"].(bool))

	status, _ = doRequest(t, app, "POST", fmt.Sprintf("/course/%d/enroll", intermediate.ID), token, nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestLevelGateCountsOnlyEnrolledCourses(t *testing.T) {
	app := setupTestApp(t)
	_, token := seedUser(t, "Learner", "learner@gov.test", "LEARNER")

	beginner1 := seedCourse(t, "Beginner One", courseModels.LevelBeginner, 0, true)
	// A second beginner course the user never enrolls in must not block the gate
	seedCourse(t, "Beginner Two", courseModels.LevelBeginner, 1, true)

	lesson := seedLesson(t, beginner1.ID, "B1 L1", 0, true)
	enroll(t, app, token, beginner1.ID)
	completeAllLessons(t, app, token, lesson)

	levels := catalogLevels(t, app, token)
	assert.True(t, levels[courseModels.LevelIntermediate]["is_unlocked"].(bool))
}

func TestLevelGateRequiresSomeEnrollment(t *testing.T) {
	app := setupTestApp(t)
	_, token := seedUser(t, "Learner", "learner@gov.test", "LEARNER")

	seedCourse(t, "Beginner One", courseModels.LevelBeginner, 0, true)

	// Published beginner courses exist but the user enrolled in none
	levels := catalogLevels(t, app, token)
	assert.False(t, levels[courseModels.LevelIntermediate]["is_unlocked"].(bool))
}

func TestLevelGateVacuousUnlock(t *testing.T) {
	app := setupTestApp(t)
	_, token := seedUser(t, "Learner", "learner@gov.test", "LEARNER")

	// No published beginner courses at all: intermediate gates nothing
	seedCourse(t, "Draft Beginner", courseModels.LevelBeginner, 0, false)
	seedCourse(t, "Intermediate One", courseModels.LevelIntermediate, 0, true)

	levels := catalogLevels(t, app, token)
	assert.True(t, levels[courseModels.LevelIntermediate]["is_unlocked"].(bool))
}

func TestLevelGateAdvancedChain(t *testing.T) {
	app := setupTestApp(t)
	_, token := seedUser(t, "Learner", "learner@gov.test", "LEARNER")

	beginner := seedCourse(t, "Beginner One", courseModels.LevelBeginner, 0, true)
	intermediate := seedCourse(t, "Intermediate One", courseModels.LevelIntermediate, 0, true)
	seedCourse(t, "Advanced One", courseModels.LevelAdvanced, 0, true)

	lessonB := seedLesson(t, beginner.ID, "B L1", 0, true)
	lessonI := seedLesson(t, intermediate.ID, "I L1", 0, true)

	enroll(t, app, token, beginner.ID)
	completeAllLessons(t, app, token, lessonB)

	// Intermediate open, advanced still gated on the intermediate courses
	levels := catalogLevels(t, app, token)
	assert.True(t, levels[courseModels.LevelIntermediate]["is_unlocked"].(bool))
	assert.False(t, levels[courseModels.LevelAdvanced]["is_unlocked"].(bool))

	enroll(t, app, token, intermediate.ID)
	completeAllLessons(t, app, token, lessonI)

	levels = catalogLevels(t, app, token)
	assert.True(t, levels[courseModels.LevelAdvanced]["is_unlocked"].(bool))
}

func TestCatalogGroupsAndProgress(t *testing.T) {
	app := setupTestApp(t)
	_, token := seedUser(t, "Learner", "learner@gov.test", "LEARNER")

	beginner := seedCourse(t, "Beginner One", courseModels.LevelBeginner, 0, true)
	seedCourse(t, "Hidden Draft", courseModels.LevelBeginner, 1, false)

	lesson1 := seedLesson(t, beginner.ID, "L1", 0, true)
	seedLesson(t, beginner.ID, "L2", 1, true)

	enroll(t, app, token, beginner.ID)
	completeAllLessons(t, app, token, lesson1)

	levels := catalogLevels(t, app, token)
	courses := levels[courseModels.LevelBeginner]["courses"].([]interface{})
	require.Len(t, courses, 1, "unpublished courses must not appear")

	entry := courses[0].(map[string]interface{})
	assert.Equal(t, true, entry["is_enrolled"])
	assert.Equal(t, false, entry["is_completed"])
	assert.Equal(t, float64(50), entry["progress_percent"])
}
