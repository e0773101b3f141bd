package controllers_test

import (
	"fmt"
	"testing"

	"govlearn/database"
	courseModels "govlearn/models/course"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func levelOrder(t *testing.T, level string) map[uint]int {
	t.Helper()

	var courses []courseModels.Course
	require.NoError(t, database.Database.Db.Where("level = ? AND is_deleted = ?", level, false).Find(&courses).Error)

	order := make(map[uint]int, len(courses))
	for _, course := range courses {
		order[course.ID] = course.OrderIndex
	}
	return order
}

func TestAdminCreateCourseAppendsOrderIndex(t *testing.T) {
	app := setupTestApp(t)
	_, token := seedUser(t, "Admin", "admin@gov.test", "ADMIN")

	for i, title := range []string{"First", "Second", "Third"} {
		status, result := doRequest(t, app, "POST", "/admin/course/create", token,
			map[string]interface{}{"title": title, "level": courseModels.LevelBeginner})
		require.Equal(t, fiber.StatusCreated, status)
		assert.Equal(t, float64(i), data(t, result)["order_index"])
		// New courses always start unpublished
		assert.Equal(t, false, data(t, result)["is_published"])
	}

	// Another level starts its own run at zero
	status, result := doRequest(t, app, "POST", "/admin/course/create", token,
		map[string]interface{}{"title": "Other Level", "level": courseModels.LevelIntermediate})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, float64(0), data(t, result)["order_index"])
}

func TestAdminCreateCourseForbiddenForLearner(t *testing.T) {
	app := setupTestApp(t)
	_, token := seedUser(t, "Learner", "learner@gov.test", "LEARNER")

	status, _ := doRequest(t, app, "POST", "/admin/course/create", token,
		map[string]interface{}{"title": "Nope", "level": courseModels.LevelBeginner})
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestAdminReorderCourses(t *testing.T) {
	app := setupTestApp(t)
	_, token := seedUser(t, "Admin", "admin@gov.test", "ADMIN")

	c1 := seedCourse(t, "One", courseModels.LevelBeginner, 0, true)
	c2 := seedCourse(t, "Two", courseModels.LevelBeginner, 1, true)
	c3 := seedCourse(t, "Three", courseModels.LevelBeginner, 2, true)
	other := seedCourse(t, "Untouched", courseModels.LevelIntermediate, 0, true)

	status, _ := doRequest(t, app, "POST", "/admin/course/reorder", token, map[string]interface{}{
		"level":              courseModels.LevelBeginner,
		"ordered_course_ids": []uint{c2.ID, c3.ID, c1.ID},
	})
	require.Equal(t, fiber.StatusOK, status)

	order := levelOrder(t, courseModels.LevelBeginner)
	assert.Equal(t, 0, order[c2.ID])
	assert.Equal(t, 1, order[c3.ID])
	assert.Equal(t, 2, order[c1.ID])

	// Courses in other levels keep their indices
	assert.Equal(t, 0, levelOrder(t, courseModels.LevelIntermediate)[other.ID])
}

func TestAdminReorderRejectsIncompleteList(t *testing.T) {
	app := setupTestApp(t)
	_, token := seedUser(t, "Admin", "admin@gov.test", "ADMIN")

	c1 := seedCourse(t, "One", courseModels.LevelBeginner, 0, true)
	c2 := seedCourse(t, "Two", courseModels.LevelBeginner, 1, true)

	// Missing a course of the level
	status, _ := doRequest(t, app, "POST", "/admin/course/reorder", token, map[string]interface{}{
		"level":              courseModels.LevelBeginner,
		"ordered_course_ids": []uint{c1.ID},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	// Unknown id
	status, _ = doRequest(t, app, "POST", "/admin/course/reorder", token, map[string]interface{}{
		"level":              courseModels.LevelBeginner,
		"ordered_course_ids": []uint{c1.ID, 999},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	// Duplicate id
	status, _ = doRequest(t, app, "POST", "/admin/course/reorder", token, map[string]interface{}{
		"level":              courseModels.LevelBeginner,
		"ordered_course_ids": []uint{c1.ID, c1.ID},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	// Nothing moved through any of the failures
	order := levelOrder(t, courseModels.LevelBeginner)
	assert.Equal(t, 0, order[c1.ID])
	assert.Equal(t, 1, order[c2.ID])
}

func TestAdminReorderRejectsBadPayload(t *testing.T) {
	app := setupTestApp(t)
	_, token := seedUser(t, "Admin", "admin@gov.test", "ADMIN")

	status, _ := doRequest(t, app, "POST", "/admin/course/reorder", token, map[string]interface{}{
		"level":              "EXPERT",
		"ordered_course_ids": []uint{1},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = doRequest(t, app, "POST", "/admin/course/reorder", token, map[string]interface{}{
		"level":              courseModels.LevelBeginner,
		"ordered_course_ids": []uint{},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestAdminUpdateCourseLevelMove(t *testing.T) {
	app := setupTestApp(t)
	_, token := seedUser(t, "Admin", "admin@gov.test", "ADMIN")

	c1 := seedCourse(t, "One", courseModels.LevelBeginner, 0, true)
	c2 := seedCourse(t, "Two", courseModels.LevelBeginner, 1, true)
	c3 := seedCourse(t, "Three", courseModels.LevelBeginner, 2, true)
	existing := seedCourse(t, "Mid", courseModels.LevelIntermediate, 0, true)

	// Move the middle course out: it appends to the new level and the old
	// level closes ranks
	status, result := doRequest(t, app, "PUT", fmt.Sprintf("/admin/course/%d", c2.ID), token,
		map[string]interface{}{"level": courseModels.LevelIntermediate})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), data(t, result)["order_index"])

	beginnerOrder := levelOrder(t, courseModels.LevelBeginner)
	assert.Equal(t, 0, beginnerOrder[c1.ID])
	assert.Equal(t, 1, beginnerOrder[c3.ID])

	intermediateOrder := levelOrder(t, courseModels.LevelIntermediate)
	assert.Equal(t, 0, intermediateOrder[existing.ID])
	assert.Equal(t, 1, intermediateOrder[c2.ID])
}

func TestAdminPublishCourse(t *testing.T) {
	app := setupTestApp(t)
	_, token := seedUser(t, "Admin", "admin@gov.test", "ADMIN")
	course := seedCourse(t, "Draft", courseModels.LevelBeginner, 0, false)

	status, _ := doRequest(t, app, "POST", fmt.Sprintf("/admin/course/%d/publish", course.ID), token,
		map[string]interface{}{"is_published": true})
	require.Equal(t, fiber.StatusOK, status)

	var stored courseModels.Course
	require.NoError(t, database.Database.Db.First(&stored, course.ID).Error)
	assert.True(t, stored.IsPublished)

	status, _ = doRequest(t, app, "POST", fmt.Sprintf("/admin/course/%d/publish", course.ID), token,
		map[string]interface{}{"is_published": false})
	require.Equal(t, fiber.StatusOK, status)

	require.NoError(t, database.Database.Db.First(&stored, course.ID).Error)
	assert.False(t, stored.IsPublished)
}

func TestAdminDeleteCourseCascadesAndResequences(t *testing.T) {
	app := setupTestApp(t)
	_, adminToken := seedUser(t, "Admin", "admin@gov.test", "ADMIN")
	_, learnerToken := seedUser(t, "Learner", "learner@gov.test", "LEARNER")

	c1 := seedCourse(t, "One", courseModels.LevelBeginner, 0, true)
	c2 := seedCourse(t, "Two", courseModels.LevelBeginner, 1, true)
	c3 := seedCourse(t, "Three", courseModels.LevelBeginner, 2, true)

	lesson := seedLesson(t, c2.ID, "L1", 0, true)
	enroll(t, app, learnerToken, c2.ID)
	completeAllLessons(t, app, learnerToken, lesson)

	status, _ := doRequest(t, app, "DELETE", fmt.Sprintf("/admin/course/%d", c2.ID), adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)

	var count int64
	db := database.Database.Db
	db.Model(&courseModels.Lesson{}).Where("course_id = ? AND is_deleted = ?", c2.ID, false).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&courseModels.Enrollment{}).Where("course_id = ? AND is_deleted = ?", c2.ID, false).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&courseModels.LessonProgress{}).Where("course_id = ? AND is_deleted = ?", c2.ID, false).Count(&count)
	assert.Equal(t, int64(0), count)

	// The level's indices close to a 0..n-1 run again
	order := levelOrder(t, courseModels.LevelBeginner)
	assert.Equal(t, 0, order[c1.ID])
	assert.Equal(t, 1, order[c3.ID])

	// And the course disappears from learner surfaces
	status, _ = doRequest(t, app, "GET", fmt.Sprintf("/course/%d", c2.ID), learnerToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestAdminListCourses(t *testing.T) {
	app := setupTestApp(t)
	_, token := seedUser(t, "Admin", "admin@gov.test", "ADMIN")

	course := seedCourse(t, "One", courseModels.LevelBeginner, 0, true)
	seedCourse(t, "Hidden Draft", courseModels.LevelBeginner, 1, false)
	seedLesson(t, course.ID, "L1", 0, true)
	seedLesson(t, course.ID, "L2", 1, false)

	status, result := doRequest(t, app, "GET", "/admin/course/list", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	courses, ok := data(t, result)["courses"].([]interface{})
	require.True(t, ok)
	// Admin sees drafts too
	require.Len(t, courses, 2)

	first := courses[0].(map[string]interface{})
	assert.Equal(t, "One", first["title"])
	assert.Equal(t, float64(2), first["lesson_count"])
}
