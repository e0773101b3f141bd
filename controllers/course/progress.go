package controllers

import (
	"math"
	"time"

	"govlearn/database"
	"govlearn/middleware"
	"govlearn/models"
	courseModels "govlearn/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpdateLessonProgress applies a partial progress update for the caller on a
// lesson. Supplied fields overwrite, absent fields keep their stored value.
func UpdateLessonProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	lessonID := c.Locals("lessonID").(int)

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	// Check enrollment
	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, lesson.CourseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	}

	reqData, ok := c.Locals("validatedProgress").(*struct {
		Status    *string `json:"status"`
		Percent   *int    `json:"percent"`
		QuizScore *int    `json:"quiz_score"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	now := time.Now()

	// Row used when no progress exists yet for this (user, lesson)
	prog := courseModels.LessonProgress{
		UserID:         userID,
		LessonID:       lesson.ID,
		CourseID:       lesson.CourseID,
		Status:         courseModels.StatusInProgress,
		LastAccessedAt: now,
	}
	if reqData.Status != nil {
		prog.Status = *reqData.Status
	}
	if reqData.Percent != nil {
		prog.ProgressPercent = *reqData.Percent
	}
	if reqData.QuizScore != nil {
		prog.QuizScore = reqData.QuizScore
		prog.QuizAttempts = 1
	}
	if prog.Status == courseModels.StatusCompleted {
		prog.ProgressPercent = 100
		prog.CompletedAt = &now
	}

	// Assignments applied when the row already exists. Only supplied fields
	// overwrite; everything else keeps its stored value.
	assigns := map[string]interface{}{
		"last_accessed_at": now,
		"updated_at":       now,
	}
	if reqData.Status != nil {
		assigns["status"] = *reqData.Status
		if *reqData.Status == courseModels.StatusCompleted {
			assigns["progress_percent"] = 100
			assigns["completed_at"] = gorm.Expr("COALESCE(lesson_progress.completed_at, ?)", now)
		}
	}
	if reqData.Percent != nil && (reqData.Status == nil || *reqData.Status != courseModels.StatusCompleted) {
		assigns["progress_percent"] = *reqData.Percent
	}
	if reqData.QuizScore != nil {
		assigns["quiz_score"] = *reqData.QuizScore
		assigns["quiz_attempts"] = gorm.Expr("lesson_progress.quiz_attempts + 1")
	}

	err := database.Database.Db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(assigns),
	}).Create(&prog).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson progress!", nil)
	}

	// Reload the stored row; the upsert may have merged into an existing one
	var updated courseModels.LessonProgress
	if err := database.Database.Db.Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).First(&updated).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lesson progress!", nil)
	}

	coursePercent := evaluateCourseCompletion(database.Database.Db, userID, lesson.CourseID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson progress updated successfully!", fiber.Map{
		"progress":                updated,
		"course_progress_percent": coursePercent,
	})
}

// CompleteLesson marks a lesson as completed for the caller. Safe to repeat:
// two calls converge to one COMPLETED row at 100 percent.
func CompleteLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	lessonID := c.Locals("lessonID").(int)

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	// Check enrollment
	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, lesson.CourseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	}

	reqData, _ := c.Locals("validatedCompletion").(*struct {
		QuizScore *int `json:"quiz_score"`
	})

	now := time.Now()

	prog := courseModels.LessonProgress{
		UserID:          userID,
		LessonID:        lesson.ID,
		CourseID:        lesson.CourseID,
		Status:          courseModels.StatusCompleted,
		ProgressPercent: 100,
		CompletedAt:     &now,
		LastAccessedAt:  now,
	}

	assigns := map[string]interface{}{
		"status":           courseModels.StatusCompleted,
		"progress_percent": 100,
		// First completion stamp wins; repeat calls keep it
		"completed_at":     gorm.Expr("COALESCE(lesson_progress.completed_at, ?)", now),
		"last_accessed_at": now,
		"updated_at":       now,
	}

	if reqData != nil && reqData.QuizScore != nil {
		prog.QuizScore = reqData.QuizScore
		prog.QuizAttempts = 1
		assigns["quiz_score"] = *reqData.QuizScore
		assigns["quiz_attempts"] = gorm.Expr("lesson_progress.quiz_attempts + 1")
	}

	err := database.Database.Db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(assigns),
	}).Create(&prog).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to complete lesson!", nil)
	}

	coursePercent := evaluateCourseCompletion(database.Database.Db, userID, lesson.CourseID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson completed successfully!", fiber.Map{
		"course_progress_percent": coursePercent,
	})
}

// LessonStatus is the per-lesson projection returned by GetCourseProgress
type LessonStatus struct {
	LessonID        uint       `json:"lesson_id"`
	Title           string     `json:"title"`
	Type            string     `json:"type"`
	DurationMin     int        `json:"duration_min"`
	OrderIndex      int        `json:"order_index"`
	Status          string     `json:"status"`
	ProgressPercent int        `json:"progress_percent"`
	QuizScore       *int       `json:"quiz_score"`
	QuizAttempts    int        `json:"quiz_attempts"`
	IsCompleted     bool       `json:"is_completed"`
	CompletedAt     *time.Time `json:"completed_at"`
}

// GetCourseProgress returns the derived course percent and per-lesson statuses
func GetCourseProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	// Check enrollment
	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	}

	var lessons []courseModels.Lesson
	database.Database.Db.Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).
		Order("order_index asc").Find(&lessons)

	result := make([]LessonStatus, len(lessons))
	for i, lesson := range lessons {
		result[i] = LessonStatus{
			LessonID:    lesson.ID,
			Title:       lesson.Title,
			Type:        lesson.Type,
			DurationMin: lesson.DurationMin,
			OrderIndex:  lesson.OrderIndex,
			Status:      courseModels.StatusNotStarted,
		}

		var prog courseModels.LessonProgress
		if err := database.Database.Db.Where("user_id = ? AND lesson_id = ? AND is_deleted = ?", userID, lesson.ID, false).First(&prog).Error; err == nil {
			result[i].Status = prog.Status
			result[i].ProgressPercent = prog.ProgressPercent
			result[i].QuizScore = prog.QuizScore
			result[i].QuizAttempts = prog.QuizAttempts
			result[i].IsCompleted = prog.Status == courseModels.StatusCompleted
			result[i].CompletedAt = prog.CompletedAt
		}
	}

	coursePercent := evaluateCourseCompletion(database.Database.Db, userID, uint(courseID))

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"enrollment":              enrollment,
		"course_progress_percent": coursePercent,
		"lessons":                 result,
	})
}

// courseProgressPercent derives the user's completion percent for a course
// from its published lessons. Recomputed on every call, never cached.
func courseProgressPercent(db *gorm.DB, userID, courseID uint) int {
	var totalLessons int64
	db.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).
		Count(&totalLessons)

	if totalLessons == 0 {
		return 0
	}

	var completed int64
	db.Model(&courseModels.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progress.lesson_id").
		Where("lesson_progress.user_id = ? AND lesson_progress.course_id = ? AND lesson_progress.status = ? AND lesson_progress.is_deleted = ?",
			userID, courseID, courseModels.StatusCompleted, false).
		Where("lessons.is_published = ? AND lessons.is_deleted = ?", true, false).
		Count(&completed)

	return int(math.Round(float64(completed) / float64(totalLessons) * 100))
}

// evaluateCourseCompletion recomputes the course percent and, at 100, stamps
// the enrollment completion timestamp
func evaluateCourseCompletion(db *gorm.DB, userID, courseID uint) int {
	percent := courseProgressPercent(db, userID, courseID)
	if percent >= 100 {
		markCourseCompletedIfEligible(db, userID, courseID)
	}
	return percent
}

// markCourseCompletedIfEligible stamps Enrollment.CompletedAt if it is still
// null. The IS NULL guard keeps the timestamp monotonic: once set it is never
// moved or cleared.
func markCourseCompletedIfEligible(db *gorm.DB, userID, courseID uint) {
	db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND completed_at IS NULL AND is_deleted = ?", userID, courseID, false).
		Update("completed_at", time.Now())
}
