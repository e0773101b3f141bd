package controllers

import (
	"govlearn/database"
	"govlearn/middleware"
	"govlearn/models"
	courseModels "govlearn/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// levelUnlocked reports whether a catalog level is actionable for the user.
// Beginner is always open. A higher level opens once the prior level is
// unlocked and every prior-level course the user enrolled in stands at 100
// percent. A prior level with no published courses gates nothing. Recomputed
// from current enrollment and progress rows on every call, never persisted.
func levelUnlocked(db *gorm.DB, userID uint, level string) bool {
	if level == courseModels.LevelBeginner {
		return true
	}

	prior := courseModels.PriorLevel(level)
	if prior == "" {
		// Unknown level, nothing to unlock
		return false
	}

	if !levelUnlocked(db, userID, prior) {
		return false
	}

	var priorCourses int64
	db.Model(&courseModels.Course{}).
		Where("level = ? AND is_published = ? AND is_deleted = ?", prior, true, false).
		Count(&priorCourses)
	if priorCourses == 0 {
		return true
	}

	// Only courses the user chose to enroll in count toward unlocking
	var enrollments []courseModels.Enrollment
	db.Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("enrollments.user_id = ? AND enrollments.is_deleted = ?", userID, false).
		Where("courses.level = ? AND courses.is_published = ? AND courses.is_deleted = ?", prior, true, false).
		Find(&enrollments)

	if len(enrollments) == 0 {
		return false
	}

	for _, e := range enrollments {
		if courseProgressPercent(db, userID, e.CourseID) < 100 {
			return false
		}
	}

	return true
}

// CourseWithProgress is the catalog projection of a course for one user
type CourseWithProgress struct {
	courseModels.Course
	ProgressPercent int  `json:"progress_percent"`
	IsEnrolled      bool `json:"is_enrolled"`
	IsCompleted     bool `json:"is_completed"`
}

// GetCatalog returns all published courses grouped by level, each level with
// its unlock flag for the caller
func GetCatalog(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	type LevelGroup struct {
		Level      string               `json:"level"`
		IsUnlocked bool                 `json:"is_unlocked"`
		Courses    []CourseWithProgress `json:"courses"`
	}

	groups := make([]LevelGroup, 0, len(courseModels.Levels))
	for _, level := range courseModels.Levels {
		var courses []courseModels.Course
		database.Database.Db.Where("level = ? AND is_published = ? AND is_deleted = ?", level, true, false).
			Order("order_index asc").Find(&courses)

		group := LevelGroup{
			Level:      level,
			IsUnlocked: levelUnlocked(database.Database.Db, userID, level),
			Courses:    make([]CourseWithProgress, len(courses)),
		}

		for i, course := range courses {
			var enrollment courseModels.Enrollment
			enrolled := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, course.ID, false).First(&enrollment).Error == nil

			group.Courses[i] = CourseWithProgress{
				Course:     course,
				IsEnrolled: enrolled,
			}
			if enrolled {
				group.Courses[i].ProgressPercent = courseProgressPercent(database.Database.Db, userID, course.ID)
				group.Courses[i].IsCompleted = enrollment.CompletedAt != nil
			}
		}

		groups = append(groups, group)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Catalog fetched successfully!", fiber.Map{
		"levels": groups,
	})
}

// GetCourseDetails returns a published course with its lessons and the
// caller's per-lesson progress
func GetCourseDetails(c *fiber.Ctx) error {
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
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var lessons []courseModels.Lesson
	database.Database.Db.Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).
		Order("order_index asc").Find(&lessons)

	type LessonWithProgress struct {
		courseModels.Lesson
		Status          string `json:"status"`
		ProgressPercent int    `json:"progress_percent"`
		IsCompleted     bool   `json:"is_completed"`
	}

	result := make([]LessonWithProgress, len(lessons))
	for i, lesson := range lessons {
		result[i] = LessonWithProgress{
			Lesson: lesson,
			Status: courseModels.StatusNotStarted,
		}

		var prog courseModels.LessonProgress
		if err := database.Database.Db.Where("user_id = ? AND lesson_id = ? AND is_deleted = ?", userID, lesson.ID, false).First(&prog).Error; err == nil {
			result[i].Status = prog.Status
			result[i].ProgressPercent = prog.ProgressPercent
			result[i].IsCompleted = prog.Status == courseModels.StatusCompleted
		}
	}

	var enrollment courseModels.Enrollment
	isEnrolled := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error == nil

	coursePercent := 0
	if isEnrolled {
		coursePercent = courseProgressPercent(database.Database.Db, userID, uint(courseID))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", fiber.Map{
		"course":                  course,
		"lessons":                 result,
		"is_enrolled":             isEnrolled,
		"is_unlocked":             levelUnlocked(database.Database.Db, userID, course.Level),
		"course_progress_percent": coursePercent,
	})
}
