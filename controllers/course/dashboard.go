package controllers

import (
	"math"

	"govlearn/database"
	"govlearn/middleware"
	"govlearn/models"
	courseModels "govlearn/models/course"

	"github.com/gofiber/fiber/v2"
)

// GetDashboardStats returns the caller's learning aggregates. Everything is
// re-derived from enrollment and progress rows on each call.
func GetDashboardStats(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	var enrolledCount int64
	database.Database.Db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Count(&enrolledCount)

	var completedCount int64
	database.Database.Db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND completed_at IS NOT NULL AND is_deleted = ?", userID, false).
		Count(&completedCount)

	var lessonsCompletedCount int64
	database.Database.Db.Model(&courseModels.LessonProgress{}).
		Where("user_id = ? AND status = ? AND is_deleted = ?", userID, courseModels.StatusCompleted, false).
		Count(&lessonsCompletedCount)

	var avgQuizScore float64
	database.Database.Db.Model(&courseModels.LessonProgress{}).
		Where("user_id = ? AND quiz_score IS NOT NULL AND is_deleted = ?", userID, false).
		Select("COALESCE(AVG(quiz_score), 0)").
		Scan(&avgQuizScore)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully!", fiber.Map{
		"enrolled_count":          enrolledCount,
		"completed_count":         completedCount,
		"lessons_completed_count": lessonsCompletedCount,
		"avg_quiz_score":          math.Round(avgQuizScore*10) / 10,
	})
}
