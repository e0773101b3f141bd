package controllers

import (
	"govlearn/config"
	"govlearn/database"
	"govlearn/middleware"
	"govlearn/models"
	courseModels "govlearn/models/course"
	"govlearn/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// requireAdmin loads the caller and checks for a catalog-mutation role
func requireAdmin(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if !user.IsAdmin() {
		return nil, middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	return &user, nil
}

// AdminCreateCourse creates a new course at the end of its level
func AdminCreateCourse(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	reqData, ok := c.Locals("validatedCourse").(*struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		Level        string `json:"level"`
		ThumbnailURL string `json:"thumbnail_url"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	tx := database.Database.Db.Begin()

	// Append to the level: indices stay a contiguous 0..n-1 run
	var maxOrder int
	tx.Model(&courseModels.Course{}).
		Where("level = ? AND is_deleted = ?", reqData.Level, false).
		Select("COALESCE(MAX(order_index), -1)").Scan(&maxOrder)

	course := courseModels.Course{
		Title:        reqData.Title,
		Description:  reqData.Description,
		Level:        reqData.Level,
		OrderIndex:   maxOrder + 1,
		ThumbnailURL: reqData.ThumbnailURL,
		IsPublished:  false,
	}

	if err := tx.Create(&course).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// AdminUpdateCourse updates an existing course. Moving a course to another
// level re-appends it there and closes the index gap it left behind.
func AdminUpdateCourse(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData, ok := c.Locals("validatedCourseUpdate").(*struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		Level        string `json:"level"`
		ThumbnailURL string `json:"thumbnail_url"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		course.Title = reqData.Title
	}
	if reqData.Description != "" {
		course.Description = reqData.Description
	}
	if reqData.ThumbnailURL != "" {
		course.ThumbnailURL = reqData.ThumbnailURL
	}

	oldLevel := course.Level
	levelChanged := reqData.Level != "" && reqData.Level != oldLevel

	tx := database.Database.Db.Begin()

	if levelChanged {
		var maxOrder int
		tx.Model(&courseModels.Course{}).
			Where("level = ? AND is_deleted = ?", reqData.Level, false).
			Select("COALESCE(MAX(order_index), -1)").Scan(&maxOrder)

		course.Level = reqData.Level
		course.OrderIndex = maxOrder + 1
	}

	if err := tx.Save(&course).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	if levelChanged {
		if err := resequenceLevel(tx, oldLevel); err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
		}
	}

	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// AdminPublishCourse publishes or unpublishes a course
func AdminPublishCourse(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	courseID := c.Locals("courseID").(int)
	publishStatus := c.Locals("publishStatus").(bool)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	course.IsPublished = publishStatus
	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	message := "Course unpublished successfully!"
	if publishStatus {
		message = "Course published successfully!"
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, course)
}

// AdminDeleteCourse soft deletes a course and cascades to its lessons, quiz
// questions, progress rows and enrollments, then closes the index gap
func AdminDeleteCourse(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	tx := database.Database.Db.Begin()

	course.IsDeleted = true
	if err := tx.Save(&course).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}

	// Quiz questions of the course's lessons
	if err := tx.Model(&courseModels.QuizQuestion{}).
		Where("lesson_id IN (?)", tx.Model(&courseModels.Lesson{}).Select("id").Where("course_id = ?", courseID)).
		Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course quizzes!", nil)
	}

	if err := tx.Model(&courseModels.Lesson{}).Where("course_id = ?", courseID).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course lessons!", nil)
	}

	if err := tx.Model(&courseModels.LessonProgress{}).Where("course_id = ?", courseID).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course progress!", nil)
	}

	if err := tx.Model(&courseModels.Enrollment{}).Where("course_id = ?", courseID).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course enrollments!", nil)
	}

	if err := resequenceLevel(tx, course.Level); err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}

	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// AdminReorderCourses rewrites the display order of a level. The id list must
// be exactly the courses of that level; indices 0..n-1 are assigned following
// array order inside one transaction, so a failure leaves every index as it
// was.
func AdminReorderCourses(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	reqData, ok := c.Locals("validatedReorder").(*struct {
		Level            string `json:"level"`
		OrderedCourseIDs []uint `json:"ordered_course_ids"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	tx := database.Database.Db.Begin()

	var courses []courseModels.Course
	if err := tx.Where("level = ? AND is_deleted = ?", reqData.Level, false).Find(&courses).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reorder courses!", nil)
	}

	// Every course of the level must appear exactly once
	known := make(map[uint]bool, len(courses))
	for _, course := range courses {
		known[course.ID] = true
	}

	if len(reqData.OrderedCourseIDs) != len(courses) {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Ordered list must contain every course of the level exactly once!", nil)
	}

	seen := make(map[uint]bool, len(reqData.OrderedCourseIDs))
	for _, id := range reqData.OrderedCourseIDs {
		if !known[id] || seen[id] {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Ordered list contains an unknown or duplicate course ID!", nil)
		}
		seen[id] = true
	}

	for i, id := range reqData.OrderedCourseIDs {
		if err := tx.Model(&courseModels.Course{}).Where("id = ?", id).Update("order_index", i).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reorder courses!", nil)
		}
	}

	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses reordered successfully!", fiber.Map{
		"ok": true,
	})
}

// AdminGetAllCourses lists all courses, published or not, in catalog order
func AdminGetAllCourses(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	var courses []courseModels.Course
	if err := database.Database.Db.Where("is_deleted = ?", false).
		Order("level asc, order_index asc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	// Lesson counts per course
	type CourseWithCount struct {
		courseModels.Course
		LessonCount int64 `json:"lesson_count"`
	}

	result := make([]CourseWithCount, len(courses))
	for i, course := range courses {
		var count int64
		database.Database.Db.Model(&courseModels.Lesson{}).Where("course_id = ? AND is_deleted = ?", course.ID, false).Count(&count)
		result[i] = CourseWithCount{
			Course:      course,
			LessonCount: count,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": result,
	})
}

// AdminUploadMedia stores an uploaded lesson media file and returns its
// opaque URL. The engine never inspects the content.
func AdminUploadMedia(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "No file uploaded!", nil)
	}

	filePath, err := utils.SaveUploadedFile(file, config.AppConfig.UploadDir)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save uploaded file!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "File uploaded successfully!", fiber.Map{
		"url": utils.GetFileURL(filePath),
	})
}

// resequenceLevel rewrites a level's order indices to a contiguous 0..n-1 run
// preserving the current relative order. Must run inside the caller's
// transaction.
func resequenceLevel(tx *gorm.DB, level string) error {
	var courses []courseModels.Course
	if err := tx.Where("level = ? AND is_deleted = ?", level, false).
		Order("order_index asc").Find(&courses).Error; err != nil {
		return err
	}

	for i, course := range courses {
		if course.OrderIndex == i {
			continue
		}
		if err := tx.Model(&courseModels.Course{}).Where("id = ?", course.ID).Update("order_index", i).Error; err != nil {
			return err
		}
	}

	return nil
}
