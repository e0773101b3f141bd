package controllers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"govlearn/config"
	"govlearn/database"
	"govlearn/middleware"
	courseModels "govlearn/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// QuizQuestionInput is one quiz question as submitted by the admin UI. ID is
// empty or carries the client's "draft-" prefix for questions not yet
// persisted; otherwise it is the stored row id.
type QuizQuestionInput struct {
	ID                 string   `json:"id"`
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correct_answer_index"`
}

// isDraftQuestionID reports whether the id denotes a not-yet-persisted question
func isDraftQuestionID(id string) bool {
	return id == "" || strings.HasPrefix(id, "draft-")
}

// validateQuizQuestions checks every question before any write. The returned
// message names the offending 1-based question and the violated bounds.
func validateQuizQuestions(questions []QuizQuestionInput) (string, bool) {
	if len(questions) > config.AppConfig.MaxQuizQuestions {
		return fmt.Sprintf("Quiz exceeds the maximum of %d questions!", config.AppConfig.MaxQuizQuestions), false
	}

	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Sprintf("Question %d: question text is required!", i+1), false
		}
		if len(q.Options) < courseModels.MinQuizOptions || len(q.Options) > courseModels.MaxQuizOptions {
			return fmt.Sprintf("Question %d: has %d options, must be between %d and %d!",
				i+1, len(q.Options), courseModels.MinQuizOptions, courseModels.MaxQuizOptions), false
		}
		if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
			return fmt.Sprintf("Question %d: correct answer index %d out of range, must be between 0 and %d!",
				i+1, q.CorrectAnswerIndex, len(q.Options)-1), false
		}
	}

	return "", true
}

// encodeOptions renders the option list as the stored JSON array
func encodeOptions(options []string) datatypes.JSON {
	raw, _ := json.Marshal(options)
	return datatypes.JSON(raw)
}

// AdminAddLesson creates a lesson in a course, with an optional quiz batch.
// The whole request commits atomically or not at all.
func AdminAddLesson(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData := new(struct {
		Title       string              `json:"title"`
		Description string              `json:"description"`
		Type        string              `json:"type"`
		DurationMin int                 `json:"duration_min"`
		TextContent string              `json:"text_content"`
		MediaURL    string              `json:"media_url"`
		IsPublished bool                `json:"is_published"`
		Quiz        []QuizQuestionInput `json:"quiz"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if strings.TrimSpace(reqData.Title) == "" {
		return middleware.ValidationErrorResponse(c, map[string]string{"title": "Title is required!"})
	}
	if !courseModels.IsValidLessonType(reqData.Type) {
		return middleware.ValidationErrorResponse(c, map[string]string{"type": "Type must be VIDEO, TEXT, QUIZ, PDF or PRESENTATION!"})
	}

	// Validate the full quiz batch before any write
	if msg, ok := validateQuizQuestions(reqData.Quiz); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, msg, nil)
	}

	tx := database.Database.Db.Begin()

	// Append to the course's lesson order
	var maxOrder int
	tx.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Select("COALESCE(MAX(order_index), -1)").Scan(&maxOrder)

	lesson := courseModels.Lesson{
		CourseID:    uint(courseID),
		Title:       reqData.Title,
		Description: reqData.Description,
		Type:        reqData.Type,
		DurationMin: reqData.DurationMin,
		TextContent: reqData.TextContent,
		MediaURL:    reqData.MediaURL,
		OrderIndex:  maxOrder + 1,
		IsPublished: reqData.IsPublished,
	}

	if err := tx.Create(&lesson).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	questions := make([]courseModels.QuizQuestion, len(reqData.Quiz))
	for i, q := range reqData.Quiz {
		questions[i] = courseModels.QuizQuestion{
			LessonID:           lesson.ID,
			Question:           q.Question,
			Options:            encodeOptions(q.Options),
			CorrectAnswerIndex: q.CorrectAnswerIndex,
			OrderIndex:         i,
		}
		if err := tx.Create(&questions[i]).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quiz questions!", nil)
		}
	}

	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", fiber.Map{
		"lesson": lesson,
		"quiz":   questions,
	})
}

// AdminUpdateLesson updates a lesson and, when a quiz list is supplied,
// reconciles it against the stored questions by identity: draft entries are
// inserted, persisted ids updated, stored ids missing from the list deleted.
// Resubmitting the same final list is a no-op.
func AdminUpdateLesson(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	lessonID := c.Locals("lessonID").(int)

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	reqData := new(struct {
		Title       string               `json:"title"`
		Description string               `json:"description"`
		Type        string               `json:"type"`
		DurationMin *int                 `json:"duration_min"`
		TextContent string               `json:"text_content"`
		MediaURL    string               `json:"media_url"`
		IsPublished *bool                `json:"is_published"`
		Quiz        *[]QuizQuestionInput `json:"quiz"` // nil leaves the quiz untouched
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if reqData.Type != "" && !courseModels.IsValidLessonType(reqData.Type) {
		return middleware.ValidationErrorResponse(c, map[string]string{"type": "Type must be VIDEO, TEXT, QUIZ, PDF or PRESENTATION!"})
	}

	// Validate the incoming quiz before touching anything
	if reqData.Quiz != nil {
		if msg, ok := validateQuizQuestions(*reqData.Quiz); !ok {
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, msg, nil)
		}
	}

	// Existing questions, keyed by id, for the reconcile pass
	var existing []courseModels.QuizQuestion
	database.Database.Db.Where("lesson_id = ? AND is_deleted = ?", lessonID, false).Find(&existing)

	existingByID := make(map[uint]*courseModels.QuizQuestion, len(existing))
	for i := range existing {
		existingByID[existing[i].ID] = &existing[i]
	}

	// Every persisted id in the list must refer to a question of this lesson
	if reqData.Quiz != nil {
		for i, q := range *reqData.Quiz {
			if isDraftQuestionID(q.ID) {
				continue
			}
			id, err := strconv.ParseUint(q.ID, 10, 64)
			if err != nil {
				return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false,
					fmt.Sprintf("Question %d: invalid question ID %q!", i+1, q.ID), nil)
			}
			if _, found := existingByID[uint(id)]; !found {
				return middleware.JsonResponse(c, fiber.StatusNotFound, false,
					fmt.Sprintf("Question %d: quiz question not found!", i+1), nil)
			}
		}
	}

	if reqData.Title != "" {
		lesson.Title = reqData.Title
	}
	if reqData.Description != "" {
		lesson.Description = reqData.Description
	}
	if reqData.Type != "" {
		lesson.Type = reqData.Type
	}
	if reqData.DurationMin != nil {
		lesson.DurationMin = *reqData.DurationMin
	}
	if reqData.TextContent != "" {
		lesson.TextContent = reqData.TextContent
	}
	if reqData.MediaURL != "" {
		lesson.MediaURL = reqData.MediaURL
	}
	if reqData.IsPublished != nil {
		lesson.IsPublished = *reqData.IsPublished
	}

	tx := database.Database.Db.Begin()

	if err := tx.Save(&lesson).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	var questions []courseModels.QuizQuestion
	if reqData.Quiz != nil {
		kept := make(map[uint]bool, len(*reqData.Quiz))

		for i, q := range *reqData.Quiz {
			if isDraftQuestionID(q.ID) {
				question := courseModels.QuizQuestion{
					LessonID:           lesson.ID,
					Question:           q.Question,
					Options:            encodeOptions(q.Options),
					CorrectAnswerIndex: q.CorrectAnswerIndex,
					OrderIndex:         i,
				}
				if err := tx.Create(&question).Error; err != nil {
					tx.Rollback()
					return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save quiz questions!", nil)
				}
				questions = append(questions, question)
				continue
			}

			id, _ := strconv.ParseUint(q.ID, 10, 64)
			question := existingByID[uint(id)]
			question.Question = q.Question
			question.Options = encodeOptions(q.Options)
			question.CorrectAnswerIndex = q.CorrectAnswerIndex
			question.OrderIndex = i

			if err := tx.Save(question).Error; err != nil {
				tx.Rollback()
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save quiz questions!", nil)
			}
			kept[question.ID] = true
			questions = append(questions, *question)
		}

		// Stored questions absent from the submitted list are removed
		for _, q := range existing {
			if kept[q.ID] {
				continue
			}
			if err := tx.Model(&courseModels.QuizQuestion{}).Where("id = ?", q.ID).Update("is_deleted", true).Error; err != nil {
				tx.Rollback()
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save quiz questions!", nil)
			}
		}
	}

	tx.Commit()

	if reqData.Quiz == nil {
		questions = existing
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", fiber.Map{
		"lesson": lesson,
		"quiz":   questions,
	})
}

// AdminDeleteLesson soft deletes a lesson with its quiz questions and
// progress rows
func AdminDeleteLesson(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	lessonID := c.Locals("lessonID").(int)

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	tx := database.Database.Db.Begin()

	lesson.IsDeleted = true
	if err := tx.Save(&lesson).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson!", nil)
	}

	if err := tx.Model(&courseModels.QuizQuestion{}).Where("lesson_id = ?", lessonID).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete quiz questions!", nil)
	}

	if err := tx.Model(&courseModels.LessonProgress{}).Where("lesson_id = ?", lessonID).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson progress!", nil)
	}

	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}

// AdminGetLesson returns a lesson with its quiz questions
func AdminGetLesson(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}

	lessonID := c.Locals("lessonID").(int)

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	var questions []courseModels.QuizQuestion
	database.Database.Db.Where("lesson_id = ? AND is_deleted = ?", lessonID, false).
		Order("order_index asc").Find(&questions)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully!", fiber.Map{
		"lesson": lesson,
		"quiz":   questions,
	})
}
