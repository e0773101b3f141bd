package courseValidator

import (
	"strconv"

	"govlearn/middleware"
	courseModels "govlearn/models/course"

	"github.com/gofiber/fiber/v2"
)

// UpdateProgress validates the lesson progress patch. Absent fields stay nil
// so the controller can tell "not supplied" apart from a zero value.
func UpdateProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
		}

		reqData := new(struct {
			Status    *string `json:"status"`
			Percent   *int    `json:"percent"`
			QuizScore *int    `json:"quiz_score"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Status != nil && !courseModels.IsValidStatus(*reqData.Status) {
			errors["status"] = "Status must be NOT_STARTED, IN_PROGRESS or COMPLETED!"
		}

		if reqData.Percent != nil && (*reqData.Percent < 0 || *reqData.Percent > 100) {
			errors["percent"] = "Percent must be between 0 and 100!"
		}

		if reqData.QuizScore != nil && (*reqData.QuizScore < 0 || *reqData.QuizScore > 100) {
			errors["quiz_score"] = "Quiz score must be between 0 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("lessonID", id)
		c.Locals("validatedProgress", reqData)
		return c.Next()
	}
}

// CompleteLesson validates the optional completion payload
func CompleteLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
		}

		reqData := new(struct {
			QuizScore *int `json:"quiz_score"`
		})

		// Body is optional for completion
		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}

		if reqData.QuizScore != nil && (*reqData.QuizScore < 0 || *reqData.QuizScore > 100) {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"quiz_score": "Quiz score must be between 0 and 100!",
			})
		}

		c.Locals("lessonID", id)
		c.Locals("validatedCompletion", reqData)
		return c.Next()
	}
}
