package courseRoutes

import (
	controllers "govlearn/controllers/course"
	"govlearn/middleware"
	validators "govlearn/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all learner-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Catalog and details (level gate recomputed per request)
	courseGroup.Get("/catalog", middleware.JWTMiddleware, controllers.GetCatalog)
	courseGroup.Get("/:id", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseDetails)

	// Enrollment
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.CourseID(), controllers.EnrollInCourse)

	// Lesson progress
	courseGroup.Put("/lesson/:id/progress", middleware.JWTMiddleware, validators.UpdateProgress(), controllers.UpdateLessonProgress)
	courseGroup.Post("/lesson/:id/complete", middleware.JWTMiddleware, validators.CompleteLesson(), controllers.CompleteLesson)
	courseGroup.Get("/:id/progress", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseProgress)

	// User dashboard and enrollments
	userGroup := app.Group("/user")
	userGroup.Get("/dashboard", middleware.JWTMiddleware, controllers.GetDashboardStats)
	userGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.GetEnrollments)
}
