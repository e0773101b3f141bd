package courseRoutes

import (
	controllers "govlearn/controllers/course"
	"govlearn/middleware"
	validators "govlearn/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up all admin catalog management routes
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course", middleware.JWTMiddleware, middleware.RequireRole("ADMIN", "SUBADMIN"))

	// Course CRUD
	adminGroup.Post("/create", validators.CreateCourse(), controllers.AdminCreateCourse)
	adminGroup.Get("/list", controllers.AdminGetAllCourses)
	adminGroup.Post("/reorder", validators.ReorderCourses(), controllers.AdminReorderCourses)
	adminGroup.Put("/:id", validators.UpdateCourse(), controllers.AdminUpdateCourse)
	adminGroup.Delete("/:id", validators.CourseID(), controllers.AdminDeleteCourse)
	adminGroup.Post("/:id/publish", validators.PublishCourse(), controllers.AdminPublishCourse)

	// Lesson management
	adminGroup.Post("/:id/lesson", validators.CourseID(), controllers.AdminAddLesson)
	adminGroup.Get("/lesson/:id", validators.LessonID(), controllers.AdminGetLesson)
	adminGroup.Put("/lesson/:id", validators.LessonID(), controllers.AdminUpdateLesson)
	adminGroup.Delete("/lesson/:id", validators.LessonID(), controllers.AdminDeleteLesson)

	// Media upload for lesson content
	adminGroup.Post("/upload", controllers.AdminUploadMedia)
}
