package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/lms/internal/app/controllers"
	"github.com/yigit/lms/internal/app/models/dto"
)

// SetupRouter configures all application routes. apiMiddleware runs for every /api route.
func SetupRouter(
	router *gin.Engine,
	enrollmentController *controllers.EnrollmentController,
	courseController *controllers.CourseController,
	userController *controllers.UserController,
	apiMiddleware ...gin.HandlerFunc,
) {
	api := router.Group("/api", apiMiddleware...)

	enrollments := api.Group("/enrollments")
	{
		enrollments.POST("", enrollmentController.Enroll)
		enrollments.DELETE("", enrollmentController.Unenroll)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", courseController.GetAllCourses)
		courses.GET("/:id", courseController.GetCourseByID)
		courses.GET("/:id/students", courseController.GetCourseStudents)
	}

	users := api.Group("/users")
	{
		users.GET("", userController.GetAllUsers)
		users.GET("/:id", userController.GetUserByID)
		users.GET("/:id/enrollments", userController.GetUserEnrollments)
	}

	api.GET("/health", Health)
}

// Health reports that the API is up
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Message: "LMS is running"})
}
