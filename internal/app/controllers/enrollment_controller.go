package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/lms/internal/app/models/dto"
	"github.com/yigit/lms/internal/app/services"
	"github.com/yigit/lms/internal/middleware"
)

// EnrollmentController handles enroll and unenroll requests
type EnrollmentController struct {
	enrollmentService services.EnrollmentService
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollmentService services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{
		enrollmentService: enrollmentService,
	}
}

// Enroll registers a student in a course
// @Summary Enroll a student in a course
// @Description Creates an enrollment for the given student and course. A pair can be enrolled only once.
// @Tags enrollments
// @Accept json
// @Produce json
// @Param request body dto.EnrollmentRequest true "Student and course ids"
// @Success 201 {object} dto.EnrollmentResponse "Enrollment created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Student or course not found"
// @Failure 409 {object} dto.ErrorResponse "Student is already enrolled"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /enrollments [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	var req dto.EnrollmentRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	enrollment, err := c.enrollmentService.Enroll(ctx.Request.Context(), *req.StudentID, *req.CourseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewEnrollmentResponse(enrollment))
}

// Unenroll removes a student from a course
// @Summary Unenroll a student from a course
// @Description Deletes the enrollment for the given student and course
// @Tags enrollments
// @Accept json
// @Produce json
// @Param request body dto.EnrollmentRequest true "Student and course ids"
// @Success 204 "Enrollment deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /enrollments [delete]
func (c *EnrollmentController) Unenroll(ctx *gin.Context) {
	var req dto.EnrollmentRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.enrollmentService.Unenroll(ctx.Request.Context(), *req.StudentID, *req.CourseID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
