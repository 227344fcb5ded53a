package dto

import "github.com/yigit/lms/internal/app/models"

// EnrollmentRequest identifies a (student, course) pair.
// Pointers distinguish a missing field from an explicit zero.
type EnrollmentRequest struct {
	StudentID *int64 `json:"studentId" binding:"required" example:"3"`
	CourseID  *int64 `json:"courseId" binding:"required" example:"1"`
}

// EnrollmentResponse represents an enrollment in API responses
type EnrollmentResponse struct {
	ID        int64 `json:"id" example:"1"`
	StudentID int64 `json:"studentId" example:"3"`
	CourseID  int64 `json:"courseId" example:"1"`
}

// NewEnrollmentResponse converts a model to its API shape
func NewEnrollmentResponse(e *models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{ID: e.ID, StudentID: e.StudentID, CourseID: e.CourseID}
}

// NewEnrollmentResponses converts a slice, never returning nil
func NewEnrollmentResponses(enrollments []*models.Enrollment) []EnrollmentResponse {
	out := make([]EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		out = append(out, NewEnrollmentResponse(e))
	}
	return out
}
