package dto

import "github.com/yigit/lms/internal/app/models"

// CourseResponse represents a course in API responses
type CourseResponse struct {
	ID          int64   `json:"id" example:"1"`
	Title       string  `json:"title" example:"Java Basics"`
	Description *string `json:"description" example:"Introduction to Java"`
}

// NewCourseResponse converts a model to its API shape
func NewCourseResponse(c *models.Course) CourseResponse {
	return CourseResponse{ID: c.ID, Title: c.Title, Description: c.Description}
}

// NewCourseResponses converts a slice, never returning nil
func NewCourseResponses(courses []*models.Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, NewCourseResponse(c))
	}
	return out
}
