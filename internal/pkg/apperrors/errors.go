package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
	ErrValidationFailed = errors.New("validation failed")
)

// Entities referenced by not-found errors
const (
	EntityUser       = "user"
	EntityStudent    = "student"
	EntityCourse     = "course"
	EntityEnrollment = "enrollment"
)

// ReasonAlreadyEnrolled is the conflict reason for a duplicate (student, course) pair.
const ReasonAlreadyEnrolled = "already enrolled"

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
	// Fields holds per-field messages for validation failures
	Fields map[string]string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports that the entity with the given id does not exist.
func NewNotFoundError(entity string, id int64) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: fmt.Sprintf("%s not found: %d", capitalize(entity), id),
		Details: map[string]interface{}{"entity": entity, "id": id},
	}
}

// NewEnrollmentNotFoundError reports a missing enrollment for a (student, course) pair.
func NewEnrollmentNotFoundError(studentID, courseID int64) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: fmt.Sprintf("Enrollment not found for student=%d and course=%d", studentID, courseID),
		Details: map[string]interface{}{
			"entity":    EntityEnrollment,
			"studentId": studentID,
			"courseId":  courseID,
		},
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(reason, message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
		Details: map[string]interface{}{"reason": reason},
	}
}

// NewAlreadyEnrolledError is the conflict raised for a duplicate enrollment attempt.
func NewAlreadyEnrolledError() error {
	return NewConflictError(ReasonAlreadyEnrolled, "Student is already enrolled to this course.")
}

// NewValidationError creates a validation error carrying per-field messages
func NewValidationError(fields map[string]string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: "Request validation failed.",
		Fields:  fields,
	}
}

// NotFoundEntity returns the entity name of a not-found error.
func NotFoundEntity(err error) (string, bool) {
	if !errors.Is(err, ErrResourceNotFound) {
		return "", false
	}
	var ce *CustomError
	if !errors.As(err, &ce) {
		return "", false
	}
	entity, ok := ce.Details["entity"].(string)
	return entity, ok
}

// ConflictReason returns the reason recorded on a conflict error.
func ConflictReason(err error) (string, bool) {
	if !errors.Is(err, ErrConflict) {
		return "", false
	}
	var ce *CustomError
	if !errors.As(err, &ce) {
		return "", false
	}
	reason, ok := ce.Details["reason"].(string)
	return reason, ok
}

// ValidationFields returns the per-field messages of a validation error.
func ValidationFields(err error) map[string]string {
	var ce *CustomError
	if errors.As(err, &ce) && errors.Is(ce.Err, ErrValidationFailed) {
		return ce.Fields
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
