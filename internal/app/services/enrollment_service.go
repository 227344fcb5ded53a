package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/app/repositories"
	"github.com/yigit/lms/internal/pkg/apperrors"
	"github.com/yigit/lms/internal/pkg/metrics"
)

// EnrollmentService defines the enroll/unenroll operations and enrollment listings
type EnrollmentService interface {
	Enroll(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error)
	Unenroll(ctx context.Context, studentID, courseID int64) error
	GetEnrollmentsByCourse(ctx context.Context, courseID int64) ([]*models.Enrollment, error)
	GetEnrollmentsByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error)
}

// enrollmentServiceImpl implements EnrollmentService. It keeps no state of its own.
type enrollmentServiceImpl struct {
	users       UserReader
	courses     CourseReader
	enrollments EnrollmentStore
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(
	users UserReader,
	courses CourseReader,
	enrollments EnrollmentStore,
	m *metrics.Metrics,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentServiceImpl{
		users:       users,
		courses:     courses,
		enrollments: enrollments,
		metrics:     m,
		logger:      logger,
	}
}

// Enroll registers a student in a course.
// Checks run in a fixed order: duplicate pair, student, course. The unique constraint
// decides races between concurrent calls for the same pair.
func (s *enrollmentServiceImpl) Enroll(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error) {
	enrollment, err := s.enroll(ctx, studentID, courseID)
	s.metrics.ObserveEnrollment(metrics.OpEnroll, outcomeOf(err))
	return enrollment, err
}

func (s *enrollmentServiceImpl) enroll(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error) {
	exists, err := s.enrollments.Exists(ctx, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("error checking enrollment: %w", err)
	}
	if exists {
		return nil, apperrors.NewAlreadyEnrolledError()
	}

	if _, err := s.users.GetUserByID(ctx, studentID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError(apperrors.EntityStudent, studentID)
		}
		return nil, fmt.Errorf("error checking student: %w", err)
	}

	if _, err := s.courses.GetCourseByID(ctx, courseID); err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperrors.NewNotFoundError(apperrors.EntityCourse, courseID)
		}
		return nil, fmt.Errorf("error checking course: %w", err)
	}

	enrollment, err := s.enrollments.Create(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicatePair) {
			return nil, apperrors.NewAlreadyEnrolledError()
		}
		return nil, fmt.Errorf("error creating enrollment: %w", err)
	}

	s.logger.Info().
		Int64("enrollmentId", enrollment.ID).
		Int64("studentId", studentID).
		Int64("courseId", courseID).
		Msg("Student enrolled")
	return enrollment, nil
}

// Unenroll removes the enrollment of a student in a course. A second call for the same
// pair reports not found.
func (s *enrollmentServiceImpl) Unenroll(ctx context.Context, studentID, courseID int64) error {
	err := s.unenroll(ctx, studentID, courseID)
	s.metrics.ObserveEnrollment(metrics.OpUnenroll, outcomeOf(err))
	return err
}

func (s *enrollmentServiceImpl) unenroll(ctx context.Context, studentID, courseID int64) error {
	enrollment, err := s.enrollments.GetByPair(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, repositories.ErrEnrollmentNotFound) {
			return apperrors.NewEnrollmentNotFoundError(studentID, courseID)
		}
		return fmt.Errorf("error retrieving enrollment: %w", err)
	}

	if err := s.enrollments.Delete(ctx, enrollment.ID); err != nil {
		// Lost a race with another unenroll of the same pair
		if errors.Is(err, repositories.ErrEnrollmentNotFound) {
			return apperrors.NewEnrollmentNotFoundError(studentID, courseID)
		}
		return fmt.Errorf("error deleting enrollment: %w", err)
	}

	s.logger.Info().
		Int64("enrollmentId", enrollment.ID).
		Int64("studentId", studentID).
		Int64("courseId", courseID).
		Msg("Student unenrolled")
	return nil
}

// GetEnrollmentsByCourse lists the enrollments of a course without checking that it exists
func (s *enrollmentServiceImpl) GetEnrollmentsByCourse(ctx context.Context, courseID int64) ([]*models.Enrollment, error) {
	enrollments, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("error listing enrollments for course %d: %w", courseID, err)
	}
	return enrollments, nil
}

// GetEnrollmentsByStudent lists the enrollments of a student without checking that it exists
func (s *enrollmentServiceImpl) GetEnrollmentsByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error listing enrollments for student %d: %w", studentID, err)
	}
	return enrollments, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, apperrors.ErrConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}
