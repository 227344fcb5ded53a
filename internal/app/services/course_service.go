package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/app/repositories"
	"github.com/yigit/lms/internal/pkg/apperrors"
)

// CourseService defines the read operations on courses
type CourseService interface {
	GetAllCourses(ctx context.Context) ([]*models.Course, error)
	GetCourseByID(ctx context.Context, id int64) (*models.Course, error)
	GetCourseStudents(ctx context.Context, courseID int64) ([]*models.User, error)
}

type courseServiceImpl struct {
	courses     CourseReader
	users       UserReader
	enrollments EnrollmentService
}

// NewCourseService creates a new CourseService
func NewCourseService(courses CourseReader, users UserReader, enrollments EnrollmentService) CourseService {
	return &courseServiceImpl{
		courses:     courses,
		users:       users,
		enrollments: enrollments,
	}
}

// GetAllCourses retrieves every course
func (s *courseServiceImpl) GetAllCourses(ctx context.Context) ([]*models.Course, error) {
	courses, err := s.courses.GetAllCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	return courses, nil
}

// GetCourseByID retrieves a course or a not-found error
func (s *courseServiceImpl) GetCourseByID(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.courses.GetCourseByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperrors.NewNotFoundError(apperrors.EntityCourse, id)
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	return course, nil
}

// GetCourseStudents returns the users enrolled in a course, in enrollment order
func (s *courseServiceImpl) GetCourseStudents(ctx context.Context, courseID int64) ([]*models.User, error) {
	if _, err := s.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}

	enrollments, err := s.enrollments.GetEnrollmentsByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if len(enrollments) == 0 {
		return []*models.User{}, nil
	}

	ids := make([]int64, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.StudentID)
	}

	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading course students: %w", err)
	}

	byID := make(map[int64]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	students := make([]*models.User, 0, len(enrollments))
	for _, e := range enrollments {
		if u, ok := byID[e.StudentID]; ok {
			students = append(students, u)
		}
	}
	return students, nil
}
