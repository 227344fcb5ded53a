package services

import (
	"context"

	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/app/repositories"
	"github.com/yigit/lms/internal/pkg/logger"
	"github.com/yigit/lms/internal/pkg/metrics"
)

// UserReader is the part of the identity store the services read users from
type UserReader interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []int64) ([]*models.User, error)
}

// CourseReader is the part of the identity store the services read courses from
type CourseReader interface {
	GetCourseByID(ctx context.Context, id int64) (*models.Course, error)
	GetAllCourses(ctx context.Context) ([]*models.Course, error)
}

// EnrollmentStore persists enrollments
type EnrollmentStore interface {
	Exists(ctx context.Context, studentID, courseID int64) (bool, error)
	GetByPair(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error)
	Create(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error)
	Delete(ctx context.Context, id int64) error
}

// Services bundles the application services
type Services struct {
	EnrollmentService EnrollmentService
	CourseService     CourseService
	UserService       UserService
}

// NewServices wires the services on top of the repositories. m may be nil.
func NewServices(repos *repositories.Repositories, m *metrics.Metrics) *Services {
	enrollmentService := NewEnrollmentService(repos.UserRepository, repos.CourseRepository,
		repos.EnrollmentRepository, m, logger.WithComponent("enrollment_service"))

	return &Services{
		EnrollmentService: enrollmentService,
		CourseService:     NewCourseService(repos.CourseRepository, repos.UserRepository, enrollmentService),
		UserService:       NewUserService(repos.UserRepository, enrollmentService),
	}
}
