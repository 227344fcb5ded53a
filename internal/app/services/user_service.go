package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/app/repositories"
	"github.com/yigit/lms/internal/pkg/apperrors"
)

// UserService defines the read operations on users
type UserService interface {
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserEnrollments(ctx context.Context, userID int64) ([]*models.Enrollment, error)
}

type userServiceImpl struct {
	users       UserReader
	enrollments EnrollmentService
}

// NewUserService creates a new UserService
func NewUserService(users UserReader, enrollments EnrollmentService) UserService {
	return &userServiceImpl{users: users, enrollments: enrollments}
}

// GetAllUsers retrieves every user
func (s *userServiceImpl) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

// GetUserByID retrieves a user or a not-found error
func (s *userServiceImpl) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError(apperrors.EntityUser, id)
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// GetUserEnrollments lists the enrollments of an existing user
func (s *userServiceImpl) GetUserEnrollments(ctx context.Context, userID int64) ([]*models.Enrollment, error) {
	if _, err := s.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.enrollments.GetEnrollmentsByStudent(ctx, userID)
}
