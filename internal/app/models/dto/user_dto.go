package dto

import "github.com/yigit/lms/internal/app/models"

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        int64  `json:"id" example:"3"`
	FirstName string `json:"firstName" example:"Alice"`
	LastName  string `json:"lastName" example:"Student"`
	Email     string `json:"email" example:"alice@example.com"`
	Status    string `json:"status" example:"ACTIVE"`
	Role      string `json:"role" example:"STUDENT"`
}

// NewUserResponse converts a model to its API shape
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Status:    string(u.Status),
		Role:      string(u.Role),
	}
}

// NewUserResponses converts a slice, never returning nil
func NewUserResponses(users []*models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}
