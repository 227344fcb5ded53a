package models

// User defines the user model based on the 'users' table
type User struct {
	ID        int64      `json:"id" db:"id" example:"3"`
	FirstName string     `json:"firstName" db:"first_name" example:"Alice"`
	LastName  string     `json:"lastName" db:"last_name" example:"Student"`
	Email     string     `json:"email" db:"email" example:"alice@example.com"` // Unique across users
	Status    UserStatus `json:"status" db:"status" example:"ACTIVE"`
	Role      RoleType   `json:"role" db:"role" example:"STUDENT"`
}
