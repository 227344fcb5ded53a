package models

// Course represents a course students can enroll in.
type Course struct {
	ID          int64   `json:"id" db:"id"`
	Title       string  `json:"title" db:"title"`
	Description *string `json:"description,omitempty" db:"description"` // Nullable
}
