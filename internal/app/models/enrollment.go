package models

// Enrollment links a student to a course. A (student, course) pair appears at most once.
type Enrollment struct {
	ID        int64 `json:"id" db:"id"`
	StudentID int64 `json:"studentId" db:"student_id"`
	CourseID  int64 `json:"courseId" db:"course_id"`
}
