package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/db"
	"github.com/yigit/lms/internal/pkg/dberrors"
	"github.com/yigit/lms/internal/pkg/logger"
)

// EnrollmentRepository owns the enrollment rows
type EnrollmentRepository struct {
	q queryRunner
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(database *db.Database) *EnrollmentRepository {
	return &EnrollmentRepository{q: newQueryRunner(database)}
}

// WithTx returns a copy of the repository bound to tx
func (r *EnrollmentRepository) WithTx(tx *sql.Tx) *EnrollmentRepository {
	return &EnrollmentRepository{q: r.q.withTx(tx)}
}

func (r *EnrollmentRepository) selectEnrollments() squirrel.SelectBuilder {
	return r.q.sb.Select("id", "student_id", "course_id").From("enrollments")
}

func scanEnrollment(row rowScanner) (*models.Enrollment, error) {
	var e models.Enrollment
	if err := row.Scan(&e.ID, &e.StudentID, &e.CourseID); err != nil {
		return nil, err
	}
	return &e, nil
}

func pairEq(studentID, courseID int64) squirrel.Eq {
	return squirrel.Eq{"student_id": studentID, "course_id": courseID}
}

// Exists reports whether the (student, course) pair is enrolled
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID int64) (bool, error) {
	n, err := r.q.count(ctx, r.q.sb.Select("COUNT(*)").From("enrollments").Where(pairEq(studentID, courseID)))
	if err != nil {
		return false, fmt.Errorf("error checking enrollment: %w", err)
	}
	return n > 0, nil
}

// GetByPair retrieves the enrollment of a student in a course
func (r *EnrollmentRepository) GetByPair(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error) {
	query, args, err := r.selectEnrollments().Where(pairEq(studentID, courseID)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get enrollment query: %w", err)
	}

	enrollment, err := scanEnrollment(r.q.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("error retrieving enrollment: %w", err)
	}
	return enrollment, nil
}

// ListByCourse returns the enrollments of a course in insertion order
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID int64) ([]*models.Enrollment, error) {
	return r.list(ctx, r.selectEnrollments().Where(squirrel.Eq{"course_id": courseID}).OrderBy("id"))
}

// ListByStudent returns the enrollments of a student in insertion order
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error) {
	return r.list(ctx, r.selectEnrollments().Where(squirrel.Eq{"student_id": studentID}).OrderBy("id"))
}

func (r *EnrollmentRepository) list(ctx context.Context, builder squirrel.SelectBuilder) ([]*models.Enrollment, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list enrollments query: %w", err)
	}

	rows, err := r.q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := make([]*models.Enrollment, 0)
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrollments: %w", err)
	}
	return enrollments, nil
}

// Create inserts a new enrollment. A unique constraint rejection, including one caused by
// a concurrent insert of the same pair, is returned as ErrDuplicatePair.
func (r *EnrollmentRepository) Create(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error) {
	builder := r.q.sb.Insert("enrollments").Columns("student_id", "course_id").Values(studentID, courseID)

	id, err := r.q.insertReturningID(ctx, builder)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return nil, ErrDuplicatePair
		}
		logger.Error().Err(err).Int64("studentId", studentID).Int64("courseId", courseID).
			Msg("Error executing create enrollment query")
		return nil, fmt.Errorf("error creating enrollment: %w", err)
	}

	return &models.Enrollment{ID: id, StudentID: studentID, CourseID: courseID}, nil
}

// Delete removes an enrollment by id
func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.q.sb.Delete("enrollments").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete enrollment query: %w", err)
	}

	res, err := r.q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error deleting enrollment %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

// DeleteAll removes every enrollment and returns how many rows were deleted
func (r *EnrollmentRepository) DeleteAll(ctx context.Context) (int64, error) {
	query, args, err := r.q.sb.Delete("enrollments").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete enrollments query: %w", err)
	}

	res, err := r.q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting enrollments: %w", err)
	}
	return res.RowsAffected()
}
