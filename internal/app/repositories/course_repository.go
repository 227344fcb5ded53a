package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/db"
	"github.com/yigit/lms/internal/pkg/dberrors"
)

// CourseRepository handles database operations for courses
type CourseRepository struct {
	q queryRunner
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(database *db.Database) *CourseRepository {
	return &CourseRepository{q: newQueryRunner(database)}
}

// WithTx returns a copy of the repository bound to tx
func (r *CourseRepository) WithTx(tx *sql.Tx) *CourseRepository {
	return &CourseRepository{q: r.q.withTx(tx)}
}

func scanCourse(row rowScanner) (*models.Course, error) {
	var (
		course      models.Course
		description sql.NullString
	)
	if err := row.Scan(&course.ID, &course.Title, &description); err != nil {
		return nil, err
	}
	if description.Valid {
		course.Description = &description.String
	}
	return &course, nil
}

// GetCourseByID retrieves a course by ID
func (r *CourseRepository) GetCourseByID(ctx context.Context, id int64) (*models.Course, error) {
	query, args, err := r.q.sb.Select("id", "title", "description").From("courses").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	course, err := scanCourse(r.q.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course %d: %w", id, err)
	}
	return course, nil
}

// GetAllCourses retrieves all courses ordered by id
func (r *CourseRepository) GetAllCourses(ctx context.Context) ([]*models.Course, error) {
	query, args, err := r.q.sb.Select("id", "title", "description").From("courses").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	courses := make([]*models.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning course: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}
	return courses, nil
}

// InsertCourse stores a course, keeping a non-zero ID
func (r *CourseRepository) InsertCourse(ctx context.Context, course *models.Course) error {
	columns := []string{"title", "description"}
	values := []interface{}{course.Title, course.Description}
	if course.ID != 0 {
		columns = append([]string{"id"}, columns...)
		values = append([]interface{}{course.ID}, values...)
	}

	id, err := r.q.insertReturningID(ctx, r.q.sb.Insert("courses").Columns(columns...).Values(values...))
	if err != nil {
		return fmt.Errorf("error inserting course %q: %w", course.Title, err)
	}
	course.ID = id
	return nil
}
