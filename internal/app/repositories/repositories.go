package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/lms/internal/db"
)

// Repository errors. Services translate them into apperrors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrDuplicatePair      = errors.New("enrollment for this student and course already exists")
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	CourseRepository     *CourseRepository
	EnrollmentRepository *EnrollmentRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.Database) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(database),
		CourseRepository:     NewCourseRepository(database),
		EnrollmentRepository: NewEnrollmentRepository(database),
	}
}

// queryRunner carries the connection (pool or transaction) and the dialect's builder
type queryRunner struct {
	db      db.DBTX
	sb      squirrel.StatementBuilderType
	dialect db.Dialect
}

func newQueryRunner(database *db.Database) queryRunner {
	return queryRunner{
		db:      database.DB,
		sb:      database.StatementBuilder(),
		dialect: database.Dialect,
	}
}

func (q queryRunner) withTx(tx *sql.Tx) queryRunner {
	q.db = tx
	return q
}

// insertReturningID executes an insert and returns the generated id
func (q queryRunner) insertReturningID(ctx context.Context, builder squirrel.InsertBuilder) (int64, error) {
	if q.dialect.SupportsReturning() {
		query, args, err := builder.Suffix("RETURNING id").ToSql()
		if err != nil {
			return 0, fmt.Errorf("failed to build insert query: %w", err)
		}
		var id int64
		if err := q.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert query: %w", err)
	}
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// count runs a SELECT COUNT(*) builder
func (q queryRunner) count(ctx context.Context, builder squirrel.SelectBuilder) (int64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var n int64
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// SyncIdentitySequences moves Postgres serial sequences past rows inserted with explicit ids.
// Other dialects derive the next id from the table itself.
func SyncIdentitySequences(ctx context.Context, database *db.Database, tx *sql.Tx, tables ...string) error {
	if database.Dialect != db.Postgres {
		return nil
	}
	for _, table := range tables {
		stmt := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 1), true)",
			table)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to sync sequence for %s: %w", table, err)
		}
	}
	return nil
}
