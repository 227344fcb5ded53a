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

var userColumns = []string{"id", "first_name", "last_name", "email", "status", "role"}

// UserRepository handles read access to users plus the inserts used by the seed loader
type UserRepository struct {
	q queryRunner
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(database *db.Database) *UserRepository {
	return &UserRepository{q: newQueryRunner(database)}
}

// WithTx returns a copy of the repository bound to tx
func (r *UserRepository) WithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{q: r.q.withTx(tx)}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Status, &user.Role)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query, args, err := r.q.sb.Select(userColumns...).From("users").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.q.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user %d: %w", id, err)
	}
	return user, nil
}

// GetAllUsers retrieves every user ordered by id
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return r.listUsers(ctx, r.q.sb.Select(userColumns...).From("users").OrderBy("id"))
}

// GetUsersByIDs fetches the users with the given ids in one query.
// Missing ids are skipped; the result is ordered by id.
func (r *UserRepository) GetUsersByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	return r.listUsers(ctx, r.q.sb.Select(userColumns...).From("users").
		Where(squirrel.Eq{"id": ids}).OrderBy("id"))
}

func (r *UserRepository) listUsers(ctx context.Context, builder squirrel.SelectBuilder) ([]*models.User, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// CountUsers returns the number of users
func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	n, err := r.q.count(ctx, r.q.sb.Select("COUNT(*)").From("users"))
	if err != nil {
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	return n, nil
}

// InsertUser stores a user. A non-zero ID is kept as is, otherwise the database assigns one.
func (r *UserRepository) InsertUser(ctx context.Context, user *models.User) error {
	columns := []string{"first_name", "last_name", "email", "status", "role"}
	values := []interface{}{user.FirstName, user.LastName, user.Email, string(user.Status), string(user.Role)}
	if user.ID != 0 {
		columns = append([]string{"id"}, columns...)
		values = append([]interface{}{user.ID}, values...)
	}

	id, err := r.q.insertReturningID(ctx, r.q.sb.Insert("users").Columns(columns...).Values(values...))
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return fmt.Errorf("user %q conflicts with an existing row: %w", user.Email, err)
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error executing insert user query")
		return fmt.Errorf("error inserting user: %w", err)
	}
	user.ID = id
	return nil
}
