// Package testutil provides an in-memory SQLite database migrated with the production
// schema, plus the fixture data shared by the package tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/yigit/lms/internal/app/migrations"
	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/app/repositories"
	"github.com/yigit/lms/internal/db"
)

var dbCounter atomic.Int64

// Fixture ids
const (
	AdminID   int64 = 1
	TeacherID int64 = 2
	AliceID   int64 = 3

	JavaBasicsID int64 = 1
	SpringBootID int64 = 2

	AliceEmail = "alice@example.com"
)

// MemoryDSN returns a DSN for a fresh shared-cache in-memory database
func MemoryDSN() string {
	return fmt.Sprintf("file:lms_test_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", dbCounter.Add(1))
}

// NewDatabase opens an empty, migrated database that is closed when the test ends
func NewDatabase(t testing.TB) *db.Database {
	t.Helper()
	return openMigrated(t, db.Options{Dialect: db.SQLite, DSN: MemoryDSN()})
}

// NewFileDatabase opens a migrated SQLite file in a temp dir with a pool of maxOpen
// connections, so concurrent callers really race each other
func NewFileDatabase(t testing.TB, maxOpen int) *db.Database {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "lms.db") +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	return openMigrated(t, db.Options{Dialect: db.SQLite, DSN: dsn, MaxOpenConns: maxOpen, MaxIdleConns: maxOpen})
}

func openMigrated(t testing.TB, opts db.Options) *db.Database {
	t.Helper()

	database, err := db.Open(context.Background(), opts)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.NewMigrator(database, zerolog.Nop()).Migrate(context.Background()); err != nil {
		t.Fatalf("migrate database: %v", err)
	}
	return database
}

// InsertFixtures adds users {1 Admin, 2 Teacher, 3 Alice/Student} and courses
// {1 "Java Basics", 2 "Spring Boot"}
func InsertFixtures(t testing.TB, database *db.Database) {
	t.Helper()
	ctx := context.Background()
	repos := repositories.NewRepositories(database)

	users := []*models.User{
		{ID: AdminID, FirstName: "Admin", LastName: "User", Email: "admin@example.com", Status: models.StatusActive, Role: models.RoleAdmin},
		{ID: TeacherID, FirstName: "John", LastName: "Teacher", Email: "john.teacher@example.com", Status: models.StatusActive, Role: models.RoleTeacher},
		{ID: AliceID, FirstName: "Alice", LastName: "Student", Email: AliceEmail, Status: models.StatusActive, Role: models.RoleStudent},
	}
	for _, u := range users {
		if err := repos.UserRepository.InsertUser(ctx, u); err != nil {
			t.Fatalf("insert user %d: %v", u.ID, err)
		}
	}

	description := "Introduction to Java"
	courses := []*models.Course{
		{ID: JavaBasicsID, Title: "Java Basics", Description: &description},
		{ID: SpringBootID, Title: "Spring Boot"},
	}
	for _, c := range courses {
		if err := repos.CourseRepository.InsertCourse(ctx, c); err != nil {
			t.Fatalf("insert course %d: %v", c.ID, err)
		}
	}
}

// AddStudent inserts one more student and returns its id
func AddStudent(t testing.TB, database *db.Database, firstName, email string) int64 {
	t.Helper()
	user := &models.User{FirstName: firstName, LastName: "Student", Email: email, Status: models.StatusActive, Role: models.RoleStudent}
	if err := repositories.NewUserRepository(database).InsertUser(context.Background(), user); err != nil {
		t.Fatalf("insert student %s: %v", email, err)
	}
	return user.ID
}
