// Package seed loads demo users, courses and enrollments from CSV files.
package seed

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/lms/internal/app/models"
	appRepos "github.com/yigit/lms/internal/app/repositories"
	"github.com/yigit/lms/internal/db"
)

//go:embed data/*.csv
var defaultData embed.FS

// File names looked up in the seed source
const (
	UsersFile       = "users.csv"
	CoursesFile     = "courses.csv"
	EnrollmentsFile = "enrollments.csv"
)

// SourceFS returns the directory to read seed files from. An empty dir selects the
// embedded demo data.
func SourceFS(dir string) (fs.FS, error) {
	if dir == "" {
		return fs.Sub(defaultData, "data")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("seed directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("seed directory %s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

// Result summarises one Load call
type Result struct {
	Skipped            bool
	UsersInserted      int
	CoursesInserted    int
	EnrollmentsCleared int64
	EnrollmentsCreated int
	EnrollmentsSkipped int
}

// Loader writes seed data through the repositories
type Loader struct {
	db       *db.Database
	repos    *appRepos.Repositories
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewLoader creates a seed loader
func NewLoader(database *db.Database, lgr zerolog.Logger) *Loader {
	return &Loader{
		db:       database,
		repos:    appRepos.NewRepositories(database),
		validate: validator.New(),
		logger:   lgr.With().Str("component", "seed").Logger(),
	}
}

// Load imports the seed files in one transaction.
// Users and courses are only inserted into an empty database. Enrollments are loaded
// after users and courses were inserted, or after reset cleared every enrollment.
func (l *Loader) Load(ctx context.Context, fsys fs.FS, reset bool) (*Result, error) {
	result := &Result{}

	err := l.db.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := l.repos.UserRepository.WithTx(tx)
		courses := l.repos.CourseRepository.WithTx(tx)
		enrollments := l.repos.EnrollmentRepository.WithTx(tx)

		if reset {
			cleared, err := enrollments.DeleteAll(ctx)
			if err != nil {
				return err
			}
			result.EnrollmentsCleared = cleared
		}

		count, err := users.CountUsers(ctx)
		if err != nil {
			return err
		}

		seeded := false
		if count == 0 {
			if err := l.loadUsers(ctx, fsys, users, result); err != nil {
				return err
			}
			if err := l.loadCourses(ctx, fsys, courses, result); err != nil {
				return err
			}
			if err := appRepos.SyncIdentitySequences(ctx, l.db, tx, "users", "courses"); err != nil {
				return err
			}
			seeded = true
		}

		if !seeded && !reset {
			result.Skipped = true
			return nil
		}
		return l.loadEnrollments(ctx, fsys, users, courses, enrollments, result)
	})
	if err != nil {
		return nil, fmt.Errorf("seed failed: %w", err)
	}

	if result.Skipped {
		l.logger.Info().Msg("Users already present, skipping seed")
	} else {
		l.logger.Info().
			Int("users", result.UsersInserted).
			Int("courses", result.CoursesInserted).
			Int64("enrollmentsCleared", result.EnrollmentsCleared).
			Int("enrollments", result.EnrollmentsCreated).
			Int("enrollmentsSkipped", result.EnrollmentsSkipped).
			Msg("Seed data loaded")
	}
	return result, nil
}

func (l *Loader) loadUsers(ctx context.Context, fsys fs.FS, users *appRepos.UserRepository, result *Result) error {
	records, err := l.readRecords(fsys, UsersFile)
	if err != nil {
		return err
	}

	for _, rec := range records {
		row, err := parseUser(rec)
		if err != nil {
			return err
		}
		if err := l.validate.Struct(row); err != nil {
			return fmt.Errorf("%s line %d: %w", UsersFile, rec.line, err)
		}

		user := &appModels.User{
			ID:        row.ID,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Email:     row.Email,
			Status:    appModels.UserStatus(row.Status),
			Role:      appModels.RoleType(row.Role),
		}
		if err := users.InsertUser(ctx, user); err != nil {
			return fmt.Errorf("%s line %d: %w", UsersFile, rec.line, err)
		}
		result.UsersInserted++
	}
	return nil
}

func (l *Loader) loadCourses(ctx context.Context, fsys fs.FS, courses *appRepos.CourseRepository, result *Result) error {
	records, err := l.readRecords(fsys, CoursesFile)
	if err != nil {
		return err
	}

	for _, rec := range records {
		row, err := parseCourse(rec)
		if err != nil {
			return err
		}
		if err := l.validate.Struct(row); err != nil {
			return fmt.Errorf("%s line %d: %w", CoursesFile, rec.line, err)
		}

		course := &appModels.Course{ID: row.ID, Title: row.Title}
		if row.Description != "" {
			description := row.Description
			course.Description = &description
		}
		if err := courses.InsertCourse(ctx, course); err != nil {
			return fmt.Errorf("%s line %d: %w", CoursesFile, rec.line, err)
		}
		result.CoursesInserted++
	}
	return nil
}

// loadEnrollments skips rows whose student or course is unknown and repeated pairs,
// so a single bad row does not abort the whole transaction.
func (l *Loader) loadEnrollments(
	ctx context.Context,
	fsys fs.FS,
	users *appRepos.UserRepository,
	courses *appRepos.CourseRepository,
	enrollments *appRepos.EnrollmentRepository,
	result *Result,
) error {
	records, err := l.readRecords(fsys, EnrollmentsFile)
	if err != nil {
		return err
	}

	type pair struct{ studentID, courseID int64 }
	seen := make(map[pair]bool, len(records))

	for _, rec := range records {
		row, err := parseEnrollment(rec)
		if err != nil {
			return err
		}
		if err := l.validate.Struct(row); err != nil {
			return fmt.Errorf("%s line %d: %w", EnrollmentsFile, rec.line, err)
		}

		p := pair{row.StudentID, row.CourseID}
		if seen[p] {
			l.logger.Warn().Int("line", rec.line).Msg("Duplicate enrollment row, skipping")
			result.EnrollmentsSkipped++
			continue
		}
		seen[p] = true

		if _, err := users.GetUserByID(ctx, row.StudentID); err != nil {
			if errors.Is(err, appRepos.ErrUserNotFound) {
				l.logger.Warn().Int("line", rec.line).Int64("studentId", row.StudentID).Msg("Unknown student, skipping enrollment")
				result.EnrollmentsSkipped++
				continue
			}
			return err
		}
		if _, err := courses.GetCourseByID(ctx, row.CourseID); err != nil {
			if errors.Is(err, appRepos.ErrCourseNotFound) {
				l.logger.Warn().Int("line", rec.line).Int64("courseId", row.CourseID).Msg("Unknown course, skipping enrollment")
				result.EnrollmentsSkipped++
				continue
			}
			return err
		}

		exists, err := enrollments.Exists(ctx, row.StudentID, row.CourseID)
		if err != nil {
			return err
		}
		if exists {
			result.EnrollmentsSkipped++
			continue
		}

		if _, err := enrollments.Create(ctx, row.StudentID, row.CourseID); err != nil {
			return fmt.Errorf("%s line %d: %w", EnrollmentsFile, rec.line, err)
		}
		result.EnrollmentsCreated++
	}
	return nil
}

func (l *Loader) readRecords(fsys fs.FS, name string) ([]record, error) {
	f, err := fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn().Str("file", name).Msg("Seed file not found, skipping")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	records, err := readCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return records, nil
}
