package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
	"github.com/yigit/lms/internal/db"
)

//go:embed sql
var migrationFiles embed.FS

const migrationsTable = "schema_migrations"

// Migrator manages database migrations
type Migrator struct {
	db     *db.Database
	files  fs.FS
	sb     squirrel.StatementBuilderType
	logger zerolog.Logger
}

// NewMigrator creates a migrator that applies the embedded scripts for the database dialect
func NewMigrator(database *db.Database, logger zerolog.Logger) *Migrator {
	return &Migrator{
		db:     database,
		files:  migrationFiles,
		sb:     database.StatementBuilder(),
		logger: logger.With().Str("component", "migrator").Logger(),
	}
}

// ensureMigrationTableExists creates the migration tracking table if it doesn't exist
func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	if _, err := m.db.DB.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

// isMigrationApplied checks if a specific migration has already been applied
func (m *Migrator) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	query, args, err := m.sb.Select("COUNT(*)").From(migrationsTable).
		Where(squirrel.Eq{"version": version}).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build migration status query: %w", err)
	}

	var count int
	if err := m.db.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return count > 0, nil
}

// recordMigration marks a migration as applied inside the migration's transaction
func (m *Migrator) recordMigration(ctx context.Context, tx *sql.Tx, version string) error {
	query, args, err := m.sb.Insert(migrationsTable).Columns("version").Values(version).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build migration record: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return nil
}

// Pending returns the versions that have not been applied yet, in order
func (m *Migrator) Pending(ctx context.Context) ([]string, error) {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return nil, err
	}

	files, err := m.scripts()
	if err != nil {
		return nil, err
	}

	var pending []string
	for _, file := range files {
		version := versionOf(file)
		applied, err := m.isMigrationApplied(ctx, version)
		if err != nil {
			return nil, err
		}
		if !applied {
			pending = append(pending, version)
		}
	}
	return pending, nil
}

// Migrate applies every pending script for the dialect in filename order
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return err
	}

	files, err := m.scripts()
	if err != nil {
		return err
	}

	applied := 0
	for _, file := range files {
		ok, err := m.migrateFile(ctx, file)
		if err != nil {
			return err
		}
		if ok {
			applied++
		}
	}

	m.logger.Info().Int("applied", applied).Int("total", len(files)).Msg("Database migrations complete")
	return nil
}

// migrateFile executes one script and records it. It reports whether the script ran.
func (m *Migrator) migrateFile(ctx context.Context, file string) (bool, error) {
	filename := path.Base(file)
	version := versionOf(file)

	applied, err := m.isMigrationApplied(ctx, version)
	if err != nil {
		return false, err
	}
	if applied {
		m.logger.Debug().Str("migration", filename).Msg("Migration already applied, skipping")
		return false, nil
	}

	content, err := fs.ReadFile(m.files, file)
	if err != nil {
		return false, fmt.Errorf("failed to read migration file: %w", err)
	}

	err = m.db.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for _, stmt := range splitStatements(string(content)) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("error occurred during SQL migration %s: %w", filename, err)
			}
		}
		return m.recordMigration(ctx, tx, version)
	})
	if err != nil {
		return false, err
	}

	m.logger.Info().Str("migration", filename).Msg("Migration file successfully applied")
	return true, nil
}

// scripts lists the SQL files for the current dialect, sorted by name
func (m *Migrator) scripts() ([]string, error) {
	dir := path.Join("sql", string(m.db.Dialect))
	entries, err := fs.ReadDir(m.files, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory %s: %w", dir, err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, path.Join(dir, entry.Name()))
		}
	}
	sort.Strings(sqlFiles)
	return sqlFiles, nil
}

// versionOf extracts the version prefix, e.g. "001_init.sql" => "001"
func versionOf(file string) string {
	return strings.SplitN(path.Base(file), "_", 2)[0]
}

// splitStatements breaks a script into individual statements.
// Scripts must not contain semicolons inside string literals.
func splitStatements(script string) []string {
	var stmts []string
	for _, part := range strings.Split(script, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
