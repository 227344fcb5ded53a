// Package db opens the SQL connection pool for the configured driver and
// provides the transaction helper used by the repositories.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/lms/internal/config"
	"github.com/yigit/lms/internal/pkg/helpers"
	"github.com/yigit/lms/internal/pkg/logger"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver
)

// Dialect identifies the SQL flavour behind a Database
type Dialect string

// Supported dialects
const (
	Postgres Dialect = config.DriverPostgres
	SQLite   Dialect = config.DriverSQLite
	MySQL    Dialect = config.DriverMySQL
)

// DriverName returns the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "pgx"
	}
	return string(d)
}

// Placeholder returns the bind parameter style for squirrel builders.
func (d Dialect) Placeholder() squirrel.PlaceholderFormat {
	if d == Postgres {
		return squirrel.Dollar
	}
	return squirrel.Question
}

// SupportsReturning reports whether INSERT ... RETURNING is available.
func (d Dialect) SupportsReturning() bool {
	return d != MySQL
}

// DBTX is satisfied by both *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Options configures the connection pool
type Options struct {
	Dialect         Dialect
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Database wraps the connection pool together with its dialect
type Database struct {
	DB      *sql.DB
	Dialect Dialect
}

// OptionsFromConfig builds pool options from the application configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Dialect:         Dialect(cfg.Database.Driver),
		DSN:             DataSourceName(cfg),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: helpers.ParseDuration(cfg.Database.ConnMaxLifetime, time.Hour),
	}
}

// DataSourceName returns the DSN for the configured driver. An explicit dsn wins.
func DataSourceName(cfg *config.Config) string {
	if cfg.Database.DSN != "" {
		return cfg.Database.DSN
	}

	switch cfg.Database.Driver {
	case config.DriverMySQL:
		myCfg := mysql.NewConfig()
		myCfg.User = cfg.Database.User
		myCfg.Passwd = cfg.Database.Password
		myCfg.Net = "tcp"
		myCfg.Addr = cfg.Database.Host + ":" + cfg.Database.Port
		myCfg.DBName = cfg.Database.DBName
		myCfg.ParseTime = true
		return myCfg.FormatDSN()
	default:
		return cfg.GetPostgresConnectionString()
	}
}

// Open creates the connection pool and verifies it with a ping
func Open(ctx context.Context, opts Options) (*Database, error) {
	switch opts.Dialect {
	case Postgres, SQLite, MySQL:
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", opts.Dialect)
	}

	sqlDB, err := sql.Open(opts.Dialect.DriverName(), opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen, maxIdle := opts.MaxOpenConns, opts.MaxIdleConns
	// Every connection to an in-memory SQLite database sees its own schema
	// unless they share one connection.
	if opts.Dialect == SQLite && isInMemorySQLite(opts.DSN) {
		maxOpen, maxIdle = 1, 1
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to establish database connection: %w", err)
	}

	return &Database{DB: sqlDB, Dialect: opts.Dialect}, nil
}

func isInMemorySQLite(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// Close closes the connection pool
func (d *Database) Close() error {
	if d == nil || d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

// StatementBuilder returns a squirrel builder using the dialect's placeholders
func (d *Database) StatementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.Dialect.Placeholder())
}

// TransactionFn is a function that executes within a transaction
type TransactionFn func(ctx context.Context, tx *sql.Tx) error

// WithTransaction runs a function within a transaction
func (d *Database) WithTransaction(ctx context.Context, fn TransactionFn) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error().Err(rbErr).Msg("Failed to rollback transaction")
			return fmt.Errorf("%w (rollback error: %w)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
