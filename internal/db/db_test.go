package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/lms/internal/config"
)

var memCounter atomic.Int64

func openMemory(t *testing.T) *Database {
	t.Helper()
	dsn := fmt.Sprintf("file:dbtest_%d?mode=memory&cache=shared", memCounter.Add(1))
	database, err := Open(context.Background(), Options{Dialect: SQLite, DSN: dsn, MaxOpenConns: 10})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if _, err := database.DB.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return database
}

func countItems(t *testing.T, database *Database) int {
	t.Helper()
	var n int
	if err := database.DB.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestDialect(t *testing.T) {
	tests := []struct {
		dialect     Dialect
		driver      string
		placeholder squirrel.PlaceholderFormat
		returning   bool
	}{
		{Postgres, "pgx", squirrel.Dollar, true},
		{SQLite, "sqlite", squirrel.Question, true},
		{MySQL, "mysql", squirrel.Question, false},
	}
	for _, tt := range tests {
		if got := tt.dialect.DriverName(); got != tt.driver {
			t.Errorf("%s.DriverName() = %q, want %q", tt.dialect, got, tt.driver)
		}
		if got := tt.dialect.Placeholder(); got != tt.placeholder {
			t.Errorf("%s.Placeholder() = %v", tt.dialect, got)
		}
		if got := tt.dialect.SupportsReturning(); got != tt.returning {
			t.Errorf("%s.SupportsReturning() = %v", tt.dialect, got)
		}
	}
}

func TestOpenRejectsUnknownDialect(t *testing.T) {
	if _, err := Open(context.Background(), Options{Dialect: "oracle"}); err == nil {
		t.Fatal("Open() error = nil, want unsupported dialect")
	}
}

func TestOpenInMemorySQLiteUsesSingleConnection(t *testing.T) {
	database := openMemory(t)
	if got := database.DB.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("MaxOpenConnections = %d, want 1", got)
	}
}

func TestDataSourceName(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = config.DriverPostgres
	cfg.Database.User = "u"
	cfg.Database.Password = "p"
	cfg.Database.Host = "db"
	cfg.Database.Port = "5432"
	cfg.Database.DBName = "lms"
	cfg.Database.SSLMode = "require"

	if got := DataSourceName(cfg); got != "postgres://u:p@db:5432/lms?sslmode=require" {
		t.Errorf("postgres DSN = %q", got)
	}

	cfg.Database.Driver = config.DriverMySQL
	cfg.Database.Port = "3306"
	got := DataSourceName(cfg)
	for _, want := range []string{"u:p@tcp(db:3306)/lms", "parseTime=true"} {
		if !strings.Contains(got, want) {
			t.Errorf("mysql DSN %q missing %q", got, want)
		}
	}
	if strings.Contains(got, "multiStatements") {
		t.Errorf("mysql DSN %q must not enable multi statements", got)
	}

	cfg.Database.DSN = "explicit"
	if got := DataSourceName(cfg); got != "explicit" {
		t.Errorf("explicit DSN = %q", got)
	}
}

func TestWithTransactionCommits(t *testing.T) {
	database := openMemory(t)

	err := database.WithTransaction(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO items (name) VALUES ('a'), ('b')`)
		return err
	})
	if err != nil {
		t.Fatalf("WithTransaction() error = %v", err)
	}
	if n := countItems(t, database); n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	database := openMemory(t)
	errBoom := errors.New("boom")

	err := database.WithTransaction(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO items (name) VALUES ('a')`); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("WithTransaction() error = %v, want errBoom", err)
	}
	if n := countItems(t, database); n != 0 {
		t.Fatalf("count = %d, want 0 after rollback", n)
	}
}

func TestWithTransactionKeepsErrorWhenRollbackFails(t *testing.T) {
	database := openMemory(t)
	errBoom := errors.New("boom")

	err := database.WithTransaction(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
		// ending the tx early makes the helper's own rollback fail
		if err := tx.Rollback(); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("WithTransaction() error = %v, want errBoom", err)
	}
	if !errors.Is(err, sql.ErrTxDone) {
		t.Fatalf("WithTransaction() error = %v, want rollback error too", err)
	}
}

func TestWithTransactionRollsBackOnPanic(t *testing.T) {
	database := openMemory(t)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("panic was swallowed")
			}
		}()
		_ = database.WithTransaction(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, `INSERT INTO items (name) VALUES ('a')`); err != nil {
				return err
			}
			panic("boom")
		})
	}()

	if n := countItems(t, database); n != 0 {
		t.Fatalf("count = %d, want 0 after panic", n)
	}
}

func TestStatementBuilderUsesDialectPlaceholders(t *testing.T) {
	pg := &Database{Dialect: Postgres}
	query, _, err := pg.StatementBuilder().Select("id").From("items").Where(squirrel.Eq{"id": 1}).ToSql()
	if err != nil {
		t.Fatal(err)
	}
	if query != "SELECT id FROM items WHERE id = $1" {
		t.Errorf("postgres query = %q", query)
	}
}
