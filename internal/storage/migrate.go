package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Migrator brings a schema up to date
type Migrator interface {
	Migrate(ctx context.Context) (applied int, err error)
}

var _ Migrator = (*SQLStorage)(nil)

type dialect int

const (
	dialectSQLite dialect = iota + 1
	dialectMySQL
)

func (d dialect) driver() string {
	if d == dialectMySQL {
		return "mysql"
	}
	return "sqlite3"
}

func (d dialect) autoIncrement() string {
	if d == dialectMySQL {
		return "BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// autoIncrementColumn is replaced by the dialect's auto-increment primary key definition
const autoIncrementColumn = "{{auto_increment}}"

// migration is one schema step
type migration struct {
	version    int
	statements []string
}

var migrations = []migration{
	{1, []string{
		`CREATE TABLE IF NOT EXISTS itkit_runs (
			id {{auto_increment}},
			run_id VARCHAR(64) NOT NULL UNIQUE,
			started_at VARCHAR(40) NOT NULL,
			duration_seconds DOUBLE NOT NULL,
			total_scenarios INTEGER NOT NULL,
			failed_scenarios INTEGER NOT NULL,
			failed_test_cases INTEGER NOT NULL,
			workers INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS itkit_scenario_results (
			id {{auto_increment}},
			run_id VARCHAR(64) NOT NULL,
			scenario VARCHAR(255) NOT NULL,
			fixture VARCHAR(255) NOT NULL,
			success BOOLEAN NOT NULL,
			total_tests INTEGER NOT NULL,
			test_errors INTEGER NOT NULL,
			test_failures INTEGER NOT NULL,
			test_skipped INTEGER NOT NULL,
			test_flakes INTEGER NOT NULL,
			duration_seconds DOUBLE NOT NULL,
			problems TEXT
		)`,
	}},
	{2, []string{
		`CREATE INDEX idx_itkit_results_run ON itkit_scenario_results (run_id)`,
		`CREATE INDEX idx_itkit_results_scenario ON itkit_scenario_results (scenario)`,
	}},
}

// Migrate brings the history schema up to date. For MySQL the database itself
// is created first when missing.
func (s *SQLStorage) Migrate(ctx context.Context) (applied int, err error) {
	if s.dialect == dialectMySQL {
		if err := ensureDatabase(ctx, s.source); err != nil {
			return 0, err
		}
	}

	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS itkit_migrations (version INTEGER NOT NULL PRIMARY KEY)`); err != nil {
		return 0, fmt.Errorf("create migrations table: %w", err)
	}

	var current sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM itkit_migrations`).Scan(&current); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if int64(m.version) <= current.Int64 {
			continue
		}
		if err := s.apply(ctx, m); err != nil {
			return applied, fmt.Errorf("migration %d: %w", m.version, err)
		}
		applied++
	}
	return applied, nil
}

func (s *SQLStorage) apply(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.statements {
		if _, err := tx.ExecContext(ctx, strings.ReplaceAll(stmt, autoIncrementColumn, s.dialect.autoIncrement())); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO itkit_migrations (version) VALUES (?)`, m.version); err != nil {
		return err
	}
	return tx.Commit()
}

// ensureDatabase creates the database named in a MySQL DSN on its server
func ensureDatabase(ctx context.Context, source string) error {
	cfg, err := mysql.ParseDSN(source)
	if err != nil {
		return fmt.Errorf("invalid mysql DSN: %w", err)
	}
	name := cfg.DBName
	if !isValidDatabaseName(name) {
		return fmt.Errorf("invalid database name: %s", name)
	}
	cfg.DBName = ""

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database server: %w", err)
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name))
	return err
}

// isValidDatabaseName accepts letters, digits, underscore and dollar, up to 64 characters
func isValidDatabaseName(name string) bool {
	if len(name) == 0 || len(name) > 64 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '$':
		default:
			return false
		}
	}
	return true
}
