// Package store keeps a history of validation results in SQLite or MySQL.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/truelist/truelist-go"
)

// Supported drivers.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS validation_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL,
		domain TEXT NOT NULL,
		state TEXT NOT NULL,
		sub_state TEXT NOT NULL,
		free_email BOOLEAN NOT NULL,
		role BOOLEAN NOT NULL,
		disposable BOOLEAN NOT NULL,
		suggestion TEXT NOT NULL,
		checked_at TEXT NOT NULL
	)
`

const mysqlSchema = `
	CREATE TABLE IF NOT EXISTS validation_history (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(320) NOT NULL,
		domain VARCHAR(255) NOT NULL,
		state VARCHAR(32) NOT NULL,
		sub_state VARCHAR(64) NOT NULL,
		free_email BOOLEAN NOT NULL,
		role BOOLEAN NOT NULL,
		disposable BOOLEAN NOT NULL,
		suggestion VARCHAR(320) NOT NULL,
		checked_at VARCHAR(40) NOT NULL,
		INDEX idx_email (email)
	)
`

// Entry is one recorded validation.
type Entry struct {
	ID        int64
	Result    truelist.ValidationResult
	CheckedAt time.Time
}

// Store records validation results.
type Store struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
}

// Open connects to the database and creates the history table if needed.
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var schema string
	switch driver {
	case DriverSQLite:
		schema = sqliteSchema
	case DriverMySQL:
		schema = mysqlSchema
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// Each connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	logger.Debug("history store opened", zap.String("driver", driver))

	return &Store{db: db, driver: driver, logger: logger}, nil
}

// Record stores a validation result checked at the given time.
func (s *Store) Record(ctx context.Context, r truelist.ValidationResult, checkedAt time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO validation_history
			(email, domain, state, sub_state, free_email, role, disposable, suggestion, checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.Email, r.Domain, string(r.State), string(r.SubState),
		r.FreeEmail, r.Role, r.Disposable, r.Suggestion,
		checkedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to insert history entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read history entry id: %w", err)
	}
	s.logger.Debug("recorded validation", zap.String("email", r.Email), zap.Int64("id", id))
	return id, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, domain, state, sub_state, free_email, role, disposable, suggestion, checked_at
		FROM validation_history
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e               Entry
			state, subState string
			checkedAt       string
		)
		if err := rows.Scan(&e.ID, &e.Result.Email, &e.Result.Domain, &state, &subState,
			&e.Result.FreeEmail, &e.Result.Role, &e.Result.Disposable, &e.Result.Suggestion, &checkedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.Result.State = truelist.State(state)
		e.Result.SubState = truelist.SubState(subState)

		e.CheckedAt, err = time.Parse(time.RFC3339Nano, checkedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse checked_at %q: %w", checkedAt, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	return entries, nil
}

// Driver returns the database driver name.
func (s *Store) Driver() string {
	return s.driver
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
