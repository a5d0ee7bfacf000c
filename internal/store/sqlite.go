// Package store provides storage backends for IntakeFlow.
//
// This file implements an SQLite-backed store for intake sessions.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/BTreeMap/IntakeFlow/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	// A single writer avoids "database is locked" under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		_ = db.Close()
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully", "path", dsn)

	return &SQLiteStore{db: db}, nil
}

// SaveIntakeState inserts or replaces a session.
func (s *SQLiteStore) SaveIntakeState(ctx context.Context, state models.IntakeState) error {
	row, err := toIntakeRow(state)
	if err != nil {
		slog.Error("SQLiteStore SaveIntakeState encode failed", "error", err, "id", state.ID)
		return err
	}
	query := `
		INSERT OR REPLACE INTO intake_sessions (` + intakeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query, row.ID, row.ServiceType, row.Stage, row.CurrentStep,
		row.DataJSON, row.Messages, row.Completion, row.StartedAt, row.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveIntakeState failed", "error", err, "id", state.ID)
		return fmt.Errorf("failed to save intake state %s: %w", state.ID, err)
	}
	slog.Debug("SQLiteStore SaveIntakeState succeeded", "id", state.ID, "stage", state.Stage, "step", state.CurrentStep)
	return nil
}

// GetIntakeState retrieves a session. It returns (nil, nil) when none exists.
func (s *SQLiteStore) GetIntakeState(ctx context.Context, id string) (*models.IntakeState, error) {
	query := `SELECT ` + intakeColumns + ` FROM intake_sessions WHERE id = ?`
	state, err := scanIntakeState(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetIntakeState not found", "id", id)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetIntakeState failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to load intake state %s: %w", id, err)
	}
	return &state, nil
}

// DeleteIntakeState removes a session. Deleting a missing session is not an error.
func (s *SQLiteStore) DeleteIntakeState(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM intake_sessions WHERE id = ?`, id)
	if err != nil {
		slog.Error("SQLiteStore DeleteIntakeState failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete intake state %s: %w", id, err)
	}
	slog.Debug("SQLiteStore DeleteIntakeState succeeded", "id", id)
	return nil
}

// ListIntakeStates returns every session, most recently updated first.
func (s *SQLiteStore) ListIntakeStates(ctx context.Context) ([]models.IntakeState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+intakeColumns+` FROM intake_sessions ORDER BY updated_at DESC, id ASC`)
	if err != nil {
		slog.Error("SQLiteStore ListIntakeStates query failed", "error", err)
		return nil, fmt.Errorf("failed to query intake states: %w", err)
	}
	defer rows.Close()

	states := []models.IntakeState{}
	for rows.Next() {
		state, err := scanIntakeState(rows)
		if err != nil {
			slog.Error("SQLiteStore ListIntakeStates scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan intake state row: %w", err)
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore ListIntakeStates rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate intake state rows: %w", err)
	}
	slog.Debug("SQLiteStore ListIntakeStates succeeded", "count", len(states))
	return states, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
