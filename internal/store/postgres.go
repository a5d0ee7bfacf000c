// Package store provides storage backends for IntakeFlow.
//
// This file implements a PostgreSQL-backed store for intake sessions.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/BTreeMap/IntakeFlow/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

// SaveIntakeState upserts a session.
func (s *PostgresStore) SaveIntakeState(ctx context.Context, state models.IntakeState) error {
	row, err := toIntakeRow(state)
	if err != nil {
		slog.Error("PostgresStore SaveIntakeState encode failed", "error", err, "id", state.ID)
		return err
	}
	query := `
		INSERT INTO intake_sessions (` + intakeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			service_type = EXCLUDED.service_type,
			stage = EXCLUDED.stage,
			current_step = EXCLUDED.current_step,
			data_json = EXCLUDED.data_json,
			messages_json = EXCLUDED.messages_json,
			completion_percentage = EXCLUDED.completion_percentage,
			updated_at = EXCLUDED.updated_at`
	_, err = s.db.ExecContext(ctx, query, row.ID, row.ServiceType, row.Stage, row.CurrentStep,
		row.DataJSON, row.Messages, row.Completion, row.StartedAt, row.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore SaveIntakeState failed", "error", err, "id", state.ID)
		return fmt.Errorf("failed to save intake state %s: %w", state.ID, err)
	}
	slog.Debug("PostgresStore SaveIntakeState succeeded", "id", state.ID, "stage", state.Stage, "step", state.CurrentStep)
	return nil
}

// GetIntakeState retrieves a session. It returns (nil, nil) when none exists.
func (s *PostgresStore) GetIntakeState(ctx context.Context, id string) (*models.IntakeState, error) {
	query := `SELECT ` + intakeColumns + ` FROM intake_sessions WHERE id = $1`
	state, err := scanIntakeState(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetIntakeState not found", "id", id)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetIntakeState failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to load intake state %s: %w", id, err)
	}
	return &state, nil
}

// DeleteIntakeState removes a session.
func (s *PostgresStore) DeleteIntakeState(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM intake_sessions WHERE id = $1`, id); err != nil {
		slog.Error("PostgresStore DeleteIntakeState failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete intake state %s: %w", id, err)
	}
	slog.Debug("PostgresStore DeleteIntakeState succeeded", "id", id)
	return nil
}

// ListIntakeStates returns every session, most recently updated first.
func (s *PostgresStore) ListIntakeStates(ctx context.Context) ([]models.IntakeState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+intakeColumns+` FROM intake_sessions ORDER BY updated_at DESC, id ASC`)
	if err != nil {
		slog.Error("PostgresStore ListIntakeStates query failed", "error", err)
		return nil, fmt.Errorf("failed to query intake states: %w", err)
	}
	defer rows.Close()

	states := []models.IntakeState{}
	for rows.Next() {
		state, err := scanIntakeState(rows)
		if err != nil {
			slog.Error("PostgresStore ListIntakeStates scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan intake state row: %w", err)
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore ListIntakeStates rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate intake state rows: %w", err)
	}
	slog.Debug("PostgresStore ListIntakeStates succeeded", "count", len(states))
	return states, nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
