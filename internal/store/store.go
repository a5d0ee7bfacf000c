// Package store provides storage backends for IntakeFlow sessions.
//
// It includes an in-memory store and persistent stores backed by SQLite,
// PostgreSQL and Redis. The backend is chosen from the DSN.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BTreeMap/IntakeFlow/internal/models"
)

// Driver names returned by DetectDSNType.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Store persists intake sessions.
// GetIntakeState returns (nil, nil) when no session exists for id.
type Store interface {
	SaveIntakeState(ctx context.Context, state models.IntakeState) error
	GetIntakeState(ctx context.Context, id string) (*models.IntakeState, error)
	DeleteIntakeState(ctx context.Context, id string) error
	// ListIntakeStates returns every stored session, most recently updated first.
	ListIntakeStates(ctx context.Context) ([]models.IntakeState, error)
	Close() error
}

// Opts holds configuration shared by the store constructors.
type Opts struct {
	DSN       string
	TTL       time.Duration // Redis only; zero keeps sessions forever
	KeyPrefix string        // Redis only
}

// Option configures a store.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithRedisURL sets the redis:// connection URL.
func WithRedisURL(url string) Option {
	return func(o *Opts) { o.DSN = url }
}

// WithTTL sets how long an idle session is kept by stores that support expiry.
func WithTTL(ttl time.Duration) Option {
	return func(o *Opts) { o.TTL = ttl }
}

// WithKeyPrefix sets the key namespace used by the Redis store.
func WithKeyPrefix(prefix string) Option {
	return func(o *Opts) { o.KeyPrefix = prefix }
}

// DetectDSNType determines the backend for a DSN.
// PostgreSQL DSNs start with postgres:// or postgresql://, or contain host=.
// Redis DSNs start with redis:// or rediss://. An empty DSN selects the
// in-memory store; anything else is treated as a SQLite file path.
func DetectDSNType(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return DriverMemory
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"), strings.Contains(dsn, "host="):
		return DriverPostgres
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		return DriverRedis
	default:
		return DriverSQLite
	}
}

// Open creates the store selected by DetectDSNType(dsn).
func Open(ctx context.Context, dsn string, opts ...Option) (Store, error) {
	driver := DetectDSNType(dsn)
	slog.Debug("store.Open: selecting backend", "driver", driver, "dsn_set", dsn != "")
	switch driver {
	case DriverMemory:
		return NewInMemoryStore(), nil
	case DriverPostgres:
		return NewPostgresStore(append(opts, WithPostgresDSN(dsn))...)
	case DriverRedis:
		return NewRedisStore(ctx, append(opts, WithRedisURL(dsn))...)
	case DriverSQLite:
		return NewSQLiteStore(append(opts, WithSQLiteDSN(dsn))...)
	}
	return nil, fmt.Errorf("unsupported store driver %q", driver)
}
