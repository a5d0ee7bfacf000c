package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/BTreeMap/IntakeFlow/internal/api"
	"github.com/BTreeMap/IntakeFlow/internal/lockfile"
	"github.com/BTreeMap/IntakeFlow/internal/scheduler"
	"github.com/BTreeMap/IntakeFlow/internal/session"
	"github.com/BTreeMap/IntakeFlow/internal/store"
	"github.com/spf13/cobra"
)

func newServeCmd(config *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the intake HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, *config)
		},
	}

	f := cmd.Flags()
	f.StringVar(&config.StateDir, "state-dir", config.StateDir, "state directory for IntakeFlow data (overrides $INTAKEFLOW_STATE_DIR)")
	f.StringVar(&config.DatabaseURL, "db-dsn", config.DatabaseURL, "session store DSN: postgres://, redis:// or a SQLite path (overrides $DATABASE_URL)")
	f.BoolVar(&config.MemoryStore, "memory", config.MemoryStore, "keep sessions in memory only (overrides $INTAKEFLOW_MEMORY_STORE)")
	f.StringVar(&config.APIAddr, "api-addr", config.APIAddr, "API server address (overrides $INTAKEFLOW_API_ADDR)")
	f.DurationVar(&config.SessionTTL, "session-ttl", config.SessionTTL, "idle session expiry for stores that support it (overrides $INTAKEFLOW_SESSION_TTL)")
	f.StringVar(&config.PurgeSchedule, "purge-schedule", config.PurgeSchedule, "cron schedule for purging idle sessions when --session-ttl is set (overrides $INTAKEFLOW_PURGE_SCHEDULE)")
	f.DurationVar(&config.ShutdownTimeout, "shutdown-timeout", config.ShutdownTimeout, "graceful shutdown timeout (overrides $INTAKEFLOW_SHUTDOWN_TIMEOUT)")
	return cmd
}

// runServe wires the engine, store and API server and blocks until ctx is done.
func runServe(ctx context.Context, config Config) error {
	engine, err := buildEngine(config.Overrides)
	if err != nil {
		return fmt.Errorf("failed to build flow engine: %w", err)
	}

	dsn := resolveDSN(config)
	driver := store.DetectDSNType(dsn)

	// File-backed stores get an exclusive lock on the state directory.
	if driver == store.DriverSQLite {
		if err := ensureDirectoriesExist(dsn); err != nil {
			return err
		}
		lock, err := lockfile.Acquire(config.StateDir, lockfile.Owner{
			Addr:      config.APIAddr,
			Store:     driver,
			StartedAt: time.Now(),
		})
		if err != nil {
			return err
		}
		defer lock.Release()
	}

	st, err := store.Open(ctx, dsn, buildStoreOptions(config)...)
	if err != nil {
		return fmt.Errorf("failed to open %s session store: %w", driver, err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("failed to close session store", "error", err)
		}
	}()

	sessions := session.NewService(engine, st)

	// Redis expires sessions itself; other stores are swept on a schedule.
	if config.SessionTTL > 0 && driver != store.DriverRedis {
		sched := scheduler.NewScheduler()
		defer sched.Stop()
		err := sched.AddJob("purge-idle-sessions", config.PurgeSchedule, func(ctx context.Context) error {
			_, err := sessions.PurgeIdle(ctx, config.SessionTTL)
			return err
		})
		if err != nil {
			return err
		}
	}

	server := api.NewServer(sessions, buildAPIOptions(config)...)

	slog.Info("Bootstrapping IntakeFlow", "store", driver, "api_addr", server.Addr())
	if err := server.Run(ctx); err != nil {
		return err
	}
	slog.Info("IntakeFlow exited successfully")
	return nil
}

// ensureDirectoriesExist creates the parent directory of a SQLite database file.
func ensureDirectoriesExist(dsn string) error {
	dir := filepath.Dir(dsn)
	slog.Debug("Creating directory for file-based database", "dir", dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return err
	}
	return nil
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(config Config) []store.Option {
	var opts []store.Option
	if config.SessionTTL > 0 {
		opts = append(opts, store.WithTTL(config.SessionTTL))
	}
	return opts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(config Config) []api.Option {
	var opts []api.Option
	if config.APIAddr != "" {
		opts = append(opts, api.WithAddr(config.APIAddr))
	}
	if config.ShutdownTimeout > 0 {
		opts = append(opts, api.WithShutdownTimeout(config.ShutdownTimeout))
	}
	return opts
}
