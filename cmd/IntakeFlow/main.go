// Command IntakeFlow serves the creative intake engine over HTTP and offers
// tooling to inspect the built-in service flows.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BTreeMap/IntakeFlow/internal/api"
	"github.com/BTreeMap/IntakeFlow/internal/flow"
	"github.com/BTreeMap/IntakeFlow/internal/scheduler"
	"github.com/BTreeMap/IntakeFlow/internal/util"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for IntakeFlow state data
	DefaultStateDir = "/var/lib/intakeflow"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "intakeflow.db"
	// DefaultLogLevel is used when neither flag nor environment sets one
	DefaultLogLevel = "info"
)

func main() {
	envErr := godotenv.Load()
	config := loadEnvironmentConfig()

	root := newRootCmd(&config)
	setup := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := setup(cmd, args); err != nil {
			return err
		}
		if envErr != nil {
			slog.Debug("failed to load .env file", "error", envErr)
		}
		return nil
	}

	if err := root.Execute(); err != nil {
		slog.Error("IntakeFlow failed", "error", err)
		os.Exit(1)
	}
}

// Config holds environment configuration, later overridden by flags.
type Config struct {
	StateDir        string
	DatabaseURL     string
	MemoryStore     bool
	APIAddr         string
	Overrides       string
	SessionTTL      time.Duration
	PurgeSchedule   string
	ShutdownTimeout time.Duration
	LogLevel        string
}

// loadEnvironmentConfig reads INTAKEFLOW_* variables and DATABASE_URL.
func loadEnvironmentConfig() Config {
	return Config{
		StateDir:        util.GetenvDefault("INTAKEFLOW_STATE_DIR", DefaultStateDir),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		MemoryStore:     util.ParseBoolEnv("INTAKEFLOW_MEMORY_STORE", false),
		APIAddr:         util.GetenvDefault("INTAKEFLOW_API_ADDR", util.GetenvDefault("API_ADDR", api.DefaultAddr)),
		Overrides:       os.Getenv("INTAKEFLOW_OVERRIDES"),
		SessionTTL:      util.ParseDurationEnv("INTAKEFLOW_SESSION_TTL", 0),
		PurgeSchedule:   util.GetenvDefault("INTAKEFLOW_PURGE_SCHEDULE", scheduler.DefaultPurgeSchedule),
		ShutdownTimeout: util.ParseDurationEnv("INTAKEFLOW_SHUTDOWN_TIMEOUT", api.DefaultShutdownTimeout),
		LogLevel:        util.GetenvDefault("INTAKEFLOW_LOG_LEVEL", DefaultLogLevel),
	}
}

func logConfig(config Config) {
	slog.Debug("configuration loaded",
		"state_dir", config.StateDir,
		"database_url_set", config.DatabaseURL != "",
		"memory_store", config.MemoryStore,
		"api_addr", config.APIAddr,
		"overrides", config.Overrides,
		"session_ttl", config.SessionTTL,
		"log_level", config.LogLevel)
}

// initializeLogger installs a text handler on stdout at the named level.
func initializeLogger(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return nil
}

// newRootCmd builds the command tree. Flags default to the environment values in config.
func newRootCmd(config *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "intakeflow",
		Short:         "Guided creative intake engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initializeLogger(config.LogLevel); err != nil {
				return err
			}
			logConfig(*config)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level: debug, info, warn or error (overrides $INTAKEFLOW_LOG_LEVEL)")
	pf.StringVar(&config.Overrides, "overrides", config.Overrides, "YAML file overriding catalog entries and default tables (overrides $INTAKEFLOW_OVERRIDES)")

	root.AddCommand(
		newServeCmd(config),
		newFlowsCmd(config),
	)
	return root
}

// buildEngine creates the flow engine, layering overrides from path when set.
func buildEngine(overridesPath string) (*flow.Engine, error) {
	reg, err := flow.DefaultRegistry()
	if err != nil {
		return nil, err
	}
	var opts []flow.Option
	if overridesPath != "" {
		o, err := flow.LoadOverridesFile(overridesPath)
		if err != nil {
			return nil, err
		}
		opts = o.Options()
		slog.Info("loaded flow overrides", "path", overridesPath)
	}
	return flow.NewEngine(reg, opts...), nil
}

// resolveDSN picks the session store DSN: an explicit URL wins, then the in-memory
// switch, then a SQLite file in the state directory.
func resolveDSN(config Config) string {
	switch {
	case config.DatabaseURL != "":
		return config.DatabaseURL
	case config.MemoryStore:
		return ""
	default:
		return filepath.Join(config.StateDir, DefaultDBFileName)
	}
}
