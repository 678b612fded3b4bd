// Package cli holds the initialization steps shared by the server, the
// worker and the admin tool.
package cli

import (
	"database/sql"
	"os"

	"github.com/joho/godotenv"

	"github.com/parliyanto/Cash-Tracker/internal/config"
	"github.com/parliyanto/Cash-Tracker/internal/log"
	"github.com/parliyanto/Cash-Tracker/internal/storage"
)

// SetupLogger initializes structured logging for the given component and
// installs it as the process default.
func SetupLogger(component string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Component = component
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Errors are ignored
// because the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration or exits on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenDatabase opens the SQLite database (running migrations) or exits.
func OpenDatabase(logger *log.Logger, dbPath string) *sql.DB {
	db, err := storage.Open(dbPath)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return db
}
