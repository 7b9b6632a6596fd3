// Package main implements the entry point for the Palabra API server,
// which manages user accounts and their per-user learning progress.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/palabra-labs/palabra-api/internal/config"
	"github.com/palabra-labs/palabra-api/internal/platform/logger"
)

// main initializes configuration, logging, the database connection and the
// application dependency graph, then starts the HTTP server.
func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

// run wires the application together and blocks until shutdown. Split out of
// main so failures propagate as errors rather than os.Exit calls.
func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Set up structured logging using the configured log level
	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	// Establish the database connection
	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	// Apply pending migrations before serving traffic
	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Build the application dependency graph
	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	// Run the server until a shutdown signal arrives
	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("application error: %w", err)
	}

	return nil
}
