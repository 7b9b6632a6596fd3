package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/palabra-labs/palabra-api/internal/config"
	"github.com/palabra-labs/palabra-api/internal/platform/postgres"
	"github.com/palabra-labs/palabra-api/internal/service"
	"github.com/palabra-labs/palabra-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore     store.UserStore
	progressStore store.ProgressStore

	// Service interfaces
	userService service.UserService
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration, logger, and database connection that
// must be established before application initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize stores
	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.progressStore = postgres.NewPostgresProgressStore(db, logger)

	// Initialize the user service with a transactor bound to the live database
	transactor := store.NewSQLTransactor(db)
	app.userService = service.NewUserService(
		app.userStore,
		app.progressStore,
		transactor,
		logger,
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	// Set up router using the application dependencies
	router := app.setupRouter()

	// Start the HTTP server
	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Close database connection
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
