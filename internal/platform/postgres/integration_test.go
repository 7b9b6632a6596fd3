package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palabra-labs/palabra-api/internal/domain"
	"github.com/palabra-labs/palabra-api/internal/service"
	"github.com/palabra-labs/palabra-api/internal/store"
	"github.com/palabra-labs/palabra-api/migrations"
)

// isIntegrationTestEnvironment returns true if the environment is configured
// for running integration tests with a database connection
func isIntegrationTestEnvironment() bool {
	return os.Getenv("DATABASE_URL") != ""
}

// getTestDatabaseURL returns the database URL for integration tests
func getTestDatabaseURL(t *testing.T) string {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL environment variable is required for this test")
	}
	return dbURL
}

// openIntegrationDB opens a connection to the test database and applies the
// schema migrations.
func openIntegrationDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", getTestDatabaseURL(t))
	require.NoError(t, err, "Failed to open database connection")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Error closing database connection: %v", err)
		}
	})

	goose.SetBaseFS(migrations.FS)
	require.NoError(t, goose.SetDialect("postgres"), "Failed to set goose dialect")
	require.NoError(t, goose.Up(db, "."), "Failed to apply migrations")

	return db
}

// uniqueEmail returns an email address that cannot collide with rows left
// behind by other test runs.
func uniqueEmail() string {
	return "it-" + uuid.New().String() + "@example.com"
}

// Integration tests for the postgres-backed stores and the transactional
// user+progress lifecycle. These run against the real schema, so they cover
// what the mock-backed unit tests cannot: the foreign key from progress to
// users and the delete ordering it imposes.
func TestUserLifecycle_Integration(t *testing.T) {
	if !isIntegrationTestEnvironment() {
		t.Skip("Skipping integration test - DATABASE_URL environment variable required")
	}

	db := openIntegrationDB(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	userStore := NewPostgresUserStore(db, logger)
	progressStore := NewPostgresProgressStore(db, logger)
	svc := service.NewUserService(userStore, progressStore, store.NewSQLTransactor(db), logger)

	email := uniqueEmail()

	user, err := svc.CreateUser(ctx, "Integration", email, "hashed_pw")
	require.NoError(t, err, "Failed to create user")
	require.Positive(t, user.ID)
	t.Cleanup(func() {
		// Best-effort cleanup in case an assertion failed before the
		// delete steps ran
		_ = svc.DeleteUser(context.Background(), user.ID)
	})

	t.Run("progress row is created with defaults", func(t *testing.T) {
		progress, err := svc.GetProgress(ctx, user.ID)
		require.NoError(t, err, "Failed to load progress")
		assert.Equal(t, user.ID, progress.UserID)
		assert.Empty(t, progress.CategoriesProgress)
		assert.Empty(t, progress.WordsProgress)
		assert.Zero(t, progress.Completion)
		assert.Equal(t, domain.DefaultLevelID, progress.LevelID)
	})

	t.Run("duplicate email collides across casing", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, "Other", strings.ToUpper(email), "hashed_pw")
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrEmailExists))
	})

	t.Run("delete removes user and progress despite the foreign key", func(t *testing.T) {
		require.NoError(t, svc.DeleteUser(ctx, user.ID), "Failed to delete user")

		_, err := svc.GetUser(ctx, user.ID)
		assert.True(t, errors.Is(err, store.ErrUserNotFound))

		_, err = svc.GetProgress(ctx, user.ID)
		assert.True(t, errors.Is(err, store.ErrProgressNotFound))
	})

	t.Run("bulk delete removes both row sets and reports the count", func(t *testing.T) {
		first, err := svc.CreateUser(ctx, "First", uniqueEmail(), "hashed_pw")
		require.NoError(t, err)
		second, err := svc.CreateUser(ctx, "Second", uniqueEmail(), "hashed_pw")
		require.NoError(t, err)

		deleted, err := svc.DeleteUsers(ctx, []int64{first.ID, second.ID, 1 << 60})
		require.NoError(t, err, "Failed to bulk delete users")
		assert.Equal(t, int64(2), deleted)

		for _, id := range []int64{first.ID, second.ID} {
			_, err := svc.GetUser(ctx, id)
			assert.True(t, errors.Is(err, store.ErrUserNotFound))
			_, err = svc.GetProgress(ctx, id)
			assert.True(t, errors.Is(err, store.ErrProgressNotFound))
		}
	})

	t.Run("bulk delete with no match touches nothing", func(t *testing.T) {
		survivor, err := svc.CreateUser(ctx, "Survivor", uniqueEmail(), "hashed_pw")
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = svc.DeleteUser(context.Background(), survivor.ID)
		})

		_, err = svc.DeleteUsers(ctx, []int64{1 << 60, 1<<60 + 1})
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrUserNotFound))

		_, err = svc.GetProgress(ctx, survivor.ID)
		assert.NoError(t, err, "unrelated progress rows must survive a failed bulk delete")
	})
}
