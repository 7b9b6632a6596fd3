package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/palabra-labs/palabra-api/internal/domain"
	"github.com/palabra-labs/palabra-api/internal/store"
)

// PostgresProgressStore implements the store.ProgressStore interface
// using a PostgreSQL database as the storage backend. The category and
// word maps are stored as JSONB columns.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the ProgressStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// Create implements store.ProgressStore.Create
func (s *PostgresProgressStore) Create(ctx context.Context, progress *domain.Progress) error {
	if err := progress.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	categories, err := json.Marshal(progress.CategoriesProgress)
	if err != nil {
		return fmt.Errorf("failed to marshal categories progress: %w", err)
	}

	words, err := json.Marshal(progress.WordsProgress)
	if err != nil {
		return fmt.Errorf("failed to marshal words progress: %w", err)
	}

	query := `
		INSERT INTO progress (user_id, categories_progress, words_progress, completion, level_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = s.db.ExecContext(ctx, query,
		progress.UserID,
		categories,
		words,
		progress.Completion,
		progress.LevelID,
		progress.CreatedAt,
		progress.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert progress: %w", err)
	}

	return nil
}

// GetByUserID implements store.ProgressStore.GetByUserID
func (s *PostgresProgressStore) GetByUserID(ctx context.Context, userID int64) (*domain.Progress, error) {
	query := `
		SELECT user_id, categories_progress, words_progress, completion, level_id, created_at, updated_at
		FROM progress
		WHERE user_id = $1
	`

	var progress domain.Progress
	var categories, words []byte

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&progress.UserID,
		&categories,
		&words,
		&progress.Completion,
		&progress.LevelID,
		&progress.CreatedAt,
		&progress.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		return nil, fmt.Errorf("failed to scan progress row: %w", err)
	}

	if err := json.Unmarshal(categories, &progress.CategoriesProgress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories progress: %w", err)
	}
	if err := json.Unmarshal(words, &progress.WordsProgress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal words progress: %w", err)
	}

	return &progress, nil
}

// Delete implements store.ProgressStore.Delete
func (s *PostgresProgressStore) Delete(ctx context.Context, userID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM progress WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete progress: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return store.ErrProgressNotFound
	}

	return nil
}

// DeleteMany implements store.ProgressStore.DeleteMany
func (s *PostgresProgressStore) DeleteMany(ctx context.Context, userIDs []int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM progress WHERE user_id = ANY($1)`, userIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete progress records: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// WithTx implements store.ProgressStore.WithTx
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{
		db:     tx,
		logger: s.logger,
	}
}
