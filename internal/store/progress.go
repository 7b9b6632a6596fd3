package store

import (
	"context"
	"database/sql"

	"github.com/palabra-labs/palabra-api/internal/domain"
)

// ProgressStore defines the interface for progress data persistence.
// Progress rows are owned by their user: callers only create and delete
// them inside the same transaction that creates or deletes the user.
type ProgressStore interface {
	// Create inserts the progress record for a user.
	// Returns validation errors from the domain Progress if data is invalid.
	Create(ctx context.Context, progress *domain.Progress) error

	// GetByUserID retrieves the progress record owned by the given user.
	// Returns ErrProgressNotFound if it does not exist.
	GetByUserID(ctx context.Context, userID int64) (*domain.Progress, error)

	// Delete removes the progress record owned by the given user.
	// Returns ErrProgressNotFound if no row was deleted.
	Delete(ctx context.Context, userID int64) error

	// DeleteMany removes every progress record owned by a user in userIDs
	// and returns the number of rows deleted. A zero count is not an
	// error: not every user is guaranteed a progress row at delete time.
	DeleteMany(ctx context.Context, userIDs []int64) (int64, error)

	// WithTx returns a new ProgressStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ProgressStore
}
