package store

import (
	"context"
	"database/sql"

	"github.com/palabra-labs/palabra-api/internal/domain"
)

// Credentials is the projection of a user returned by GetCredentials.
// It carries only the fields needed for login verification.
type Credentials struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	HashedPassword string `json:"-"`
}

// UserPatch describes a partial update to a user. Nil fields are left
// untouched; non-nil fields replace the stored value. Presence tracking is
// explicit so that "absent" and "empty" cannot be confused across
// serialization formats.
type UserPatch struct {
	Name           *string
	Email          *string
	HashedPassword *string
}

// IsEmpty reports whether the patch carries no fields at all.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.HashedPassword == nil
}

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create inserts a new user and assigns its store-generated ID and
	// timestamps to the given entity.
	// Returns validation errors from the domain User if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetAll returns every user record with no filtering.
	GetAll(ctx context.Context) ([]domain.User, error)

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by exact email match.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindByEmailFold looks up a user whose email matches the given one
	// case-insensitively, skipping the user with excludeID when excludeID
	// is non-zero. Returns (nil, nil) when no such user exists: absence is
	// an expected answer for the uniqueness pre-checks, not an error.
	FindByEmailFold(ctx context.Context, email string, excludeID int64) (*domain.User, error)

	// Update applies the non-nil fields of the patch to the user with the
	// given ID and returns the updated record.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, id int64, patch UserPatch) (*domain.User, error)

	// Delete removes a user from the store by their ID.
	// Returns ErrUserNotFound if no row was deleted.
	Delete(ctx context.Context, id int64) error

	// DeleteMany removes every user whose ID is in ids and returns the
	// number of rows deleted. Duplicate and non-existent IDs are allowed;
	// a zero count is reported as 0, nil, not as an error.
	DeleteMany(ctx context.Context, ids []int64) (int64, error)

	// GetCredentials returns the login projection for the user with the
	// given email (exact match), or (nil, nil) when no user matches.
	GetCredentials(ctx context.Context, email string) (*Credentials, error)

	// UpdatePassword overwrites the stored credential hash for the user
	// with the given ID. Returns ErrUserNotFound if no row was updated.
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error

	// UpdatePasswordByEmail overwrites the stored credential hash for the
	// user with the given email (exact match) and returns the updated
	// record. Returns ErrUserNotFound if no row was updated.
	UpdatePasswordByEmail(ctx context.Context, email, hashedPassword string) (*domain.User, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) UserStore
}
