package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/palabra-labs/palabra-api/internal/domain"
	"github.com/palabra-labs/palabra-api/internal/redact"
	"github.com/palabra-labs/palabra-api/internal/store"
)

// UserService is the account directory: every lifecycle operation on a user
// and its dependent progress record goes through here. Operations that touch
// both entities (CreateUser, DeleteUser, DeleteUsers) run inside a single
// atomic transaction so a partial failure never leaves partial state.
type UserService interface {
	// CreateUser creates a new user together with its initial progress
	// record. The email must be free under case-insensitive comparison;
	// otherwise store.ErrEmailExists is returned. The password is expected
	// to be hashed by the caller already.
	CreateUser(ctx context.Context, name, email, hashedPassword string) (*domain.User, error)

	// ListUsers returns every user with no filtering.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// GetUser retrieves a user by ID, or store.ErrUserNotFound.
	GetUser(ctx context.Context, id int64) (*domain.User, error)

	// AuthorizeUser retrieves a user by exact email match, or
	// store.ErrUserNotFound. Unlike the uniqueness checks, the comparison
	// here is case-sensitive.
	AuthorizeUser(ctx context.Context, email string) (*domain.User, error)

	// UpdateUser applies a partial update. The target must exist and, when
	// the patch carries an email, no other user may hold it under
	// case-insensitive comparison. Returns the updated record.
	UpdateUser(ctx context.Context, id int64, patch store.UserPatch) (*domain.User, error)

	// DeleteUser removes a user and its progress record in one transaction.
	// Returns store.ErrUserNotFound if the user does not exist.
	DeleteUser(ctx context.Context, id int64) error

	// DeleteUsers removes every user in ids and their progress records in
	// one transaction, returning the number of users deleted. If no user
	// matched, the transaction is rolled back and store.ErrUserNotFound is
	// returned with nothing touched.
	DeleteUsers(ctx context.Context, ids []int64) (int64, error)

	// GetProgress retrieves the progress record owned by the given user, or
	// store.ErrProgressNotFound.
	GetProgress(ctx context.Context, userID int64) (*domain.Progress, error)

	// FindCredentials returns the login projection for the given email, or
	// (nil, nil) when no user matches. Absence is not an error here.
	FindCredentials(ctx context.Context, email string) (*store.Credentials, error)

	// ChangePassword overwrites the credential of the user with the given
	// ID. The new password must already be hashed. Every failure, including
	// a missing user, is reported as ErrPasswordChangeFailed; the cause is
	// only logged.
	ChangePassword(ctx context.Context, id int64, hashedPassword string) error

	// UpdatePasswordByEmail overwrites the credential of the user with the
	// given email (exact match) and returns the updated record. There is no
	// existence pre-check; a missing target surfaces as
	// store.ErrUserNotFound from the update itself.
	UpdatePasswordByEmail(ctx context.Context, email, hashedPassword string) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore     store.UserStore
	progressStore store.ProgressStore
	transactor    store.Transactor
	logger        *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	progressStore store.ProgressStore,
	transactor store.Transactor,
	logger *slog.Logger,
) UserService {
	return &UserServiceImpl{
		userStore:     userStore,
		progressStore: progressStore,
		transactor:    transactor,
		logger:        logger.With("component", "user_service"),
	}
}

// CreateUser creates a new user and its progress record.
// The duplicate-email pre-check runs before the transaction so the error
// message stays specific and store-agnostic; the unique-violation mapping in
// the store layer only covers the remaining race window.
func (s *UserServiceImpl) CreateUser(
	ctx context.Context,
	name, email, hashedPassword string,
) (*domain.User, error) {
	duplicate, err := s.userStore.FindByEmailFold(ctx, email, 0)
	if err != nil {
		s.logger.Error("failed to check for duplicate email",
			"error", err,
			"email", email)
		return nil, fmt.Errorf("failed to check for duplicate email: %w", err)
	}
	if duplicate != nil {
		s.logger.Debug("attempted to create user with existing email",
			"email", email)
		return nil, store.ErrEmailExists
	}

	user, err := domain.NewUser(name, email, hashedPassword)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	err = s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.userStore.WithTx(tx)
		txProgress := s.progressStore.WithTx(tx)

		if err := txUsers.Create(ctx, user); err != nil {
			return err
		}

		progress, err := domain.NewProgress(user.ID)
		if err != nil {
			return err
		}

		return txProgress.Create(ctx, progress)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, err
		}
		s.logger.Error("failed to create user",
			"error", err,
			"email", email)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created",
		"user_id", user.ID,
		"email", user.Email)

	return user, nil
}

// ListUsers returns all users.
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userStore.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// GetUser retrieves a user by their ID.
func (s *UserServiceImpl) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			s.logger.Error("failed to retrieve user",
				"error", err,
				"user_id", id)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	return user, nil
}

// AuthorizeUser retrieves a user by exact email match.
func (s *UserServiceImpl) AuthorizeUser(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			s.logger.Error("failed to retrieve user by email",
				"error", err,
				"email", email)
		}
		return nil, fmt.Errorf("failed to retrieve user by email: %w", err)
	}

	return user, nil
}

// UpdateUser applies a partial update to a user.
func (s *UserServiceImpl) UpdateUser(
	ctx context.Context,
	id int64,
	patch store.UserPatch,
) (*domain.User, error) {
	// Target must exist before anything else is checked
	if _, err := s.userStore.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to retrieve user for update: %w", err)
	}

	// No other user may already hold the new email, in any casing
	if patch.Email != nil {
		duplicate, err := s.userStore.FindByEmailFold(ctx, *patch.Email, id)
		if err != nil {
			s.logger.Error("failed to check for duplicate email",
				"error", err,
				"user_id", id)
			return nil, fmt.Errorf("failed to check for duplicate email: %w", err)
		}
		if duplicate != nil {
			s.logger.Debug("attempted to update to an existing email",
				"user_id", id,
				"new_email", *patch.Email)
			return nil, store.ErrEmailExists
		}
	}

	user, err := s.userStore.Update(ctx, id, patch)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) && !errors.Is(err, store.ErrEmailExists) {
			s.logger.Error("failed to update user",
				"error", err,
				"user_id", id)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("user updated", "user_id", id)

	return user, nil
}

// DeleteUser removes a user and its progress record in one transaction.
// The progress row references the user, so it is deleted first; the
// rows-affected check on the user delete still decides existence, and the
// rollback restores the progress row when no user matched. A missing
// progress row is tolerated: the user delete is authoritative.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, id int64) error {
	err := s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.userStore.WithTx(tx)
		txProgress := s.progressStore.WithTx(tx)

		if err := txProgress.Delete(ctx, id); err != nil {
			if !errors.Is(err, store.ErrProgressNotFound) {
				return err
			}
			s.logger.Warn("user had no progress record at delete time",
				"user_id", id)
		}

		return txUsers.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return err
		}
		s.logger.Error("failed to delete user",
			"error", err,
			"user_id", id)
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("user deleted", "user_id", id)

	return nil
}

// DeleteUsers removes users and their progress records in one transaction.
func (s *UserServiceImpl) DeleteUsers(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoIDs
	}

	var deleted int64
	err := s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.userStore.WithTx(tx)
		txProgress := s.progressStore.WithTx(tx)

		// Progress rows reference their users, so they go first. Whichever
		// of the ids had one is removed; the count is not separately
		// reported.
		if _, err := txProgress.DeleteMany(ctx, ids); err != nil {
			return err
		}

		var err error
		deleted, err = txUsers.DeleteMany(ctx, ids)
		if err != nil {
			return err
		}

		// Rolling back here restores the progress rows, so nothing is
		// touched when none of the requested users existed
		if deleted == 0 {
			return store.ErrUserNotFound
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return 0, err
		}
		s.logger.Error("failed to delete users",
			"error", err,
			"requested", len(ids))
		return 0, fmt.Errorf("failed to delete users: %w", err)
	}

	s.logger.Info("users deleted",
		"requested", len(ids),
		"deleted", deleted)

	return deleted, nil
}

// GetProgress retrieves a user's progress record.
func (s *UserServiceImpl) GetProgress(ctx context.Context, userID int64) (*domain.Progress, error) {
	progress, err := s.progressStore.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrProgressNotFound) {
			s.logger.Error("failed to retrieve progress",
				"error", err,
				"user_id", userID)
		}
		return nil, fmt.Errorf("failed to retrieve progress: %w", err)
	}

	return progress, nil
}

// FindCredentials returns the login projection for an email.
func (s *UserServiceImpl) FindCredentials(
	ctx context.Context,
	email string,
) (*store.Credentials, error) {
	creds, err := s.userStore.GetCredentials(ctx, email)
	if err != nil {
		s.logger.Error("failed to retrieve credentials",
			"error", err,
			"email", email)
		return nil, fmt.Errorf("failed to retrieve credentials: %w", err)
	}

	return creds, nil
}

// ChangePassword overwrites a user's credential hash.
// Masking is deliberate here: callers get ErrPasswordChangeFailed no matter
// what went wrong, and the underlying cause goes to the log only. The
// sentinel does not wrap the cause, so a missing user cannot be told apart
// from a store failure through errors.Is.
func (s *UserServiceImpl) ChangePassword(ctx context.Context, id int64, hashedPassword string) error {
	err := s.changePassword(ctx, id, hashedPassword)
	if err != nil {
		s.logger.Error("failed to change password",
			"error", redact.Error(err),
			"user_id", id)
		return ErrPasswordChangeFailed
	}

	s.logger.Info("password changed", "user_id", id)

	return nil
}

func (s *UserServiceImpl) changePassword(ctx context.Context, id int64, hashedPassword string) error {
	if _, err := s.userStore.GetByID(ctx, id); err != nil {
		return fmt.Errorf("failed to retrieve user for password change: %w", err)
	}

	return s.userStore.UpdatePassword(ctx, id, hashedPassword)
}

// UpdatePasswordByEmail overwrites a user's credential hash by email.
func (s *UserServiceImpl) UpdatePasswordByEmail(
	ctx context.Context,
	email, hashedPassword string,
) (*domain.User, error) {
	user, err := s.userStore.UpdatePasswordByEmail(ctx, email, hashedPassword)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			s.logger.Error("failed to update password by email",
				"error", redact.Error(err),
				"email", email)
		}
		return nil, fmt.Errorf("failed to update password by email: %w", err)
	}

	s.logger.Info("password updated", "user_id", user.ID)

	return user, nil
}
