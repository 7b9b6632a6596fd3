package service_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palabra-labs/palabra-api/internal/domain"
	"github.com/palabra-labs/palabra-api/internal/mocks"
	"github.com/palabra-labs/palabra-api/internal/service"
	"github.com/palabra-labs/palabra-api/internal/store"
)

// newTestService wires a UserService against fresh mocks.
func newTestService() (service.UserService, *mocks.MockUserStore, *mocks.MockProgressStore, *mocks.Transactor) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	userStore := mocks.NewMockUserStore()
	progressStore := mocks.NewMockProgressStore()
	transactor := &mocks.Transactor{}
	svc := service.NewUserService(userStore, progressStore, transactor, logger)
	return svc, userStore, progressStore, transactor
}

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("successful creation includes initial progress", func(t *testing.T) {
		svc, userStore, progressStore, transactor := newTestService()

		user, err := svc.CreateUser(ctx, "Ana", "ana@example.com", "hashed_pw")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Positive(t, user.ID)
		assert.Equal(t, "ana@example.com", user.Email)
		assert.Equal(t, 1, transactor.Calls)

		// The dependent progress record starts empty at level 1
		progress, exists := progressStore.Records[user.ID]
		require.True(t, exists, "progress record should be created with the user")
		assert.Equal(t, user.ID, progress.UserID)
		assert.Empty(t, progress.CategoriesProgress)
		assert.Empty(t, progress.WordsProgress)
		assert.Zero(t, progress.Completion)
		assert.Equal(t, domain.DefaultLevelID, progress.LevelID)

		_, exists = userStore.Users[user.ID]
		assert.True(t, exists)
	})

	t.Run("duplicate email is rejected case-insensitively", func(t *testing.T) {
		svc, userStore, _, transactor := newTestService()
		userStore.Seed("Ana", "Ana@Example.com", "hashed_pw")

		user, err := svc.CreateUser(ctx, "Other", "ana@example.com", "hashed_pw")
		require.Error(t, err)
		assert.Nil(t, user)
		assert.True(t, errors.Is(err, store.ErrEmailExists))
		assert.Equal(t, 0, transactor.Calls, "no transaction should start after the pre-check fails")
	})

	t.Run("invalid profile data is rejected before any write", func(t *testing.T) {
		svc, userStore, _, transactor := newTestService()

		user, err := svc.CreateUser(ctx, "", "ana@example.com", "hashed_pw")
		require.Error(t, err)
		assert.Nil(t, user)
		assert.True(t, errors.Is(err, store.ErrInvalidEntity))
		assert.Empty(t, userStore.Users)
		assert.Equal(t, 0, transactor.Calls)
	})

	t.Run("progress insert failure rolls back the user", func(t *testing.T) {
		svc, _, progressStore, _ := newTestService()

		// The mock transactor runs fn inline, so a failing progress insert
		// surfaces as the transaction error and nothing must be visible.
		progressStore.CreateFn = func(ctx context.Context, p *domain.Progress) error {
			return errors.New("insert failed")
		}

		user, err := svc.CreateUser(ctx, "Ana", "ana@example.com", "hashed_pw")
		require.Error(t, err)
		assert.Nil(t, user)
		assert.False(t, errors.Is(err, store.ErrEmailExists))
	})
}

func TestUserService_GetUser(t *testing.T) {
	ctx := context.Background()

	t.Run("existing user", func(t *testing.T) {
		svc, userStore, _, _ := newTestService()
		seeded := userStore.Seed("Ana", "ana@example.com", "hashed_pw")

		user, err := svc.GetUser(ctx, seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, user.ID)
		assert.Equal(t, seeded.Email, user.Email)
	})

	t.Run("missing user", func(t *testing.T) {
		svc, _, _, _ := newTestService()

		user, err := svc.GetUser(ctx, 42)
		require.Error(t, err)
		assert.Nil(t, user)
		assert.True(t, errors.Is(err, store.ErrUserNotFound))
	})
}

func TestUserService_AuthorizeUser(t *testing.T) {
	ctx := context.Background()

	t.Run("exact email match", func(t *testing.T) {
		svc, userStore, _, _ := newTestService()
		seeded := userStore.Seed("Ana", "ana@example.com", "hashed_pw")

		user, err := svc.AuthorizeUser(ctx, "ana@example.com")
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, user.ID)
	})

	t.Run("lookup is case-sensitive", func(t *testing.T) {
		svc, userStore, _, _ := newTestService()
		userStore.Seed("Ana", "ana@example.com", "hashed_pw")

		user, err := svc.AuthorizeUser(ctx, "ANA@EXAMPLE.COM")
		require.Error(t, err)
		assert.Nil(t, user)
		assert.True(t, errors.Is(err, store.ErrUserNotFound))
	})
}

func TestUserService_ListUsers(t *testing.T) {
	ctx := context.Background()
	svc, userStore, _, _ := newTestService()

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	userStore.Seed("Ana", "ana@example.com", "pw1")
	userStore.Seed("Ben", "ben@example.com", "pw2")

	users, err = svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserService_UpdateUser(t *testing.T) {
	ctx := context.Background()

	strPtr := func(s string) *string { return &s }

	t.Run("partial update only touches present fields", func(t *testing.T) {
		svc, userStore, _, _ := newTestService()
		seeded := userStore.Seed("Ana", "ana@example.com", "hashed_pw")

		updated, err := svc.UpdateUser(ctx, seeded.ID, store.UserPatch{Name: strPtr("Ana Maria")})
		require.NoError(t, err)
		assert.Equal(t, "Ana Maria", updated.Name)
		assert.Equal(t, "ana@example.com", updated.Email, "absent fields stay untouched")
		assert.Equal(t, "hashed_pw", updated.HashedPassword)
	})

	t.Run("missing target", func(t *testing.T) {
		svc, _, _, _ := newTestService()

		updated, err := svc.UpdateUser(ctx, 42, store.UserPatch{Name: strPtr("Nobody")})
		require.Error(t, err)
		assert.Nil(t, updated)
		assert.True(t, errors.Is(err, store.ErrUserNotFound))
	})

	t.Run("email held by another user is rejected in any casing", func(t *testing.T) {
		svc, userStore, _, _ := newTestService()
		userStore.Seed("Ana", "ana@example.com", "pw1")
		target := userStore.Seed("Ben", "ben@example.com", "pw2")

		updated, err := svc.UpdateUser(ctx, target.ID, store.UserPatch{Email: strPtr("ANA@example.com")})
		require.Error(t, err)
		assert.Nil(t, updated)
		assert.True(t, errors.Is(err, store.ErrEmailExists))
	})

	t.Run("re-submitting own email in different casing is allowed", func(t *testing.T) {
		svc, userStore, _, _ := newTestService()
		seeded := userStore.Seed("Ana", "ana@example.com", "hashed_pw")

		updated, err := svc.UpdateUser(ctx, seeded.ID, store.UserPatch{Email: strPtr("Ana@Example.com")})
		require.NoError(t, err)
		assert.Equal(t, "Ana@Example.com", updated.Email)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("removes user and progress in one transaction", func(t *testing.T) {
		svc, userStore, progressStore, transactor := newTestService()
		seeded := userStore.Seed("Ana", "ana@example.com", "hashed_pw")
		progress, err := domain.NewProgress(seeded.ID)
		require.NoError(t, err)
		progressStore.Records[seeded.ID] = progress

		err = svc.DeleteUser(ctx, seeded.ID)
		require.NoError(t, err)
		assert.Empty(t, userStore.Users)
		assert.Empty(t, progressStore.Records)
		assert.Equal(t, 1, transactor.Calls)
	})

	t.Run("missing user", func(t *testing.T) {
		svc, _, _, _ := newTestService()

		err := svc.DeleteUser(ctx, 42)
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrUserNotFound))
	})

	t.Run("missing progress record is tolerated", func(t *testing.T) {
		svc, userStore, _, _ := newTestService()
		seeded := userStore.Seed("Ana", "ana@example.com", "hashed_pw")

		err := svc.DeleteUser(ctx, seeded.ID)
		require.NoError(t, err)
		assert.Empty(t, userStore.Users)
	})

	t.Run("progress row is deleted before the user row", func(t *testing.T) {
		// The progress row holds a foreign key to the user, so the user
		// delete would be rejected by the database while the progress row
		// still references it.
		svc, userStore, progressStore, _ := newTestService()
		seeded := userStore.Seed("Ana", "ana@example.com", "hashed_pw")
		progress, err := domain.NewProgress(seeded.ID)
		require.NoError(t, err)
		progressStore.Records[seeded.ID] = progress

		var order []string
		userStore.DeleteFn = func(ctx context.Context, id int64) error {
			order = append(order, "users")
			delete(userStore.Users, id)
			return nil
		}
		progressStore.DeleteFn = func(ctx context.Context, userID int64) error {
			order = append(order, "progress")
			delete(progressStore.Records, userID)
			return nil
		}

		require.NoError(t, svc.DeleteUser(ctx, seeded.ID))
		assert.Equal(t, []string{"progress", "users"}, order)
	})
}

func TestUserService_DeleteUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("empty id list", func(t *testing.T) {
		svc, _, _, transactor := newTestService()

		deleted, err := svc.DeleteUsers(ctx, nil)
		require.Error(t, err)
		assert.Zero(t, deleted)
		assert.True(t, errors.Is(err, service.ErrNoIDs))
		assert.Equal(t, 0, transactor.Calls)
	})

	t.Run("no matching user rolls back with not found", func(t *testing.T) {
		svc, _, _, _ := newTestService()

		deleted, err := svc.DeleteUsers(ctx, []int64{7, 8, 9})
		require.Error(t, err)
		assert.Zero(t, deleted)
		assert.True(t, errors.Is(err, store.ErrUserNotFound))
	})

	t.Run("partial match deletes what exists and reports the count", func(t *testing.T) {
		svc, userStore, progressStore, _ := newTestService()
		first := userStore.Seed("Ana", "ana@example.com", "pw1")
		second := userStore.Seed("Ben", "ben@example.com", "pw2")
		for _, id := range []int64{first.ID, second.ID} {
			progress, err := domain.NewProgress(id)
			require.NoError(t, err)
			progressStore.Records[id] = progress
		}

		deleted, err := svc.DeleteUsers(ctx, []int64{first.ID, second.ID, 999})
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)
		assert.Empty(t, userStore.Users)
		assert.Empty(t, progressStore.Records)
	})

	t.Run("progress rows are deleted before the user rows", func(t *testing.T) {
		svc, userStore, progressStore, _ := newTestService()
		seeded := userStore.Seed("Ana", "ana@example.com", "hashed_pw")
		progress, err := domain.NewProgress(seeded.ID)
		require.NoError(t, err)
		progressStore.Records[seeded.ID] = progress

		var order []string
		userStore.DeleteManyFn = func(ctx context.Context, ids []int64) (int64, error) {
			order = append(order, "users")
			var n int64
			for _, id := range ids {
				if _, ok := userStore.Users[id]; ok {
					delete(userStore.Users, id)
					n++
				}
			}
			return n, nil
		}
		progressStore.DeleteManyFn = func(ctx context.Context, userIDs []int64) (int64, error) {
			order = append(order, "progress")
			var n int64
			for _, id := range userIDs {
				if _, ok := progressStore.Records[id]; ok {
					delete(progressStore.Records, id)
					n++
				}
			}
			return n, nil
		}

		deleted, err := svc.DeleteUsers(ctx, []int64{seeded.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
		assert.Equal(t, []string{"progress", "users"}, order)
	})
}

func TestUserService_GetProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("existing record", func(t *testing.T) {
		svc, _, progressStore, _ := newTestService()
		progress, err := domain.NewProgress(7)
		require.NoError(t, err)
		progressStore.Records[7] = progress

		got, err := svc.GetProgress(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), got.UserID)
		assert.Equal(t, domain.DefaultLevelID, got.LevelID)
	})

	t.Run("missing record", func(t *testing.T) {
		svc, _, _, _ := newTestService()

		got, err := svc.GetProgress(ctx, 7)
		require.Error(t, err)
		assert.Nil(t, got)
		assert.True(t, errors.Is(err, store.ErrProgressNotFound))
	})
}

func TestUserService_FindCredentials(t *testing.T) {
	ctx := context.Background()

	t.Run("existing email", func(t *testing.T) {
		svc, userStore, _, _ := newTestService()
		seeded := userStore.Seed("Ana", "ana@example.com", "hashed_pw")

		creds, err := svc.FindCredentials(ctx, "ana@example.com")
		require.NoError(t, err)
		require.NotNil(t, creds)
		assert.Equal(t, seeded.ID, creds.ID)
		assert.Equal(t, "hashed_pw", creds.HashedPassword)
	})

	t.Run("absence is nil result, not an error", func(t *testing.T) {
		svc, _, _, _ := newTestService()

		creds, err := svc.FindCredentials(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, creds)
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("successful change", func(t *testing.T) {
		svc, userStore, _, _ := newTestService()
		seeded := userStore.Seed("Ana", "ana@example.com", "old_hash")

		err := svc.ChangePassword(ctx, seeded.ID, "new_hash")
		require.NoError(t, err)
		assert.Equal(t, "new_hash", userStore.Users[seeded.ID].HashedPassword)
	})

	t.Run("missing user is masked as the generic failure", func(t *testing.T) {
		svc, _, _, _ := newTestService()

		err := svc.ChangePassword(ctx, 42, "new_hash")
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrPasswordChangeFailed))
		assert.False(t, errors.Is(err, store.ErrUserNotFound),
			"the underlying cause must not leak through the sentinel")
	})

	t.Run("store failure is masked the same way", func(t *testing.T) {
		svc, userStore, _, _ := newTestService()
		seeded := userStore.Seed("Ana", "ana@example.com", "old_hash")
		cause := errors.New("connection reset")
		userStore.UpdatePasswordFn = func(ctx context.Context, id int64, hash string) error {
			return cause
		}

		err := svc.ChangePassword(ctx, seeded.ID, "new_hash")
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrPasswordChangeFailed))
		assert.False(t, errors.Is(err, cause))
	})
}

func TestUserService_UpdatePasswordByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("existing email", func(t *testing.T) {
		svc, userStore, _, _ := newTestService()
		seeded := userStore.Seed("Ana", "ana@example.com", "old_hash")

		user, err := svc.UpdatePasswordByEmail(ctx, "ana@example.com", "new_hash")
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, user.ID)
		assert.Equal(t, "new_hash", user.HashedPassword)
	})

	t.Run("missing email surfaces as not found", func(t *testing.T) {
		svc, _, _, _ := newTestService()

		user, err := svc.UpdatePasswordByEmail(ctx, "nobody@example.com", "new_hash")
		require.Error(t, err)
		assert.Nil(t, user)
		assert.True(t, errors.Is(err, store.ErrUserNotFound))
	})
}
