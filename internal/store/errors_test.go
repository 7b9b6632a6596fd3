package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palabra-labs/palabra-api/internal/store"
)

func TestErrorHierarchy(t *testing.T) {
	t.Run("entity-specific errors unwrap to their category", func(t *testing.T) {
		assert.ErrorIs(t, store.ErrUserNotFound, store.ErrNotFound)
		assert.ErrorIs(t, store.ErrProgressNotFound, store.ErrNotFound)
		assert.ErrorIs(t, store.ErrEmailExists, store.ErrDuplicate)
	})

	t.Run("categories do not cross", func(t *testing.T) {
		assert.NotErrorIs(t, store.ErrUserNotFound, store.ErrDuplicate)
		assert.NotErrorIs(t, store.ErrEmailExists, store.ErrNotFound)
	})
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, store.IsNotFoundError(store.ErrNotFound))
	assert.True(t, store.IsNotFoundError(store.ErrUserNotFound))
	assert.True(t, store.IsNotFoundError(fmt.Errorf("lookup: %w", store.ErrProgressNotFound)))
	assert.False(t, store.IsNotFoundError(store.ErrEmailExists))
	assert.False(t, store.IsNotFoundError(errors.New("boom")))
	assert.False(t, store.IsNotFoundError(nil))
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, store.IsDuplicateError(store.ErrDuplicate))
	assert.True(t, store.IsDuplicateError(fmt.Errorf("insert: %w", store.ErrEmailExists)))
	assert.False(t, store.IsDuplicateError(store.ErrUserNotFound))
	assert.False(t, store.IsDuplicateError(nil))
}

func TestUserPatch_IsEmpty(t *testing.T) {
	name := "Ana"

	assert.True(t, store.UserPatch{}.IsEmpty())
	assert.False(t, store.UserPatch{Name: &name}.IsEmpty())
}
