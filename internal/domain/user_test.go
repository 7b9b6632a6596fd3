package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palabra-labs/palabra-api/internal/domain"
)

func TestNewUser(t *testing.T) {
	t.Run("valid user", func(t *testing.T) {
		user, err := domain.NewUser("Ana", "ana@example.com", "hashed_pw")
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.Zero(t, user.ID, "ID is assigned by the store")
		assert.Equal(t, "Ana", user.Name)
		assert.Equal(t, "ana@example.com", user.Email)
		assert.Equal(t, "hashed_pw", user.HashedPassword)
		assert.False(t, user.CreatedAt.IsZero())
		assert.Equal(t, user.CreatedAt, user.UpdatedAt)
	})

	t.Run("empty name", func(t *testing.T) {
		user, err := domain.NewUser("   ", "ana@example.com", "hashed_pw")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, domain.ErrEmptyName)
	})

	t.Run("empty email", func(t *testing.T) {
		user, err := domain.NewUser("Ana", "", "hashed_pw")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, domain.ErrEmptyEmail)
	})

	t.Run("malformed email", func(t *testing.T) {
		for _, email := range []string{"no-at-sign", "@example.com", "ana@", "ana@nodot", "ana@dot."} {
			user, err := domain.NewUser("Ana", email, "hashed_pw")
			assert.Nil(t, user, "email %q should be rejected", email)
			assert.ErrorIs(t, err, domain.ErrInvalidEmail)
		}
	})

	t.Run("empty hashed password", func(t *testing.T) {
		user, err := domain.NewUser("Ana", "ana@example.com", "")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, domain.ErrEmptyHashedPassword)
	})
}

func TestUser_EmailEqualFold(t *testing.T) {
	user := domain.User{Email: "Ana@Example.com"}

	assert.True(t, user.EmailEqualFold("ana@example.com"))
	assert.True(t, user.EmailEqualFold("ANA@EXAMPLE.COM"))
	assert.False(t, user.EmailEqualFold("ben@example.com"))
}
