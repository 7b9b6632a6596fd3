package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palabra-labs/palabra-api/internal/domain"
)

func TestNewProgress(t *testing.T) {
	t.Run("initial record", func(t *testing.T) {
		progress, err := domain.NewProgress(7)
		require.NoError(t, err)
		require.NotNil(t, progress)

		assert.Equal(t, int64(7), progress.UserID)
		assert.NotNil(t, progress.CategoriesProgress)
		assert.Empty(t, progress.CategoriesProgress)
		assert.NotNil(t, progress.WordsProgress)
		assert.Empty(t, progress.WordsProgress)
		assert.Zero(t, progress.Completion)
		assert.Equal(t, domain.DefaultLevelID, progress.LevelID)
	})

	t.Run("invalid user ID", func(t *testing.T) {
		progress, err := domain.NewProgress(0)
		assert.Nil(t, progress)
		assert.ErrorIs(t, err, domain.ErrEmptyProgressUserID)
	})
}

func TestProgress_Validate(t *testing.T) {
	valid := func() *domain.Progress {
		progress, err := domain.NewProgress(7)
		require.NoError(t, err)
		return progress
	}

	t.Run("completion out of range", func(t *testing.T) {
		progress := valid()
		progress.Completion = 101
		assert.ErrorIs(t, progress.Validate(), domain.ErrInvalidCompletion)

		progress.Completion = -1
		assert.ErrorIs(t, progress.Validate(), domain.ErrInvalidCompletion)
	})

	t.Run("invalid level", func(t *testing.T) {
		progress := valid()
		progress.LevelID = 0
		assert.ErrorIs(t, progress.Validate(), domain.ErrInvalidLevelID)
	})
}
