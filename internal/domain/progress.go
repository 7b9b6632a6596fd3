package domain

import (
	"errors"
	"time"
)

// DefaultLevelID is the difficulty level every new account starts on.
const DefaultLevelID = 1

// Common validation errors for Progress
var (
	ErrEmptyProgressUserID = errors.New("progress user ID cannot be empty")
	ErrInvalidCompletion   = errors.New("completion must be between 0 and 100")
	ErrInvalidLevelID      = errors.New("level ID must be greater than 0")
)

// Progress tracks a user's learning state. Exactly one Progress record
// exists per User: it is created in the same transaction as the User and
// deleted in the same transaction as the User, never independently.
type Progress struct {
	UserID             int64              `json:"user_id"`
	CategoriesProgress map[string]float64 `json:"categories_progress"` // Per-category completion percentage
	WordsProgress      map[string]int     `json:"words_progress"`      // Per-word review counts
	Completion         float64            `json:"completion"`          // Overall level completion percentage
	LevelID            int                `json:"level_id"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// NewProgress creates the initial Progress record for a user: empty
// category and word maps, zero completion, starting at the default level.
func NewProgress(userID int64) (*Progress, error) {
	now := time.Now().UTC()
	progress := &Progress{
		UserID:             userID,
		CategoriesProgress: map[string]float64{},
		WordsProgress:      map[string]int{},
		Completion:         0,
		LevelID:            DefaultLevelID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := progress.Validate(); err != nil {
		return nil, err
	}

	return progress, nil
}

// Validate checks if the Progress has valid data.
// Returns an error if any field fails validation.
func (p *Progress) Validate() error {
	if p.UserID <= 0 {
		return ErrEmptyProgressUserID
	}

	if p.Completion < 0 || p.Completion > 100 {
		return ErrInvalidCompletion
	}

	if p.LevelID <= 0 {
		return ErrInvalidLevelID
	}

	return nil
}
