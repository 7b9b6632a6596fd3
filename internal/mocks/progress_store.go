package mocks

import (
	"context"
	"database/sql"

	"github.com/palabra-labs/palabra-api/internal/domain"
	"github.com/palabra-labs/palabra-api/internal/store"
)

// MockProgressStore implements store.ProgressStore for testing
type MockProgressStore struct {
	// Function fields for customizable behavior
	CreateFn      func(ctx context.Context, progress *domain.Progress) error
	GetByUserIDFn func(ctx context.Context, userID int64) (*domain.Progress, error)
	DeleteFn      func(ctx context.Context, userID int64) error
	DeleteManyFn  func(ctx context.Context, userIDs []int64) (int64, error)

	// Data for default implementation
	Records map[int64]*domain.Progress
}

// NewMockProgressStore creates a new mock store with initialized defaults
func NewMockProgressStore() *MockProgressStore {
	return &MockProgressStore{
		Records: make(map[int64]*domain.Progress),
	}
}

// Create implements the ProgressStore interface
func (m *MockProgressStore) Create(ctx context.Context, progress *domain.Progress) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, progress)
	}

	m.Records[progress.UserID] = progress
	return nil
}

// GetByUserID implements the ProgressStore interface
func (m *MockProgressStore) GetByUserID(ctx context.Context, userID int64) (*domain.Progress, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}

	progress, exists := m.Records[userID]
	if !exists {
		return nil, store.ErrProgressNotFound
	}
	return progress, nil
}

// Delete implements the ProgressStore interface
func (m *MockProgressStore) Delete(ctx context.Context, userID int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID)
	}

	if _, exists := m.Records[userID]; !exists {
		return store.ErrProgressNotFound
	}
	delete(m.Records, userID)
	return nil
}

// DeleteMany implements the ProgressStore interface
func (m *MockProgressStore) DeleteMany(ctx context.Context, userIDs []int64) (int64, error) {
	if m.DeleteManyFn != nil {
		return m.DeleteManyFn(ctx, userIDs)
	}

	var deleted int64
	for _, id := range userIDs {
		if _, exists := m.Records[id]; exists {
			delete(m.Records, id)
			deleted++
		}
	}
	return deleted, nil
}

// WithTx implements the ProgressStore interface for transaction support
func (m *MockProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	// For mock purposes, just return the same mock
	return m
}
