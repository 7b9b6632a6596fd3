package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/palabra-labs/palabra-api/internal/domain"
	"github.com/palabra-labs/palabra-api/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn                func(ctx context.Context, user *domain.User) error
	GetAllFn                func(ctx context.Context) ([]domain.User, error)
	GetByIDFn               func(ctx context.Context, id int64) (*domain.User, error)
	GetByEmailFn            func(ctx context.Context, email string) (*domain.User, error)
	FindByEmailFoldFn       func(ctx context.Context, email string, excludeID int64) (*domain.User, error)
	UpdateFn                func(ctx context.Context, id int64, patch store.UserPatch) (*domain.User, error)
	DeleteFn                func(ctx context.Context, id int64) error
	DeleteManyFn            func(ctx context.Context, ids []int64) (int64, error)
	GetCredentialsFn        func(ctx context.Context, email string) (*store.Credentials, error)
	UpdatePasswordFn        func(ctx context.Context, id int64, hashedPassword string) error
	UpdatePasswordByEmailFn func(ctx context.Context, email, hashedPassword string) (*domain.User, error)

	// Data for default implementation
	Users  map[int64]*domain.User
	NextID int64
}

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		Users:  make(map[int64]*domain.User),
		NextID: 1,
	}
}

// Seed adds a user directly to the backing map and returns it.
func (m *MockUserStore) Seed(name, email, hashedPassword string) *domain.User {
	user := &domain.User{
		ID:             m.NextID,
		Name:           name,
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	m.Users[user.ID] = user
	m.NextID++
	return user
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	user.ID = m.NextID
	m.NextID++
	m.Users[user.ID] = user
	return nil
}

// GetAll implements the UserStore interface
func (m *MockUserStore) GetAll(ctx context.Context) ([]domain.User, error) {
	if m.GetAllFn != nil {
		return m.GetAllFn(ctx)
	}

	ids := make([]int64, 0, len(m.Users))
	for id := range m.Users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, *m.Users[id])
	}
	return users, nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	user, exists := m.Users[id]
	if !exists {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// GetByEmail implements the UserStore interface with exact matching
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	for _, user := range m.Users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// FindByEmailFold implements the UserStore interface with case-insensitive
// matching and optional ID exclusion. Absence is (nil, nil).
func (m *MockUserStore) FindByEmailFold(
	ctx context.Context,
	email string,
	excludeID int64,
) (*domain.User, error) {
	if m.FindByEmailFoldFn != nil {
		return m.FindByEmailFoldFn(ctx, email, excludeID)
	}

	for _, user := range m.Users {
		if excludeID != 0 && user.ID == excludeID {
			continue
		}
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, nil
}

// Update implements the UserStore interface
func (m *MockUserStore) Update(
	ctx context.Context,
	id int64,
	patch store.UserPatch,
) (*domain.User, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, patch)
	}

	user, exists := m.Users[id]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.HashedPassword != nil {
		user.HashedPassword = *patch.HashedPassword
	}
	user.UpdatedAt = time.Now().UTC()

	return user, nil
}

// Delete implements the UserStore interface
func (m *MockUserStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	if _, exists := m.Users[id]; !exists {
		return store.ErrUserNotFound
	}
	delete(m.Users, id)
	return nil
}

// DeleteMany implements the UserStore interface
func (m *MockUserStore) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if m.DeleteManyFn != nil {
		return m.DeleteManyFn(ctx, ids)
	}

	var deleted int64
	for _, id := range ids {
		if _, exists := m.Users[id]; exists {
			delete(m.Users, id)
			deleted++
		}
	}
	return deleted, nil
}

// GetCredentials implements the UserStore interface
func (m *MockUserStore) GetCredentials(
	ctx context.Context,
	email string,
) (*store.Credentials, error) {
	if m.GetCredentialsFn != nil {
		return m.GetCredentialsFn(ctx, email)
	}

	for _, user := range m.Users {
		if user.Email == email {
			return &store.Credentials{
				ID:             user.ID,
				Name:           user.Name,
				Email:          user.Email,
				HashedPassword: user.HashedPassword,
			}, nil
		}
	}
	return nil, nil
}

// UpdatePassword implements the UserStore interface
func (m *MockUserStore) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	if m.UpdatePasswordFn != nil {
		return m.UpdatePasswordFn(ctx, id, hashedPassword)
	}

	user, exists := m.Users[id]
	if !exists {
		return store.ErrUserNotFound
	}
	user.HashedPassword = hashedPassword
	user.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdatePasswordByEmail implements the UserStore interface
func (m *MockUserStore) UpdatePasswordByEmail(
	ctx context.Context,
	email, hashedPassword string,
) (*domain.User, error) {
	if m.UpdatePasswordByEmailFn != nil {
		return m.UpdatePasswordByEmailFn(ctx, email, hashedPassword)
	}

	for _, user := range m.Users {
		if user.Email == email {
			user.HashedPassword = hashedPassword
			user.UpdatedAt = time.Now().UTC()
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// WithTx implements the UserStore interface for transaction support
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	// For mock purposes, just return the same mock
	return m
}
