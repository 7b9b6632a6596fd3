package api

import (
	"time"

	"github.com/palabra-labs/palabra-api/internal/domain"
	"github.com/palabra-labs/palabra-api/internal/store"
)

// Common request/response structures

// CreateUserRequest defines the payload for the user creation endpoint.
type CreateUserRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UpdateUserRequest defines the payload for the user update endpoint.
// Every field is optional: pointer fields track presence so that an absent
// field is left untouched rather than overwritten with a zero value.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"     validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email,omitempty"    validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

// DeleteUsersRequest defines the payload for the bulk-delete endpoint.
type DeleteUsersRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

// ChangePasswordRequest defines the payload for the password-change endpoint.
type ChangePasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UpdatePasswordRequest defines the payload for the password-update-by-email endpoint.
type UpdatePasswordRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserResponse defines the user representation returned by the API.
// The credential hash is never serialized.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProgressResponse defines the learning-progress representation returned by the API.
type ProgressResponse struct {
	UserID             int64              `json:"user_id"`
	CategoriesProgress map[string]float64 `json:"categories_progress"`
	WordsProgress      map[string]int     `json:"words_progress"`
	Completion         float64            `json:"completion"`
	LevelID            int                `json:"level_id"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// CredentialsResponse defines the login projection returned by the lookup endpoint.
type CredentialsResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DeleteUsersResponse reports the outcome of a bulk delete.
type DeleteUsersResponse struct {
	Deleted int64 `json:"deleted"`
}

// MessageResponse carries a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// userToResponse converts a domain.User to a UserResponse
func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// usersToResponse converts a slice of domain users to API responses
func usersToResponse(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userToResponse(&users[i]))
	}
	return out
}

// progressToResponse converts a domain.Progress to a ProgressResponse
func progressToResponse(progress *domain.Progress) ProgressResponse {
	return ProgressResponse{
		UserID:             progress.UserID,
		CategoriesProgress: progress.CategoriesProgress,
		WordsProgress:      progress.WordsProgress,
		Completion:         progress.Completion,
		LevelID:            progress.LevelID,
		CreatedAt:          progress.CreatedAt,
		UpdatedAt:          progress.UpdatedAt,
	}
}

// credentialsToResponse converts a store.Credentials projection to a response
func credentialsToResponse(creds *store.Credentials) CredentialsResponse {
	return CredentialsResponse{
		ID:    creds.ID,
		Name:  creds.Name,
		Email: creds.Email,
	}
}
