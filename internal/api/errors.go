package api

import (
	"errors"
	"net/http"

	"github.com/palabra-labs/palabra-api/internal/service"
	"github.com/palabra-labs/palabra-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients. Duplicate emails map to 400 rather than 409: they are
// treated as client-input errors throughout the service.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Duplicate / client-input errors
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrNoIDs):
		return http.StatusBadRequest

	// The password-change masking sentinel is always an internal error
	case errors.Is(err, service.ErrPasswordChangeFailed):
		return http.StatusInternalServerError

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrEmailExists):
		return "A user with that email already exists"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrProgressNotFound):
		return "Progress not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid user data"

	case errors.Is(err, service.ErrNoIDs):
		return "No user IDs provided"

	case errors.Is(err, service.ErrPasswordChangeFailed):
		return "Failed to change password"

	default:
		return "An unexpected error occurred"
	}
}
