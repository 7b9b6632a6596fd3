package service

import "errors"

// Service-level errors.
var (
	// ErrPasswordChangeFailed is the only error ChangePassword returns to
	// callers. The operation deliberately masks every underlying failure,
	// including a missing user, behind this fixed sentinel; the real cause
	// is logged for diagnostics. Callers that need to distinguish a missing
	// user must check existence before calling ChangePassword.
	ErrPasswordChangeFailed = errors.New("failed to change password")

	// ErrNoIDs is returned by DeleteUsers when the ID list is empty.
	ErrNoIDs = errors.New("no user IDs provided")
)
