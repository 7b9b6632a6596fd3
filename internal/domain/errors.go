// Package domain defines the core business entities and errors.
package domain

import "errors"

// ErrInvalidEmail is returned when an email address is malformed.
var ErrInvalidEmail = errors.New("invalid email format")
