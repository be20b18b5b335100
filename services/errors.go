package services

import (
	"errors"
	"fmt"

	"doc-notification/storage"
)

// Error taxonomy shared by every service. Match with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("already exists")
	ErrNotFound   = errors.New("not found")
	ErrAuth       = errors.New("invalid email or password")
	ErrStorage    = storage.ErrStorage

	// User errors
	ErrUserExists   = fmt.Errorf("user %w", ErrConflict)
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	ErrNoSession    = fmt.Errorf("session %w", ErrNotFound)

	// Patient errors
	ErrPatientNotFound = fmt.Errorf("patient %w", ErrNotFound)
)

// invalid wraps a validation failure so it matches ErrValidation and keeps
// the detailed cause reachable with errors.As.
func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
