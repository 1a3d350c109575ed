package service

import "errors"

var (
	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied is returned when a user mutates someone else's recipe
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidCredentials is returned on bad login or password change input
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries a human-readable message surfaced as a 400 response.
// Uniqueness conflicts (duplicate favorite, cart entry or subscription) are
// reported this way rather than as a distinct conflict status.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(message string) error {
	return &ValidationError{Message: message}
}

// IsValidationError reports whether err is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
