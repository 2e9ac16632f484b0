package repository

import (
	"errors"
	"strings"
)

// Sentinel errors shared by all repositories. Handlers translate these
// into HTTP status codes; nothing below this layer inspects them.
var (
	// ErrNotFound covers both missing rows and rows owned by another
	// user, so ownership cannot be probed through error responses.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEntry maps unique-constraint violations (user email).
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidInput flags payloads the database would reject.
	ErrInvalidInput = errors.New("invalid input")
)

// isDuplicateKeyError recognizes unique violations from both backends:
// postgres in production, sqlite in tests.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "23505")
}
