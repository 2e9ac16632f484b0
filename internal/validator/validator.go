// Package validator provides input validation and sanitization for the
// Courrier API layer.
package validator

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/courrierhq/courrier-backend/internal/models"
)

// Validation errors
var (
	ErrInvalidEmail = errors.New("invalid email format")
	ErrInputTooLong = errors.New("input exceeds maximum length")
	ErrEmptyInput   = errors.New("input cannot be empty")
)

// FieldError describes a single invalid or missing field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateEmail validates email address format according to RFC 5322
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if email == "" {
		return ErrEmptyInput
	}
	if utf8.RuneCountInString(email) > 254 {
		return ErrInputTooLong
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}

	return nil
}

// ValidateMail checks the required fields and enum values of a mail
// record, returning one entry per violation. An empty result means the
// record is valid.
func ValidateMail(m *models.Mail) []FieldError {
	var errs []FieldError

	if m.Type == "" {
		errs = append(errs, FieldError{Field: "type", Message: "type is required"})
	} else if !m.Type.Valid() {
		errs = append(errs, FieldError{Field: "type", Message: "unknown mail type"})
	}
	if m.Sender == "" {
		errs = append(errs, FieldError{Field: "sender", Message: "sender is required"})
	}
	if m.Recipient == "" {
		errs = append(errs, FieldError{Field: "recipient", Message: "recipient is required"})
	}
	if m.ReceivedDate.IsZero() {
		errs = append(errs, FieldError{Field: "receivedDate", Message: "receivedDate is required"})
	}
	if m.Status == "" {
		errs = append(errs, FieldError{Field: "status", Message: "status is required"})
	} else if !m.Status.Valid() {
		errs = append(errs, FieldError{Field: "status", Message: "unknown mail status"})
	}
	if strings.TrimSpace(m.Subject) == "" {
		errs = append(errs, FieldError{Field: "subject", Message: "subject is required"})
	}

	return errs
}

// Pagination constants
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ValidatePagination clamps page/limit to their allowed ranges:
// page >= 1, 1 <= limit <= 100, limit defaulting to 20.
func ValidatePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// SanitizeFilename removes dangerous characters from a display filename.
// Prevents path traversal and strips control characters.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.ReplaceAll(filename, "..", "_")
	filename = strings.ReplaceAll(filename, "\x00", "")

	filename = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, filename)

	filename = strings.TrimSpace(filename)

	if utf8.RuneCountInString(filename) > 255 {
		runes := []rune(filename)
		filename = string(runes[:255])
	}

	if filename == "" {
		return "unnamed"
	}

	return filename
}
