// Package client provides data access for applications built on the
// mail-tracking API. Two implementations of Service exist: an in-memory
// mock for development and tests, and an HTTP implementation talking to
// the live REST API. The factory in client.go selects one from config.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Role discriminators exposed to callers.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the client-side view of an account
type User struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Auth is the persisted credential blob: the authenticated user plus
// the bearer token
type Auth struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Attachment is the client-side view of an uploaded file
type Attachment struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// Mail is the client-side view of a tracked mail record
type Mail struct {
	ID             uint         `json:"id"`
	Type           string       `json:"type"`
	Status         string       `json:"status"`
	Sender         string       `json:"sender"`
	Recipient      string       `json:"recipient"`
	Subject        string       `json:"subject"`
	ReceivedDate   time.Time    `json:"receivedDate"`
	SentDate       *time.Time   `json:"sentDate,omitempty"`
	DueDate        *time.Time   `json:"dueDate,omitempty"`
	ActionRequired string       `json:"actionRequired,omitempty"`
	Notes          string       `json:"notes,omitempty"`
	Attachments    []Attachment `json:"attachments"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// MailInput carries fields for create and update calls. Nil pointers
// are omitted, so an update touches only the fields that are set.
type MailInput struct {
	Type           *string
	Status         *string
	Sender         *string
	Recipient      *string
	Subject        *string
	ReceivedDate   *time.Time
	SentDate       *time.Time
	DueDate        *time.Time
	ActionRequired *string
	Notes          *string

	// ClearSentDate and ClearDueDate explicitly null the optional
	// dates, which a nil pointer alone cannot express.
	ClearSentDate bool
	ClearDueDate  bool
}

// ListOptions narrows and pages a mail listing
type ListOptions struct {
	Page      int
	Limit     int
	Type      string
	Status    string
	Search    string
	Sender    string
	Recipient string
	DateFrom  *time.Time
	DateTo    *time.Time
}

// MailPage is one page of a mail listing
type MailPage struct {
	Mails []Mail `json:"data"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Pages int    `json:"pages"`
}

// Service is the data-access surface shared by the mock and HTTP
// implementations
type Service interface {
	Login(ctx context.Context, email, password string) (*Auth, error)
	Register(ctx context.Context, email, password, name string) (*User, error)
	Logout(ctx context.Context) error
	CurrentAuth(ctx context.Context) (*Auth, error)

	ListMails(ctx context.Context, opts ListOptions) (*MailPage, error)
	GetMail(ctx context.Context, id uint) (*Mail, error)
	CreateMail(ctx context.Context, input MailInput) (*Mail, error)
	UpdateMail(ctx context.Context, id uint, input MailInput) (*Mail, error)
	DeleteMail(ctx context.Context, id uint) error
	SearchMails(ctx context.Context, query string) ([]Mail, error)
	UploadAttachment(ctx context.Context, mailID uint, filename string, r io.Reader) (*Attachment, error)
}

// APIError carries a structured error returned by the API
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

// IsUnauthorized reports whether the error is a 401 from the API.
// Callers purge stored credentials and re-authenticate on it.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 401
}

// IsNotFound reports whether the error is a 404 from the API
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
