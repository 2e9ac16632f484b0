package models

import (
	"time"
)

// MailType categorizes a piece of correspondence
type MailType string

// Recognized mail types
const (
	TypeInvoice        MailType = "invoice"
	TypeLetter         MailType = "letter"
	TypeAdministrative MailType = "administrative"
	TypeBank           MailType = "bank"
	TypeInsurance      MailType = "insurance"
	TypeUtility        MailType = "utility"
	TypeMedical        MailType = "medical"
	TypeLegal          MailType = "legal"
	TypeOther          MailType = "other"
)

// MailStatus tracks the processing state of a mail record
type MailStatus string

// Recognized mail statuses
const (
	StatusPending    MailStatus = "pending"
	StatusInProgress MailStatus = "in_progress"
	StatusCompleted  MailStatus = "completed"
	StatusArchived   MailStatus = "archived"
)

// Valid reports whether t is a recognized mail type
func (t MailType) Valid() bool {
	_, ok := typeMeta[t]
	return ok
}

// Valid reports whether s is a recognized mail status
func (s MailStatus) Valid() bool {
	_, ok := statusMeta[s]
	return ok
}

// MailTypes lists every recognized type in display order
func MailTypes() []MailType {
	return []MailType{
		TypeInvoice, TypeLetter, TypeAdministrative, TypeBank,
		TypeInsurance, TypeUtility, TypeMedical, TypeLegal, TypeOther,
	}
}

// MailStatuses lists every recognized status in lifecycle order
func MailStatuses() []MailStatus {
	return []MailStatus{StatusPending, StatusInProgress, StatusCompleted, StatusArchived}
}

// DisplayMeta carries the presentation attributes associated with an enum value
type DisplayMeta struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var typeMeta = map[MailType]DisplayMeta{
	TypeInvoice:        {Label: "Invoice", Color: "amber"},
	TypeLetter:         {Label: "Letter", Color: "blue"},
	TypeAdministrative: {Label: "Administrative", Color: "slate"},
	TypeBank:           {Label: "Bank", Color: "emerald"},
	TypeInsurance:      {Label: "Insurance", Color: "teal"},
	TypeUtility:        {Label: "Utility", Color: "orange"},
	TypeMedical:        {Label: "Medical", Color: "red"},
	TypeLegal:          {Label: "Legal", Color: "purple"},
	TypeOther:          {Label: "Other", Color: "gray"},
}

var statusMeta = map[MailStatus]DisplayMeta{
	StatusPending:    {Label: "Pending", Color: "yellow"},
	StatusInProgress: {Label: "In progress", Color: "blue"},
	StatusCompleted:  {Label: "Completed", Color: "green"},
	StatusArchived:   {Label: "Archived", Color: "gray"},
}

// Meta returns the display metadata for the type
func (t MailType) Meta() DisplayMeta {
	return typeMeta[t]
}

// Meta returns the display metadata for the status
func (s MailStatus) Meta() DisplayMeta {
	return statusMeta[s]
}

// Mail represents a single tracked piece of correspondence
type Mail struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Type           MailType   `gorm:"not null;size:32;index" json:"type"`
	Sender         string     `gorm:"not null;size:255" json:"sender"`
	Recipient      string     `gorm:"not null;size:255" json:"recipient"`
	ReceivedDate   time.Time  `gorm:"not null;index" json:"receivedDate"`
	SentDate       *time.Time `json:"sentDate,omitempty"`
	Status         MailStatus `gorm:"not null;size:32;index" json:"status"`
	Subject        string     `gorm:"not null;size:255" json:"subject"`
	Notes          string     `gorm:"type:text" json:"notes,omitempty"`
	DueDate        *time.Time `gorm:"index" json:"dueDate,omitempty"`
	ActionRequired string     `gorm:"size:255" json:"actionRequired,omitempty"`
	CreatedByID    uint       `gorm:"not null;index" json:"createdBy"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relationships
	CreatedBy   User         `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE" json:"-"`
	Attachments []Attachment `gorm:"foreignKey:MailID;constraint:OnDelete:CASCADE" json:"attachments"`
}

// TableName returns the table name for Mail
func (Mail) TableName() string {
	return "mails"
}

// IsOverdue reports whether the due date has passed without the mail
// reaching completed status. Derived, never stored.
func (m *Mail) IsOverdue(now time.Time) bool {
	return m.DueDate != nil && m.DueDate.Before(now) && m.Status != StatusCompleted
}

// MailStats aggregates per-status counts for one user's mail.
// Every status is present, zero-valued when no rows match.
type MailStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Archived   int64 `json:"archived"`
	Overdue    int64 `json:"overdue"`
}
