package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Attachment represents a file stored for one mail record.
// Name is the original display name, Filename the generated storage name.
type Attachment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MailID     uint      `gorm:"not null;index" json:"mailId"`
	Name       string    `gorm:"not null;size:255" json:"name"`
	Filename   string    `gorm:"not null;size:500" json:"-"`
	MimeType   string    `gorm:"size:100" json:"mimeType"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploadedAt"`

	// Relationships
	Mail Mail `gorm:"foreignKey:MailID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Attachment
func (Attachment) TableName() string {
	return "attachments"
}

// URL returns the API path the attachment can be downloaded from
func (a *Attachment) URL() string {
	return fmt.Sprintf("/api/attachments/%d", a.ID)
}

// MarshalJSON includes the derived download URL in API payloads
func (a Attachment) MarshalJSON() ([]byte, error) {
	type alias Attachment
	return json.Marshal(struct {
		alias
		URL string `json:"url"`
	}{alias(a), a.URL()})
}
