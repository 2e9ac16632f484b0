package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachment_URL(t *testing.T) {
	a := Attachment{ID: 42}
	assert.Equal(t, "/api/attachments/42", a.URL())
}

func TestAttachment_MarshalJSON(t *testing.T) {
	a := Attachment{
		ID:         11,
		MailID:     3,
		Name:       "invoice.pdf",
		Filename:   "ab/ab123def.pdf",
		MimeType:   "application/pdf",
		Size:       2048,
		UploadedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(a)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "/api/attachments/11", got["url"])
	assert.Equal(t, "invoice.pdf", got["name"])
	assert.Equal(t, "application/pdf", got["mimeType"])
	assert.Equal(t, float64(2048), got["size"])
	// Storage name stays internal
	assert.NotContains(t, got, "filename")
	assert.NotContains(t, got, "Filename")
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "users", User{}.TableName())
	assert.Equal(t, "mails", Mail{}.TableName())
	assert.Equal(t, "attachments", Attachment{}.TableName())
}
