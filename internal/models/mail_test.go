package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailType_Valid(t *testing.T) {
	for _, mt := range MailTypes() {
		assert.True(t, mt.Valid(), string(mt))
	}
	assert.False(t, MailType("postcard").Valid())
	assert.False(t, MailType("").Valid())
}

func TestMailStatus_Valid(t *testing.T) {
	for _, ms := range MailStatuses() {
		assert.True(t, ms.Valid(), string(ms))
	}
	assert.False(t, MailStatus("lost").Valid())
	assert.False(t, MailStatus("").Valid())
}

// Every enum value must carry display metadata, so UI lookups can never
// fall through to a default
func TestDisplayMeta_Exhaustive(t *testing.T) {
	for _, mt := range MailTypes() {
		meta := mt.Meta()
		assert.NotEmpty(t, meta.Label, string(mt))
		assert.NotEmpty(t, meta.Color, string(mt))
	}
	for _, ms := range MailStatuses() {
		meta := ms.Meta()
		assert.NotEmpty(t, meta.Label, string(ms))
		assert.NotEmpty(t, meta.Color, string(ms))
	}
}

func TestMail_IsOverdue(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	tests := []struct {
		name    string
		dueDate *time.Time
		status  MailStatus
		want    bool
	}{
		{"one second past, pending", &past, StatusPending, true},
		{"one second past, in progress", &past, StatusInProgress, true},
		{"one second past, completed", &past, StatusCompleted, false},
		{"one second past, archived", &past, StatusArchived, true},
		{"future due date", &future, StatusPending, false},
		{"no due date", nil, StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mail{DueDate: tt.dueDate, Status: tt.status}
			assert.Equal(t, tt.want, m.IsOverdue(now))
		})
	}
}

func TestMail_JSONFieldNames(t *testing.T) {
	due := time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC)
	m := Mail{
		ID:           1,
		Type:         TypeInvoice,
		Sender:       "EDF",
		Recipient:    "Jane",
		Subject:      "Bill",
		ReceivedDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Status:       StatusPending,
		DueDate:      &due,
		CreatedByID:  7,
	}

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Contains(t, got, "receivedDate")
	assert.Contains(t, got, "dueDate")
	assert.Contains(t, got, "createdBy")
	assert.Equal(t, float64(7), got["createdBy"])
	assert.NotContains(t, got, "CreatedByID")
	// Hidden relations never serialize
	assert.NotContains(t, got, "CreatedBy")
}
