package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/courrierhq/courrier-backend/internal/api/response"
	"github.com/courrierhq/courrier-backend/internal/auth"
	"github.com/courrierhq/courrier-backend/internal/models"
	"github.com/courrierhq/courrier-backend/internal/repository"
	"github.com/labstack/echo/v4"
)

// exportPageLimit bounds how many records one export can pull
const exportPageLimit = 10000

// csvHeader is the fixed export column order
const csvHeader = "Subject,Type,Sender,Recipient,Received Date,Status,Due Date,Action Required,Notes"

// ExportHandler handles CSV and PDF export requests
type ExportHandler struct {
	mailRepo repository.MailRepository
	userRepo repository.UserRepository
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(mailRepo repository.MailRepository, userRepo repository.UserRepository) *ExportHandler {
	return &ExportHandler{
		mailRepo: mailRepo,
		userRepo: userRepo,
	}
}

// csvField escapes one CSV field: always double-quoted, inner quotes doubled
func csvField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// csvRow renders one mail record in the fixed column order
func csvRow(m *models.Mail) string {
	dueDate := ""
	if m.DueDate != nil {
		dueDate = m.DueDate.Format("2006-01-02")
	}
	fields := []string{
		csvField(m.Subject),
		csvField(string(m.Type)),
		csvField(m.Sender),
		csvField(m.Recipient),
		csvField(m.ReceivedDate.Format("2006-01-02")),
		csvField(string(m.Status)),
		csvField(dueDate),
		csvField(m.ActionRequired),
		csvField(m.Notes),
	}
	return strings.Join(fields, ",")
}

// CSV handles GET /api/export/csv
func (h *ExportHandler) CSV(c echo.Context) error {
	mails, _, err := h.mailRepo.ListByUserWithFilters(
		c.Request().Context(), auth.UserIDFrom(c), filterFromQuery(c), 1, exportPageLimit)
	if err != nil {
		return response.InternalError(c, "failed to export mails")
	}

	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteByte('\n')
	for i := range mails {
		b.WriteString(csvRow(&mails[i]))
		b.WriteByte('\n')
	}

	filename := fmt.Sprintf("mails-export-%s.csv", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, "text/csv", []byte(b.String()))
}

// pdfMail is the flattened record shape embedded in the PDF payload
type pdfMail struct {
	Subject        string  `json:"subject"`
	Type           string  `json:"type"`
	Sender         string  `json:"sender"`
	Recipient      string  `json:"recipient"`
	ReceivedDate   string  `json:"receivedDate"`
	Status         string  `json:"status"`
	DueDate        *string `json:"dueDate"`
	ActionRequired string  `json:"actionRequired"`
	Notes          string  `json:"notes"`
}

// PDF handles GET /api/export/pdf. The server returns a structured JSON
// payload (records + stats + metadata) for client-side PDF rendering.
func (h *ExportHandler) PDF(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.UserIDFrom(c)

	mails, _, err := h.mailRepo.ListByUserWithFilters(ctx, userID, filterFromQuery(c), 1, exportPageLimit)
	if err != nil {
		return response.InternalError(c, "failed to export mails")
	}

	stats, err := h.mailRepo.StatsByUser(ctx, userID, time.Now())
	if err != nil {
		return response.InternalError(c, "failed to compute stats")
	}

	userName := ""
	if user, err := h.userRepo.GetByID(ctx, userID); err == nil {
		userName = user.Name
	} else if !errors.Is(err, repository.ErrNotFound) {
		return response.InternalError(c, "failed to load user")
	}

	records := make([]pdfMail, 0, len(mails))
	for i := range mails {
		m := &mails[i]
		var dueDate *string
		if m.DueDate != nil {
			s := m.DueDate.Format("2006-01-02")
			dueDate = &s
		}
		records = append(records, pdfMail{
			Subject:        m.Subject,
			Type:           string(m.Type),
			Sender:         m.Sender,
			Recipient:      m.Recipient,
			ReceivedDate:   m.ReceivedDate.Format("2006-01-02"),
			Status:         string(m.Status),
			DueDate:        dueDate,
			ActionRequired: m.ActionRequired,
			Notes:          m.Notes,
		})
	}

	return response.OK(c, map[string]interface{}{
		"mails":      records,
		"stats":      stats,
		"exportDate": time.Now().Format("2006-01-02 15:04:05"),
		"user":       userName,
	})
}
