package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/courrierhq/courrier-backend/internal/api/response"
	"github.com/courrierhq/courrier-backend/internal/auth"
	"github.com/courrierhq/courrier-backend/internal/models"
	"github.com/courrierhq/courrier-backend/internal/repository"
	"github.com/courrierhq/courrier-backend/internal/validator"
	"github.com/labstack/echo/v4"
)

// MailHandler handles mail-related HTTP requests
type MailHandler struct {
	mailRepo repository.MailRepository
}

// NewMailHandler creates a new MailHandler
func NewMailHandler(mailRepo repository.MailRepository) *MailHandler {
	return &MailHandler{mailRepo: mailRepo}
}

// parseDate accepts RFC 3339 timestamps and bare dates
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

// filterFromQuery builds a MailFilter from query parameters.
// Unparseable dates are dropped (lenient filtering).
func filterFromQuery(c echo.Context) repository.MailFilter {
	f := repository.MailFilter{
		Type:      c.QueryParam("type"),
		Status:    c.QueryParam("status"),
		Sender:    c.QueryParam("sender"),
		Recipient: c.QueryParam("recipient"),
		Search:    c.QueryParam("search"),
	}
	if s := c.QueryParam("dateFrom"); s != "" {
		if t, err := parseDate(s); err == nil {
			f.DateFrom = &t
		}
	}
	if s := c.QueryParam("dateTo"); s != "" {
		if t, err := parseDate(s); err == nil {
			f.DateTo = &t
		}
	}
	return f
}

// applyMailPayload mutates only the fields present in the request body.
// An explicit JSON null clears the optional date fields. Unknown keys
// are ignored.
func applyMailPayload(m *models.Mail, data map[string]json.RawMessage) error {
	setString := func(key string, dst *string) error {
		raw, ok := data[key]
		if !ok || string(raw) == "null" {
			return nil
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("%s must be a string", key)
		}
		*dst = v
		return nil
	}

	var typ, status string
	if err := setString("type", &typ); err != nil {
		return err
	}
	if typ != "" {
		m.Type = models.MailType(typ)
	}
	if err := setString("status", &status); err != nil {
		return err
	}
	if status != "" {
		m.Status = models.MailStatus(status)
	}

	for key, dst := range map[string]*string{
		"sender":         &m.Sender,
		"recipient":      &m.Recipient,
		"subject":        &m.Subject,
		"notes":          &m.Notes,
		"actionRequired": &m.ActionRequired,
	} {
		if err := setString(key, dst); err != nil {
			return err
		}
	}

	if raw, ok := data["receivedDate"]; ok && string(raw) != "null" {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("receivedDate must be a string")
		}
		t, err := parseDate(s)
		if err != nil {
			return err
		}
		m.ReceivedDate = t
	}

	for key, dst := range map[string]**time.Time{
		"sentDate": &m.SentDate,
		"dueDate":  &m.DueDate,
	} {
		raw, ok := data[key]
		if !ok {
			continue
		}
		if string(raw) == "null" {
			*dst = nil
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("%s must be a string or null", key)
		}
		t, err := parseDate(s)
		if err != nil {
			return err
		}
		*dst = &t
	}

	return nil
}

// List handles GET /api/mails
func (h *MailHandler) List(c echo.Context) error {
	userID := auth.UserIDFrom(c)

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	page, limit = validator.ValidatePagination(page, limit)

	mails, total, err := h.mailRepo.ListByUserWithFilters(
		c.Request().Context(), userID, filterFromQuery(c), page, limit)
	if err != nil {
		return response.InternalError(c, "failed to list mails")
	}

	return response.Paginated(c, mails, total, page, limit)
}

// Create handles POST /api/mails
func (h *MailHandler) Create(c echo.Context) error {
	var data map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&data); err != nil || data == nil {
		return response.BadRequest(c, "invalid JSON")
	}

	mail := &models.Mail{CreatedByID: auth.UserIDFrom(c)}
	if err := applyMailPayload(mail, data); err != nil {
		return response.BadRequest(c, err.Error())
	}

	if errs := validator.ValidateMail(mail); len(errs) > 0 {
		return response.ValidationFailed(c, errs)
	}

	if err := h.mailRepo.Create(c.Request().Context(), mail); err != nil {
		return response.InternalError(c, "failed to create mail")
	}

	// A fresh record has no attachments; serialize as an empty list
	if mail.Attachments == nil {
		mail.Attachments = []models.Attachment{}
	}

	return response.Created(c, mail)
}

// Get handles GET /api/mails/:id
func (h *MailHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid mail ID")
	}

	mail, err := h.mailRepo.GetByIDForUser(c.Request().Context(), uint(id), auth.UserIDFrom(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "mail not found")
		}
		return response.InternalError(c, "failed to get mail")
	}

	return response.OK(c, mail)
}

// Update handles PUT and PATCH /api/mails/:id. Both apply partial
// semantics: only fields present in the body are mutated.
func (h *MailHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid mail ID")
	}

	mail, err := h.mailRepo.GetByIDForUser(c.Request().Context(), uint(id), auth.UserIDFrom(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "mail not found")
		}
		return response.InternalError(c, "failed to get mail")
	}

	var data map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&data); err != nil || data == nil {
		return response.BadRequest(c, "invalid JSON")
	}

	if err := applyMailPayload(mail, data); err != nil {
		return response.BadRequest(c, err.Error())
	}
	if errs := validator.ValidateMail(mail); len(errs) > 0 {
		return response.ValidationFailed(c, errs)
	}

	if err := h.mailRepo.Update(c.Request().Context(), mail); err != nil {
		return response.InternalError(c, "failed to update mail")
	}

	return response.OK(c, mail)
}

// Delete handles DELETE /api/mails/:id (cascades to attachments)
func (h *MailHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid mail ID")
	}

	if err := h.mailRepo.DeleteForUser(c.Request().Context(), uint(id), auth.UserIDFrom(c)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "mail not found")
		}
		return response.InternalError(c, "failed to delete mail")
	}

	return response.NoContent(c)
}

// Stats handles GET /api/mails/stats
func (h *MailHandler) Stats(c echo.Context) error {
	stats, err := h.mailRepo.StatsByUser(c.Request().Context(), auth.UserIDFrom(c), time.Now())
	if err != nil {
		return response.InternalError(c, "failed to compute stats")
	}
	return response.OK(c, stats)
}

// Overdue handles GET /api/mails/overdue
func (h *MailHandler) Overdue(c echo.Context) error {
	mails, err := h.mailRepo.FindOverdueByUser(c.Request().Context(), auth.UserIDFrom(c), time.Now())
	if err != nil {
		return response.InternalError(c, "failed to list overdue mails")
	}
	return response.OK(c, mails)
}
