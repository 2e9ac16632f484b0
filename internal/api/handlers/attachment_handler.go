package handlers

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/courrierhq/courrier-backend/internal/api/response"
	"github.com/courrierhq/courrier-backend/internal/auth"
	"github.com/courrierhq/courrier-backend/internal/logger"
	"github.com/courrierhq/courrier-backend/internal/models"
	"github.com/courrierhq/courrier-backend/internal/repository"
	"github.com/courrierhq/courrier-backend/internal/storage"
	"github.com/courrierhq/courrier-backend/internal/validator"
	"github.com/labstack/echo/v4"
)

// AttachmentHandler handles attachment-related HTTP requests
type AttachmentHandler struct {
	attachmentRepo repository.AttachmentRepository
	mailRepo       repository.MailRepository
	fileStorage    storage.FileStorage
	seclog         *logger.SecurityLogger
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(
	attachmentRepo repository.AttachmentRepository,
	mailRepo repository.MailRepository,
	fileStorage storage.FileStorage,
	seclog *logger.SecurityLogger,
) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentRepo: attachmentRepo,
		mailRepo:       mailRepo,
		fileStorage:    fileStorage,
		seclog:         seclog,
	}
}

// Upload handles POST /api/mails/:id/attachments. One file per request,
// multipart field "file".
func (h *AttachmentHandler) Upload(c echo.Context) error {
	mailID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid mail ID")
	}

	userID := auth.UserIDFrom(c)
	mail, err := h.mailRepo.GetByIDForUser(c.Request().Context(), uint(mailID), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "mail not found")
		}
		return response.InternalError(c, "failed to get mail")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "no file uploaded")
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if err := storage.ValidateUpload(mimeType, fileHeader.Size); err != nil {
		if h.seclog != nil {
			h.seclog.BlockedFileUpload(c.RealIP(), fileHeader.Filename, err.Error())
		}
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			return response.BadRequest(c, "file too large (max 10MB)")
		case errors.Is(err, storage.ErrMimeNotAllowed):
			return response.BadRequest(c, "file type not allowed")
		default:
			return response.BadRequest(c, "invalid file")
		}
	}

	src, err := fileHeader.Open()
	if err != nil {
		return response.InternalError(c, "failed to read upload")
	}
	defer src.Close()

	storedPath, err := h.fileStorage.Save(fileHeader.Filename, src)
	if err != nil {
		return response.InternalError(c, "failed to store file")
	}

	attachment := &models.Attachment{
		MailID:   mail.ID,
		Name:     validator.SanitizeFilename(fileHeader.Filename),
		Filename: storedPath,
		MimeType: mimeType,
		Size:     fileHeader.Size,
	}

	if err := h.attachmentRepo.Create(c.Request().Context(), attachment); err != nil {
		// Do not leave an orphaned file behind
		_ = h.fileStorage.Delete(storedPath)
		return response.InternalError(c, "failed to create attachment")
	}

	return response.Created(c, map[string]interface{}{
		"id":         attachment.ID,
		"name":       attachment.Name,
		"url":        attachment.URL(),
		"size":       attachment.Size,
		"mimeType":   attachment.MimeType,
		"uploadedAt": attachment.UploadedAt,
	})
}

// Download handles GET /api/attachments/:id, streaming the stored file
// with its original display name
func (h *AttachmentHandler) Download(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid attachment ID")
	}

	attachment, err := h.attachmentRepo.GetByIDForUser(c.Request().Context(), uint(id), auth.UserIDFrom(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "attachment not found")
		}
		return response.InternalError(c, "failed to get attachment")
	}

	file, err := h.fileStorage.Get(attachment.Filename)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return response.NotFound(c, "file not found on disk")
		}
		return response.InternalError(c, "failed to retrieve file")
	}
	defer file.Close()

	c.Response().Header().Set(echo.HeaderContentType, attachment.MimeType)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, attachment.Name))
	if attachment.Size > 0 {
		c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(attachment.Size, 10))
	}

	if _, err := io.Copy(c.Response().Writer, file); err != nil {
		return response.InternalError(c, "failed to send file")
	}

	return nil
}

// Delete handles DELETE /api/attachments/:id, removing the row and the
// stored file
func (h *AttachmentHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid attachment ID")
	}

	if err := h.attachmentRepo.DeleteForUser(c.Request().Context(), uint(id), auth.UserIDFrom(c)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "attachment not found")
		}
		return response.InternalError(c, "failed to delete attachment")
	}

	return response.NoContent(c)
}
