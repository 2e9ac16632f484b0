package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/courrierhq/courrier-backend/internal/models"
	"github.com/courrierhq/courrier-backend/internal/storage"
	"gorm.io/gorm"
)

// AttachmentRepository defines the interface for attachment data access.
// Reads and deletes are scoped to the user owning the parent mail.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	GetByIDForUser(ctx context.Context, id, userID uint) (*models.Attachment, error)
	ListByMail(ctx context.Context, mailID uint) ([]models.Attachment, error)
	DeleteForUser(ctx context.Context, id, userID uint) error
}

// attachmentRepository implements AttachmentRepository using GORM
type attachmentRepository struct {
	db          *gorm.DB
	fileStorage storage.FileStorage
}

// NewAttachmentRepository creates a new AttachmentRepository instance
func NewAttachmentRepository(db *gorm.DB, fileStorage storage.FileStorage) AttachmentRepository {
	return &attachmentRepository{
		db:          db,
		fileStorage: fileStorage,
	}
}

// Create creates a new attachment record
func (r *attachmentRepository) Create(ctx context.Context, attachment *models.Attachment) error {
	result := r.db.WithContext(ctx).Create(attachment)
	if result.Error != nil {
		return fmt.Errorf("failed to create attachment: %w", result.Error)
	}
	return nil
}

// GetByIDForUser retrieves an attachment whose parent mail belongs to the user
func (r *attachmentRepository) GetByIDForUser(ctx context.Context, id, userID uint) (*models.Attachment, error) {
	var attachment models.Attachment
	result := r.db.WithContext(ctx).
		Joins("JOIN mails ON mails.id = attachments.mail_id").
		Where("attachments.id = ? AND mails.created_by_id = ?", id, userID).
		First(&attachment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get attachment by ID: %w", result.Error)
	}
	return &attachment, nil
}

// ListByMail retrieves all attachments for a mail
func (r *attachmentRepository) ListByMail(ctx context.Context, mailID uint) ([]models.Attachment, error) {
	var attachments []models.Attachment
	result := r.db.WithContext(ctx).Where("mail_id = ?", mailID).Find(&attachments)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", result.Error)
	}
	return attachments, nil
}

// DeleteForUser deletes an attachment owned (via its mail) by the user,
// removing the stored file as well
func (r *attachmentRepository) DeleteForUser(ctx context.Context, id, userID uint) error {
	attachment, err := r.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Delete(&models.Attachment{}, attachment.ID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete attachment: %w", result.Error)
	}

	// Remove the stored file; a missing file is not an error
	if attachment.Filename != "" && r.fileStorage != nil {
		_ = r.fileStorage.Delete(attachment.Filename)
	}

	return nil
}
