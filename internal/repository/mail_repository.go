package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/courrierhq/courrier-backend/internal/models"
	"github.com/courrierhq/courrier-backend/internal/storage"
	"gorm.io/gorm"
)

// MailFilter holds the optional predicates for listing a user's mail.
// All set fields combine with logical AND. Unrecognized enum values are
// dropped by Normalize before querying (lenient filter policy).
type MailFilter struct {
	Type      string
	Status    string
	Sender    string
	Recipient string
	Search    string
	DateFrom  *time.Time
	DateTo    *time.Time
}

// Normalize discards enum values that are not part of the recognized
// type/status sets, so malformed client input narrows nothing.
func (f MailFilter) Normalize() MailFilter {
	if f.Type != "" && !models.MailType(f.Type).Valid() {
		f.Type = ""
	}
	if f.Status != "" && !models.MailStatus(f.Status).Valid() {
		f.Status = ""
	}
	return f
}

// GlobalMailStats aggregates counts across all users, for admin reporting
type GlobalMailStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"byStatus"`
	ByType   map[string]int64 `json:"byType"`
}

// MailRepository defines the interface for mail data access.
// Every read and write is scoped to the owning user.
type MailRepository interface {
	Create(ctx context.Context, mail *models.Mail) error
	GetByIDForUser(ctx context.Context, id, userID uint) (*models.Mail, error)
	Update(ctx context.Context, mail *models.Mail) error
	DeleteForUser(ctx context.Context, id, userID uint) error
	ListByUserWithFilters(ctx context.Context, userID uint, filter MailFilter, page, limit int) ([]models.Mail, int64, error)
	FindOverdueByUser(ctx context.Context, userID uint, now time.Time) ([]models.Mail, error)
	StatsByUser(ctx context.Context, userID uint, now time.Time) (*models.MailStats, error)
	GlobalStats(ctx context.Context) (*GlobalMailStats, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

// mailRepository implements MailRepository using GORM
type mailRepository struct {
	db          *gorm.DB
	fileStorage storage.FileStorage
}

// NewMailRepository creates a new MailRepository instance.
// fileStorage is used to remove attachment files when a mail cascade-deletes.
func NewMailRepository(db *gorm.DB, fileStorage storage.FileStorage) MailRepository {
	return &mailRepository{db: db, fileStorage: fileStorage}
}

// Create creates a new mail record
func (r *mailRepository) Create(ctx context.Context, mail *models.Mail) error {
	result := r.db.WithContext(ctx).Create(mail)
	if result.Error != nil {
		return fmt.Errorf("failed to create mail: %w", result.Error)
	}
	return nil
}

// GetByIDForUser retrieves a mail by ID, restricted to its owner,
// with attachments preloaded
func (r *mailRepository) GetByIDForUser(ctx context.Context, id, userID uint) (*models.Mail, error) {
	var mail models.Mail
	result := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("id = ? AND created_by_id = ?", id, userID).
		First(&mail)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get mail by ID: %w", result.Error)
	}
	return &mail, nil
}

// Update persists all fields of the mail. UpdatedAt advances automatically.
func (r *mailRepository) Update(ctx context.Context, mail *models.Mail) error {
	result := r.db.WithContext(ctx).Save(mail)
	if result.Error != nil {
		return fmt.Errorf("failed to update mail: %w", result.Error)
	}
	return nil
}

// DeleteForUser deletes a mail owned by the user, its attachment rows,
// and the attachments' stored files.
func (r *mailRepository) DeleteForUser(ctx context.Context, id, userID uint) error {
	mail, err := r.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("mail_id = ?", mail.ID).Delete(&models.Attachment{}).Error; err != nil {
			return fmt.Errorf("failed to delete attachments: %w", err)
		}
		if err := tx.Delete(&models.Mail{}, mail.ID).Error; err != nil {
			return fmt.Errorf("failed to delete mail: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Remove stored files only after the rows are gone. A file that is
	// already missing is not an error.
	if r.fileStorage != nil {
		for _, a := range mail.Attachments {
			if a.Filename != "" {
				_ = r.fileStorage.Delete(a.Filename)
			}
		}
	}

	return nil
}

// applyFilters appends the filter predicates to the query
func applyFilters(q *gorm.DB, f MailFilter) *gorm.DB {
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Sender != "" {
		q = q.Where("LOWER(sender) LIKE ?", "%"+strings.ToLower(f.Sender)+"%")
	}
	if f.Recipient != "" {
		q = q.Where("LOWER(recipient) LIKE ?", "%"+strings.ToLower(f.Recipient)+"%")
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where(
			"LOWER(subject) LIKE ? OR LOWER(sender) LIKE ? OR LOWER(recipient) LIKE ? OR LOWER(notes) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if f.DateFrom != nil {
		q = q.Where("received_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("received_date <= ?", *f.DateTo)
	}
	return q
}

// ListByUserWithFilters returns one page of the user's mail matching the
// filter, ordered by receivedDate descending, plus the total count over
// the same predicate.
func (r *mailRepository) ListByUserWithFilters(ctx context.Context, userID uint, filter MailFilter, page, limit int) ([]models.Mail, int64, error) {
	filter = filter.Normalize()
	if page < 1 {
		page = 1
	}

	base := r.db.WithContext(ctx).Model(&models.Mail{}).Where("created_by_id = ?", userID)
	base = applyFilters(base, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count mails: %w", err)
	}

	var mails []models.Mail
	err := base.Session(&gorm.Session{}).
		Preload("Attachments").
		Order("received_date DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&mails).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list mails: %w", err)
	}

	return mails, total, nil
}

// FindOverdueByUser returns the user's mail with dueDate in the past and
// status not completed, ordered by dueDate ascending
func (r *mailRepository) FindOverdueByUser(ctx context.Context, userID uint, now time.Time) ([]models.Mail, error) {
	var mails []models.Mail
	err := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("created_by_id = ? AND due_date < ? AND status != ?", userID, now, models.StatusCompleted).
		Order("due_date ASC").
		Find(&mails).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find overdue mails: %w", err)
	}
	return mails, nil
}

// StatsByUser counts the user's mail per status plus the overdue count.
// Statuses with no rows report zero.
func (r *mailRepository) StatsByUser(ctx context.Context, userID uint, now time.Time) (*models.MailStats, error) {
	type statusCount struct {
		Status models.MailStatus
		Count  int64
	}

	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Mail{}).
		Select("status, COUNT(id) as count").
		Where("created_by_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute mail stats: %w", err)
	}

	stats := &models.MailStats{}
	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status {
		case models.StatusPending:
			stats.Pending = row.Count
		case models.StatusInProgress:
			stats.InProgress = row.Count
		case models.StatusCompleted:
			stats.Completed = row.Count
		case models.StatusArchived:
			stats.Archived = row.Count
		}
	}

	err = r.db.WithContext(ctx).
		Model(&models.Mail{}).
		Where("created_by_id = ? AND due_date < ? AND status != ?", userID, now, models.StatusCompleted).
		Count(&stats.Overdue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue mails: %w", err)
	}

	return stats, nil
}

// GlobalStats counts mail across all users, grouped by status and type
func (r *mailRepository) GlobalStats(ctx context.Context) (*GlobalMailStats, error) {
	stats := &GlobalMailStats{
		ByStatus: make(map[string]int64),
		ByType:   make(map[string]int64),
	}

	if err := r.db.WithContext(ctx).Model(&models.Mail{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count mails: %w", err)
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byStatus []bucket
	err := r.db.WithContext(ctx).
		Model(&models.Mail{}).
		Select("status as key, COUNT(id) as count").
		Group("status").
		Scan(&byStatus).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count mails by status: %w", err)
	}
	for _, b := range byStatus {
		stats.ByStatus[b.Key] = b.Count
	}

	var byType []bucket
	err = r.db.WithContext(ctx).
		Model(&models.Mail{}).
		Select("type as key, COUNT(id) as count").
		Group("type").
		Scan(&byType).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count mails by type: %w", err)
	}
	for _, b := range byType {
		stats.ByType[b.Key] = b.Count
	}

	return stats, nil
}

// CountByUser counts all mail owned by the user
func (r *mailRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Mail{}).Where("created_by_id = ?", userID).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count mails: %w", result.Error)
	}
	return count, nil
}
