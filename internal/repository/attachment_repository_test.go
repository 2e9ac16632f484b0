package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/courrierhq/courrier-backend/internal/models"
	"github.com/courrierhq/courrier-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AttachmentRepositoryTestSuite is the test suite for AttachmentRepository
type AttachmentRepositoryTestSuite struct {
	suite.Suite
	db          *gorm.DB
	repo        AttachmentRepository
	fileStorage storage.FileStorage
	uploadDir   string
	owner       *models.User
	other       *models.User
	mail        *models.Mail
}

// SetupSuite runs once before all tests
func (s *AttachmentRepositoryTestSuite) SetupSuite() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	db.Exec("PRAGMA foreign_keys = ON")

	err = db.AutoMigrate(&models.User{}, &models.Mail{}, &models.Attachment{})
	require.NoError(s.T(), err)

	s.uploadDir = s.T().TempDir()
	s.fileStorage, err = storage.NewLocalStorage(s.uploadDir)
	require.NoError(s.T(), err)

	s.db = db
	s.repo = NewAttachmentRepository(db, s.fileStorage)
}

// TearDownSuite runs once after all tests
func (s *AttachmentRepositoryTestSuite) TearDownSuite() {
	sqlDB, _ := s.db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SetupTest runs before each test
func (s *AttachmentRepositoryTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM attachments")
	s.db.Exec("DELETE FROM mails")
	s.db.Exec("DELETE FROM users")

	s.owner = &models.User{Email: "owner@example.com", Password: "x", Name: "Owner", Roles: models.NormalizeRoles(nil)}
	require.NoError(s.T(), s.db.Create(s.owner).Error)
	s.other = &models.User{Email: "other@example.com", Password: "x", Name: "Other", Roles: models.NormalizeRoles(nil)}
	require.NoError(s.T(), s.db.Create(s.other).Error)

	s.mail = &models.Mail{
		Type:         models.TypeLetter,
		Sender:       "Sender",
		Recipient:    "Recipient",
		Subject:      "Subject",
		ReceivedDate: time.Now(),
		Status:       models.StatusPending,
		CreatedByID:  s.owner.ID,
	}
	require.NoError(s.T(), s.db.Create(s.mail).Error)
}

// TestAttachmentRepositoryTestSuite runs the test suite
func TestAttachmentRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(AttachmentRepositoryTestSuite))
}

func (s *AttachmentRepositoryTestSuite) createAttachment() (*models.Attachment, string) {
	path, err := s.fileStorage.Save("doc.pdf", strings.NewReader("content"))
	require.NoError(s.T(), err)

	att := &models.Attachment{
		MailID:   s.mail.ID,
		Name:     "doc.pdf",
		Filename: path,
		MimeType: "application/pdf",
		Size:     7,
	}
	require.NoError(s.T(), s.repo.Create(context.Background(), att))
	return att, path
}

func (s *AttachmentRepositoryTestSuite) TestCreate_Success() {
	att, _ := s.createAttachment()

	assert.NotZero(s.T(), att.ID)
	assert.False(s.T(), att.UploadedAt.IsZero())
}

func (s *AttachmentRepositoryTestSuite) TestGetByIDForUser_Owned() {
	att, _ := s.createAttachment()

	got, err := s.repo.GetByIDForUser(context.Background(), att.ID, s.owner.ID)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), att.ID, got.ID)
	assert.Equal(s.T(), "doc.pdf", got.Name)
	assert.Equal(s.T(), "application/pdf", got.MimeType)
}

func (s *AttachmentRepositoryTestSuite) TestGetByIDForUser_NotOwned() {
	att, _ := s.createAttachment()

	got, err := s.repo.GetByIDForUser(context.Background(), att.ID, s.other.ID)

	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.Nil(s.T(), got)
}

func (s *AttachmentRepositoryTestSuite) TestListByMail() {
	s.createAttachment()
	s.createAttachment()

	attachments, err := s.repo.ListByMail(context.Background(), s.mail.ID)

	require.NoError(s.T(), err)
	assert.Len(s.T(), attachments, 2)
}

func (s *AttachmentRepositoryTestSuite) TestDeleteForUser_RemovesRowAndFile() {
	att, path := s.createAttachment()

	err := s.repo.DeleteForUser(context.Background(), att.ID, s.owner.ID)
	require.NoError(s.T(), err)

	var count int64
	s.db.Model(&models.Attachment{}).Count(&count)
	assert.Equal(s.T(), int64(0), count)

	_, statErr := os.Stat(filepath.Join(s.uploadDir, path))
	assert.True(s.T(), os.IsNotExist(statErr))
}

func (s *AttachmentRepositoryTestSuite) TestDeleteForUser_NotOwned() {
	att, path := s.createAttachment()

	err := s.repo.DeleteForUser(context.Background(), att.ID, s.other.ID)

	assert.ErrorIs(s.T(), err, ErrNotFound)

	var count int64
	s.db.Model(&models.Attachment{}).Count(&count)
	assert.Equal(s.T(), int64(1), count)

	_, statErr := os.Stat(filepath.Join(s.uploadDir, path))
	assert.NoError(s.T(), statErr)
}
