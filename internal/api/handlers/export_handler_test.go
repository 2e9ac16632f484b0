package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/courrierhq/courrier-backend/internal/auth"
	"github.com/courrierhq/courrier-backend/internal/models"
	"github.com/courrierhq/courrier-backend/tests/mocks"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ExportHandlerTestSuite is the test suite for ExportHandler
type ExportHandlerTestSuite struct {
	suite.Suite
	echo         *echo.Echo
	handler      *ExportHandler
	mockMailRepo *mocks.MockMailRepository
	mockUserRepo *mocks.MockUserRepository
}

// SetupTest runs before each test
func (s *ExportHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.mockMailRepo = new(mocks.MockMailRepository)
	s.mockUserRepo = new(mocks.MockUserRepository)
	s.handler = NewExportHandler(s.mockMailRepo, s.mockUserRepo)
}

// TearDownTest runs after each test
func (s *ExportHandlerTestSuite) TearDownTest() {
	s.mockMailRepo.AssertExpectations(s.T())
	s.mockUserRepo.AssertExpectations(s.T())
}

// TestExportHandlerTestSuite runs the test suite
func TestExportHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ExportHandlerTestSuite))
}

func (s *ExportHandlerTestSuite) createContext(path string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	auth.SetClaims(c, &auth.Claims{UserID: testUserID, Email: "owner@example.com", Roles: []string{models.RoleUser}})
	return c, rec
}

func (s *ExportHandlerTestSuite) twoMails() []models.Mail {
	due := time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC)
	return []models.Mail{
		{
			ID:           1,
			Type:         models.TypeInvoice,
			Sender:       "EDF",
			Recipient:    "Jane Doe",
			Subject:      `Bill "January"`,
			ReceivedDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Status:       models.StatusPending,
			DueDate:      &due,
			Notes:        "pay online",
		},
		{
			ID:           2,
			Type:         models.TypeBank,
			Sender:       "Bank",
			Recipient:    "John Doe",
			Subject:      "Statement",
			ReceivedDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			Status:       models.StatusCompleted,
		},
	}
}

// ==================== CSV Tests ====================

func (s *ExportHandlerTestSuite) TestCSV_TwoMailsThreeLines() {
	s.mockMailRepo.On("ListByUserWithFilters", mock.Anything, testUserID, mock.Anything, 1, exportPageLimit).
		Return(s.twoMails(), int64(2), nil)

	c, rec := s.createContext("/api/export/csv")

	err := s.handler.CSV(c)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Equal(s.T(), "text/csv", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(s.T(), rec.Header().Get(echo.HeaderContentDisposition), "mails-export-")

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	require.Len(s.T(), lines, 3)
	assert.Equal(s.T(), csvHeader, lines[0])

	// Every field double-quoted, inner quotes doubled, dates as Y-m-d
	assert.Equal(s.T(),
		`"Bill ""January""","invoice","EDF","Jane Doe","2024-01-15","pending","2024-01-30","","pay online"`,
		lines[1])
	assert.Equal(s.T(),
		`"Statement","bank","Bank","John Doe","2024-02-01","completed","","",""`,
		lines[2])
}

func (s *ExportHandlerTestSuite) TestCSV_ForwardsFilters() {
	s.mockMailRepo.On("ListByUserWithFilters", mock.Anything, testUserID,
		mock.MatchedBy(func(f interface{}) bool { return true }), 1, exportPageLimit).
		Return([]models.Mail{}, int64(0), nil)

	c, rec := s.createContext("/api/export/csv?type=invoice&status=pending")

	err := s.handler.CSV(c)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	assert.Len(s.T(), lines, 1) // header only
}

// ==================== PDF Tests ====================

func (s *ExportHandlerTestSuite) TestPDF_StructuredPayload() {
	stats := &models.MailStats{Total: 2, Pending: 1, Completed: 1}
	s.mockMailRepo.On("ListByUserWithFilters", mock.Anything, testUserID, mock.Anything, 1, exportPageLimit).
		Return(s.twoMails(), int64(2), nil)
	s.mockMailRepo.On("StatsByUser", mock.Anything, testUserID, mock.Anything).Return(stats, nil)
	s.mockUserRepo.On("GetByID", mock.Anything, testUserID).
		Return(&models.User{ID: testUserID, Name: "Owner", Email: "owner@example.com"}, nil)

	c, rec := s.createContext("/api/export/pdf")

	err := s.handler.PDF(c)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var got struct {
		Mails []struct {
			Subject      string  `json:"subject"`
			ReceivedDate string  `json:"receivedDate"`
			DueDate      *string `json:"dueDate"`
		} `json:"mails"`
		Stats      models.MailStats `json:"stats"`
		ExportDate string           `json:"exportDate"`
		User       string           `json:"user"`
	}
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(s.T(), got.Mails, 2)
	assert.Equal(s.T(), "2024-01-15", got.Mails[0].ReceivedDate)
	require.NotNil(s.T(), got.Mails[0].DueDate)
	assert.Equal(s.T(), "2024-01-30", *got.Mails[0].DueDate)
	assert.Nil(s.T(), got.Mails[1].DueDate)
	assert.Equal(s.T(), *stats, got.Stats)
	assert.Equal(s.T(), "Owner", got.User)
	assert.NotEmpty(s.T(), got.ExportDate)
}
