package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/courrierhq/courrier-backend/internal/auth"
	"github.com/courrierhq/courrier-backend/internal/models"
	"github.com/courrierhq/courrier-backend/internal/repository"
	"github.com/courrierhq/courrier-backend/tests/mocks"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var testJWTSecret = []byte("test-secret-key-for-auth-handler-tests")

// AuthHandlerTestSuite is the test suite for AuthHandler
type AuthHandlerTestSuite struct {
	suite.Suite
	echo         *echo.Echo
	handler      *AuthHandler
	mockUserRepo *mocks.MockUserRepository
}

// SetupTest runs before each test
func (s *AuthHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.mockUserRepo = new(mocks.MockUserRepository)
	s.handler = NewAuthHandler(s.mockUserRepo, testJWTSecret)
}

// TearDownTest runs after each test
func (s *AuthHandlerTestSuite) TearDownTest() {
	s.mockUserRepo.AssertExpectations(s.T())
}

// TestAuthHandlerTestSuite runs the test suite
func TestAuthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (s *AuthHandlerTestSuite) createContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return s.echo.NewContext(req, rec), rec
}

// ==================== Register Tests ====================

func (s *AuthHandlerTestSuite) TestRegister_Success() {
	s.mockUserRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		// Password must be stored hashed, never verbatim
		return u.Email == "jane@example.com" && u.Name == "Jane" &&
			u.Password != "secret123" && auth.CheckPassword(u.Password, "secret123") &&
			!u.IsAdmin()
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = 1
	}).Return(nil)

	c, rec := s.createContext(http.MethodPost, "/api/register",
		`{"email": "jane@example.com", "password": "secret123", "name": "Jane"}`)

	err := s.handler.Register(c)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusCreated, rec.Code)
	// The password hash never reaches the wire
	assert.NotContains(s.T(), rec.Body.String(), "password")
}

func (s *AuthHandlerTestSuite) TestRegister_MissingFields() {
	c, rec := s.createContext(http.MethodPost, "/api/register", `{"email": "jane@example.com"}`)

	err := s.handler.Register(c)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *AuthHandlerTestSuite) TestRegister_InvalidEmail() {
	c, rec := s.createContext(http.MethodPost, "/api/register",
		`{"email": "not-an-email", "password": "secret123", "name": "Jane"}`)

	err := s.handler.Register(c)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *AuthHandlerTestSuite) TestRegister_DuplicateEmail() {
	s.mockUserRepo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateEntry)

	c, rec := s.createContext(http.MethodPost, "/api/register",
		`{"email": "jane@example.com", "password": "secret123", "name": "Jane"}`)

	err := s.handler.Register(c)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusConflict, rec.Code)
	assert.Contains(s.T(), rec.Body.String(), "DUPLICATE_ENTRY")
}

// ==================== Login Tests ====================

func (s *AuthHandlerTestSuite) testUser() *models.User {
	hash, err := auth.HashPassword("secret123")
	require.NoError(s.T(), err)
	return &models.User{
		ID:       1,
		Email:    "jane@example.com",
		Password: hash,
		Name:     "Jane",
		Roles:    models.NormalizeRoles(nil),
	}
}

func (s *AuthHandlerTestSuite) TestLogin_Success() {
	s.mockUserRepo.On("GetByEmail", mock.Anything, "jane@example.com").Return(s.testUser(), nil)

	c, rec := s.createContext(http.MethodPost, "/api/login_check",
		`{"email": "jane@example.com", "password": "secret123"}`)

	err := s.handler.Login(c)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var got struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotEmpty(s.T(), got.Token)
	assert.Equal(s.T(), "jane@example.com", got.User.Email)

	// The issued token carries the identity used downstream
	claims, err := auth.ParseToken(got.Token, testJWTSecret)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), uint(1), claims.UserID)
	assert.Equal(s.T(), "jane@example.com", claims.Email)
}

func (s *AuthHandlerTestSuite) TestLogin_UsernameAlias() {
	s.mockUserRepo.On("GetByEmail", mock.Anything, "jane@example.com").Return(s.testUser(), nil)

	c, rec := s.createContext(http.MethodPost, "/api/login_check",
		`{"username": "jane@example.com", "password": "secret123"}`)

	err := s.handler.Login(c)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusOK, rec.Code)
}

func (s *AuthHandlerTestSuite) TestLogin_WrongPassword() {
	s.mockUserRepo.On("GetByEmail", mock.Anything, "jane@example.com").Return(s.testUser(), nil)

	c, rec := s.createContext(http.MethodPost, "/api/login_check",
		`{"email": "jane@example.com", "password": "wrong"}`)

	err := s.handler.Login(c)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusUnauthorized, rec.Code)
}

func (s *AuthHandlerTestSuite) TestLogin_UnknownEmail() {
	s.mockUserRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNotFound)

	c, rec := s.createContext(http.MethodPost, "/api/login_check",
		`{"email": "ghost@example.com", "password": "secret123"}`)

	err := s.handler.Login(c)

	require.NoError(s.T(), err)
	// Same response as a wrong password, no account enumeration
	assert.Equal(s.T(), http.StatusUnauthorized, rec.Code)
}

// ==================== Profile Tests ====================

func (s *AuthHandlerTestSuite) TestProfile_Success() {
	s.mockUserRepo.On("GetByID", mock.Anything, uint(1)).Return(s.testUser(), nil)

	c, rec := s.createContext(http.MethodGet, "/api/profile", "")
	auth.SetClaims(c, &auth.Claims{UserID: 1, Email: "jane@example.com", Roles: []string{models.RoleUser}})

	err := s.handler.Profile(c)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Contains(s.T(), rec.Body.String(), "jane@example.com")
}

func (s *AuthHandlerTestSuite) TestProfile_UserGone() {
	s.mockUserRepo.On("GetByID", mock.Anything, uint(1)).Return(nil, repository.ErrNotFound)

	c, rec := s.createContext(http.MethodGet, "/api/profile", "")
	auth.SetClaims(c, &auth.Claims{UserID: 1})

	err := s.handler.Profile(c)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusNotFound, rec.Code)
}
