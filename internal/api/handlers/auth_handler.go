package handlers

import (
	"errors"

	"github.com/courrierhq/courrier-backend/internal/api/response"
	"github.com/courrierhq/courrier-backend/internal/auth"
	"github.com/courrierhq/courrier-backend/internal/models"
	"github.com/courrierhq/courrier-backend/internal/repository"
	"github.com/courrierhq/courrier-backend/internal/validator"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles registration, login and profile requests
type AuthHandler struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repository.UserRepository, jwtSecret []byte) *AuthHandler {
	return &AuthHandler{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"` // accepted as an alias for email
	Password string `json:"password"`
}

// Register handles POST /api/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid JSON")
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		return response.BadRequest(c, "missing required fields")
	}
	if err := validator.ValidateEmail(req.Email); err != nil {
		return response.BadRequest(c, "invalid email address")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return response.InternalError(c, "failed to create user")
	}

	user := &models.User{
		Email:    req.Email,
		Password: hash,
		Name:     req.Name,
		Roles:    models.NormalizeRoles(nil),
	}

	if err := h.userRepo.Create(c.Request().Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return response.Conflict(c, "user already exists")
		}
		return response.InternalError(c, "failed to create user")
	}

	return response.Created(c, map[string]interface{}{
		"message": "User created successfully",
		"user":    user,
	})
}

// Login handles POST /api/login_check, exchanging email+password for a
// bearer token
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid JSON")
	}

	email := req.Email
	if email == "" {
		email = req.Username
	}
	if email == "" || req.Password == "" {
		return response.BadRequest(c, "missing credentials")
	}

	user, err := h.userRepo.GetByEmail(c.Request().Context(), email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Unauthorized(c, "invalid credentials")
		}
		return response.InternalError(c, "login failed")
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return response.Unauthorized(c, "invalid credentials")
	}

	token, err := auth.GenerateToken(user.ID, user.Email, user.Roles, h.jwtSecret, auth.DefaultTokenValidity)
	if err != nil {
		return response.InternalError(c, "login failed")
	}

	return response.OK(c, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Profile handles GET /api/profile
func (h *AuthHandler) Profile(c echo.Context) error {
	user, err := h.userRepo.GetByID(c.Request().Context(), auth.UserIDFrom(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "user not found")
		}
		return response.InternalError(c, "failed to load profile")
	}

	return response.OK(c, user)
}
