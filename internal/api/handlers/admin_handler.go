package handlers

import (
	"errors"
	"strconv"

	"github.com/courrierhq/courrier-backend/internal/api/response"
	"github.com/courrierhq/courrier-backend/internal/auth"
	"github.com/courrierhq/courrier-backend/internal/models"
	"github.com/courrierhq/courrier-backend/internal/repository"
	"github.com/courrierhq/courrier-backend/internal/validator"
	"github.com/labstack/echo/v4"
)

// AdminHandler handles user management and instance-wide reporting
type AdminHandler struct {
	userRepo repository.UserRepository
	mailRepo repository.MailRepository
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(userRepo repository.UserRepository, mailRepo repository.MailRepository) *AdminHandler {
	return &AdminHandler{
		userRepo: userRepo,
		mailRepo: mailRepo,
	}
}

// adminUser is the user shape returned on admin endpoints, enriched with
// per-user mail volume
type adminUser struct {
	ID        uint            `json:"id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Roles     models.RoleList `json:"roles"`
	IsAdmin   bool            `json:"isAdmin"`
	MailCount int64           `json:"mailCount"`
	CreatedAt string          `json:"createdAt"`
}

func (h *AdminHandler) adminUserView(c echo.Context, u *models.User) (adminUser, error) {
	count, err := h.mailRepo.CountByUser(c.Request().Context(), u.ID)
	if err != nil {
		return adminUser{}, err
	}
	return adminUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Roles:     u.Roles,
		IsAdmin:   u.IsAdmin(),
		MailCount: count,
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.userRepo.List(c.Request().Context())
	if err != nil {
		return response.InternalError(c, "failed to list users")
	}

	views := make([]adminUser, 0, len(users))
	for i := range users {
		view, err := h.adminUserView(c, &users[i])
		if err != nil {
			return response.InternalError(c, "failed to list users")
		}
		views = append(views, view)
	}
	return response.OK(c, views)
}

type adminUserRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Name     string   `json:"name"`
	Roles    []string `json:"roles"`
}

// CreateUser handles POST /api/admin/users
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req adminUserRequest
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
		Roles:    models.NormalizeRoles(req.Roles),
	}
	if err := h.userRepo.Create(c.Request().Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return response.Conflict(c, "user already exists")
		}
		return response.InternalError(c, "failed to create user")
	}

	view, err := h.adminUserView(c, user)
	if err != nil {
		return response.InternalError(c, "failed to create user")
	}
	return response.Created(c, view)
}

// UpdateUser handles PUT /api/admin/users/:id. Fields omitted from the
// payload keep their current value.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid user ID")
	}

	user, err := h.userRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "user not found")
		}
		return response.InternalError(c, "failed to load user")
	}

	var req adminUserRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid JSON")
	}

	if req.Email != "" {
		if err := validator.ValidateEmail(req.Email); err != nil {
			return response.BadRequest(c, "invalid email address")
		}
		user.Email = req.Email
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return response.InternalError(c, "failed to update user")
		}
		user.Password = hash
	}
	if req.Roles != nil {
		user.Roles = models.NormalizeRoles(req.Roles)
	}

	if err := h.userRepo.Update(c.Request().Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return response.Conflict(c, "email already in use")
		}
		return response.InternalError(c, "failed to update user")
	}

	view, err := h.adminUserView(c, user)
	if err != nil {
		return response.InternalError(c, "failed to update user")
	}
	return response.OK(c, view)
}

// DeleteUser handles DELETE /api/admin/users/:id. An admin cannot delete
// their own account.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid user ID")
	}
	if uint(id) == auth.UserIDFrom(c) {
		return response.BadRequest(c, "cannot delete your own account")
	}

	if err := h.userRepo.Delete(c.Request().Context(), uint(id)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "user not found")
		}
		return response.InternalError(c, "failed to delete user")
	}
	return response.NoContent(c)
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	totalUsers, err := h.userRepo.Count(ctx)
	if err != nil {
		return response.InternalError(c, "failed to compute stats")
	}
	adminUsers, err := h.userRepo.CountAdmins(ctx)
	if err != nil {
		return response.InternalError(c, "failed to compute stats")
	}
	mailStats, err := h.mailRepo.GlobalStats(ctx)
	if err != nil {
		return response.InternalError(c, "failed to compute stats")
	}

	return response.OK(c, map[string]interface{}{
		"users": map[string]interface{}{
			"total":   totalUsers,
			"admins":  adminUsers,
			"regular": totalUsers - adminUsers,
		},
		"mails": mailStats,
	})
}
