package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/courrierhq/courrier-backend/internal/api/handlers"
	"github.com/courrierhq/courrier-backend/internal/api/middleware"
	"github.com/courrierhq/courrier-backend/internal/api/response"
	"github.com/courrierhq/courrier-backend/internal/config"
	"github.com/courrierhq/courrier-backend/internal/logger"
	"github.com/courrierhq/courrier-backend/internal/repository"
	"github.com/courrierhq/courrier-backend/internal/storage"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB          *gorm.DB
	FileStorage storage.FileStorage
	Config      *config.Config
	Logger      *slog.Logger
	SecLogger   *logger.SecurityLogger
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpErrorHandler

	seclog := cfg.SecLogger
	if seclog == nil {
		seclog = logger.NewSecurityLogger()
	}

	// Middleware order matters: recover first, then security headers,
	// CORS, body limit, rate limiting, request logging.
	e.Use(middleware.Recover())
	e.Use(middleware.SecureHeaders())
	e.Use(middleware.CORS(cfg.Config.AllowedOrigins, cfg.Config.AppEnv == "production"))
	// Above the largest multipart upload a handler may still accept, so
	// oversized files reach the storage validation and its 400 response
	// instead of being cut off mid-transport.
	e.Use(middleware.BodyLimit("16M"))
	e.Use(middleware.RateLimiter(cfg.Config.RateLimitRequests, cfg.Config.RateLimitBurst, seclog))
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	userRepo := repository.NewUserRepository(cfg.DB)
	mailRepo := repository.NewMailRepository(cfg.DB, cfg.FileStorage)
	attachmentRepo := repository.NewAttachmentRepository(cfg.DB, cfg.FileStorage)

	healthHandler := handlers.NewHealthHandler(cfg.DB)
	authHandler := handlers.NewAuthHandler(userRepo, []byte(cfg.Config.JWTSecret))
	mailHandler := handlers.NewMailHandler(mailRepo)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentRepo, mailRepo, cfg.FileStorage, seclog)
	exportHandler := handlers.NewExportHandler(mailRepo, userRepo)
	adminHandler := handlers.NewAdminHandler(userRepo, mailRepo)

	// Probes stay outside the /api group and require no token
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	api := e.Group("/api")
	api.Use(middleware.JWTAuth([]byte(cfg.Config.JWTSecret), seclog,
		"/api/register", "/api/login_check"))

	// Auth routes
	api.POST("/register", authHandler.Register)
	api.POST("/login_check", authHandler.Login)
	api.GET("/profile", authHandler.Profile)

	// Mail routes
	mails := api.Group("/mails")
	mails.GET("", mailHandler.List)
	mails.POST("", mailHandler.Create)
	mails.GET("/stats", mailHandler.Stats)
	mails.GET("/overdue", mailHandler.Overdue)
	mails.GET("/:id", mailHandler.Get)
	mails.PUT("/:id", mailHandler.Update)
	mails.PATCH("/:id", mailHandler.Update)
	mails.DELETE("/:id", mailHandler.Delete)

	// Attachment routes (upload nested under the owning mail)
	mails.POST("/:id/attachments", attachmentHandler.Upload)
	attachments := api.Group("/attachments")
	attachments.GET("/:id", attachmentHandler.Download)
	attachments.DELETE("/:id", attachmentHandler.Delete)

	// Export routes
	export := api.Group("/export")
	export.GET("/csv", exportHandler.CSV)
	export.GET("/pdf", exportHandler.PDF)

	// Admin routes
	admin := api.Group("/admin", middleware.RequireAdmin())
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users", adminHandler.CreateUser)
	admin.PUT("/users/:id", adminHandler.UpdateUser)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.GET("/stats", adminHandler.Stats)

	return e
}

// httpErrorHandler renders errors raised outside the handlers (body
// limit, routing) in the same {error, code} envelope the handlers use.
// A body exceeding the transport limit is a client input problem, so it
// maps to the same 400 the upload validation produces.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		_ = response.InternalError(c, "internal server error")
		return
	}

	switch httpErr.Code {
	case http.StatusRequestEntityTooLarge:
		_ = response.BadRequest(c, "file too large (max 10MB)")
	case http.StatusNotFound:
		_ = response.NotFound(c, "resource not found")
	case http.StatusMethodNotAllowed:
		_ = c.JSON(http.StatusMethodNotAllowed, response.ErrorResponse{Error: "method not allowed"})
	default:
		_ = c.JSON(httpErr.Code, response.ErrorResponse{Error: fmt.Sprintf("%v", httpErr.Message)})
	}
}
