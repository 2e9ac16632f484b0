// Package middleware provides HTTP middleware for the Courrier API.
package middleware

import (
	"strings"

	"github.com/courrierhq/courrier-backend/internal/api/response"
	"github.com/courrierhq/courrier-backend/internal/auth"
	"github.com/courrierhq/courrier-backend/internal/logger"
	"github.com/labstack/echo/v4"
)

// JWTAuth validates the bearer token on every request and stores the
// caller's claims on the context. Paths listed in skip are let through
// unauthenticated (registration and login).
func JWTAuth(secret []byte, seclog *logger.SecurityLogger, skip ...string) echo.MiddlewareFunc {
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipped[c.Path()] {
				return next(c)
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				if seclog != nil {
					seclog.AuthFailure(c.RealIP(), c.Path(), "missing authorization header")
				}
				return response.Unauthorized(c, "missing authorization header")
			}

			if !strings.HasPrefix(header, "Bearer ") {
				if seclog != nil {
					seclog.AuthFailure(c.RealIP(), c.Path(), "malformed authorization header")
				}
				return response.Unauthorized(c, "authorization header must use the Bearer scheme")
			}

			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			claims, err := auth.ParseToken(token, secret)
			if err != nil {
				if seclog != nil {
					seclog.AuthFailure(c.RealIP(), c.Path(), "invalid token")
				}
				return response.Unauthorized(c, "invalid or expired token")
			}

			auth.SetClaims(c, claims)
			return next(c)
		}
	}
}

// RequireAdmin rejects callers without the admin role with 403.
// Must run after JWTAuth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !auth.IsAdmin(c) {
				return response.Forbidden(c, "admin role required")
			}
			return next(c)
		}
	}
}
