package auth

import (
	"github.com/labstack/echo/v4"
)

// claimsContextKey is the echo context key the auth middleware stores
// the caller's claims under.
const claimsContextKey = "auth_claims"

// SetClaims stores the caller's claims on the request context
func SetClaims(c echo.Context, claims *Claims) {
	c.Set(claimsContextKey, claims)
}

// ClaimsFrom retrieves the caller's claims from the request context.
// Returns nil when the auth middleware has not run.
func ClaimsFrom(c echo.Context) *Claims {
	claims, ok := c.Get(claimsContextKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// UserIDFrom returns the authenticated user's ID, or 0 when unauthenticated
func UserIDFrom(c echo.Context) uint {
	claims := ClaimsFrom(c)
	if claims == nil {
		return 0
	}
	return claims.UserID
}

// IsAdmin reports whether the authenticated caller carries the admin role
func IsAdmin(c echo.Context) bool {
	claims := ClaimsFrom(c)
	if claims == nil {
		return false
	}
	for _, r := range claims.Roles {
		if r == "ROLE_ADMIN" {
			return true
		}
	}
	return false
}
