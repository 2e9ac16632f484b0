package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// CORS returns CORS middleware restricted to the configured origins.
// origins is a comma-separated list; empty defaults to localhost only.
func CORS(origins string, production bool) echo.MiddlewareFunc {
	if origins == "" {
		origins = "http://localhost:3000"
	}

	list := strings.Split(origins, ",")
	for i := range list {
		list[i] = strings.TrimSpace(list[i])
	}

	if production {
		filtered := make([]string, 0, len(list))
		for _, origin := range list {
			if origin != "*" {
				filtered = append(filtered, origin)
			}
		}
		list = filtered
		if len(list) == 0 {
			list = []string{"http://localhost:3000"}
		}
	}

	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     list,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.PATCH, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
