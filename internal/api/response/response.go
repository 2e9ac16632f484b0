// Package response provides helpers emitting the API's wire format.
package response

import (
	"net/http"

	apperrors "github.com/courrierhq/courrier-backend/internal/errors"
	"github.com/courrierhq/courrier-backend/internal/validator"
	"github.com/labstack/echo/v4"
)

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ValidationResponse carries field-level validation errors
type ValidationResponse struct {
	Errors []validator.FieldError `json:"errors"`
	Code   string                 `json:"code"`
}

// PaginatedResponse represents a paginated list response
type PaginatedResponse struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Pages int64       `json:"pages"`
}

// OK returns a 200 response with the payload as the body
func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// Created returns a 201 Created response
func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

// NoContent returns a 204 No Content response
func NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// Paginated returns a paginated list response. Pages is derived from
// total and limit so that page navigation stays consistent with the
// count over the same filter predicate.
func Paginated(c echo.Context, data interface{}, total int64, page, limit int) error {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return c.JSON(http.StatusOK, PaginatedResponse{
		Data:  data,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: pages,
	})
}

// BadRequest returns a 400 Bad Request response
func BadRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: message,
		Code:  apperrors.CodeInvalidInput,
	})
}

// ValidationFailed returns a 400 response with field-level messages
func ValidationFailed(c echo.Context, errs []validator.FieldError) error {
	return c.JSON(http.StatusBadRequest, ValidationResponse{
		Errors: errs,
		Code:   apperrors.CodeInvalidInput,
	})
}

// Unauthorized returns a 401 Unauthorized response
func Unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error: message,
		Code:  apperrors.CodeUnauthorized,
	})
}

// Forbidden returns a 403 Forbidden response
func Forbidden(c echo.Context, message string) error {
	return c.JSON(http.StatusForbidden, ErrorResponse{
		Error: message,
		Code:  apperrors.CodeForbidden,
	})
}

// NotFound returns a 404 Not Found response
func NotFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, ErrorResponse{
		Error: message,
		Code:  apperrors.CodeNotFound,
	})
}

// Conflict returns a 409 Conflict response
func Conflict(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, ErrorResponse{
		Error: message,
		Code:  apperrors.CodeDuplicateEntry,
	})
}

// InternalError returns a 500 Internal Server Error response
func InternalError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: message,
		Code:  apperrors.CodeInternalError,
	})
}

// Error maps an application error to the appropriate status code
func Error(c echo.Context, err error) error {
	code := apperrors.GetErrorCode(err)
	return c.JSON(httpStatus(code), ErrorResponse{
		Error: err.Error(),
		Code:  code,
	})
}

// httpStatus maps error codes to HTTP status codes
func httpStatus(code string) int {
	switch code {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeDuplicateEntry:
		return http.StatusConflict
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
