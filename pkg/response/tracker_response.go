// Package response builds the JSON envelope every API handler returns.
package response

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"jobtracker_server/pkg/apperr"
)

// =============================================================================
// Standard API Response
// =============================================================================

// Response is the standard API response structure.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo contains error details.
type ErrorInfo struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Meta carries list metadata.
type Meta struct {
	Total int `json:"total"`
}

// =============================================================================
// Response Builders
// =============================================================================

func OK(c *fiber.Ctx, data any) error {
	return c.JSON(Response{Success: true, Data: data})
}

// List returns data with its length as meta.total.
func List[T any](c *fiber.Ctx, items []T) error {
	if items == nil {
		items = []T{}
	}
	return c.JSON(Response{Success: true, Data: items, Meta: &Meta{Total: len(items)}})
}

func Created(c *fiber.Ctx, data any) error {
	return c.Status(http.StatusCreated).JSON(Response{Success: true, Data: data})
}

func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(http.StatusNoContent)
}

// Error returns an error response.
func Error(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(Response{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message},
	})
}

// FromError renders err with the status and code it carries.
// Errors that are not AppErrors become a generic 500.
func FromError(c *fiber.Ctx, err error) error {
	var appErr *apperr.AppError
	if !errors.As(err, &appErr) {
		return Error(c, http.StatusInternalServerError, apperr.CodeInternalError, "An unexpected error occurred")
	}
	status := appErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.Status(status).JSON(Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		},
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, http.StatusBadRequest, apperr.CodeBadRequest, message)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, http.StatusUnauthorized, apperr.CodeUnauthorized, message)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, http.StatusNotFound, apperr.CodeNotFound, message)
}
