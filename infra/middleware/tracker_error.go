package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"jobtracker_server/pkg/apperr"
	"jobtracker_server/pkg/logger"
	"jobtracker_server/pkg/response"
)

const localRequestID = "request_id"

// ErrorHandler is a centralized error handler for Fiber
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	log = log.With().Str("component", "http").Logger()

	return func(c *fiber.Ctx, err error) error {
		requestID, _ := c.Locals(localRequestID).(string)

		var (
			appErr   *apperr.AppError
			fiberErr *fiber.Error
		)
		switch {
		case errors.As(err, &appErr):
			ev := log.Warn()
			if appErr.Status >= http.StatusInternalServerError {
				ev = log.Error()
			}
			ev.Err(appErr.Err).
				Str("request_id", requestID).
				Str("error_code", appErr.Code).
				Msg(appErr.Message)
			return response.FromError(c, appErr)

		case errors.As(err, &fiberErr):
			return response.Error(c, fiberErr.Code, mapHTTPStatusToCode(fiberErr.Code), fiberErr.Message)

		default:
			log.Error().Err(err).
				Str("request_id", requestID).
				Str("path", c.Path()).
				Msg("unexpected error")
			return response.FromError(c, err)
		}
	}
}

// RequestID middleware adds a unique request ID to each request
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Locals(localRequestID, requestID)
		c.Set("X-Request-ID", requestID)
		c.SetUserContext(context.WithValue(c.UserContext(), logger.RequestIDKey, requestID))
		return c.Next()
	}
}

// RequestLogger logs incoming requests and their responses
func RequestLogger(log zerolog.Logger) fiber.Handler {
	log = log.With().Str("component", "http").Logger()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// the error handler has not run yet
			status = apperr.GetHTTPStatus(err)
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
		}
		requestID, _ := c.Locals(localRequestID).(string)

		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev.Str("request_id", requestID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Float64("duration_ms", float64(time.Since(start).Microseconds())/1000.0).
			Str("ip", c.IP()).
			Msg("request")

		return err
	}
}

// Recover middleware recovers from panics
func Recover(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				requestID, _ := c.Locals(localRequestID).(string)
				log.Error().
					Str("request_id", requestID).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("method", c.Method()).
					Str("path", c.Path()).
					Str("stack", string(debug.Stack())).
					Msg("panic recovered")
				err = response.Error(c, http.StatusInternalServerError, apperr.CodeInternalError, "An unexpected error occurred")
			}
		}()
		return c.Next()
	}
}

func mapHTTPStatusToCode(status int) string {
	switch status {
	case 400:
		return apperr.CodeBadRequest
	case 401:
		return apperr.CodeUnauthorized
	case 404:
		return apperr.CodeNotFound
	case 405:
		return "METHOD_NOT_ALLOWED"
	case 429:
		return "RATE_LIMITED"
	case 500:
		return apperr.CodeInternalError
	case 502, 503, 504:
		return "SERVICE_UNAVAILABLE"
	default:
		return "UNKNOWN_ERROR"
	}
}
