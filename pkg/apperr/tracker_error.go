package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Auth errors
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInvalidToken = "INVALID_TOKEN"

	// Validation errors
	CodeBadRequest   = "BAD_REQUEST"
	CodeInvalidInput = "INVALID_INPUT"
	CodeMissingField = "MISSING_FIELD"

	// Resource errors
	CodeNotFound = "NOT_FOUND"

	// External errors
	CodeOAuthFailed   = "OAUTH_FAILED"
	CodeDatabaseError = "DATABASE_ERROR"
	CodeExternalError = "EXTERNAL_ERROR"

	// Sync pipeline errors
	CodeMailboxUnavailable    = "MAILBOX_UNAVAILABLE"
	CodeEmptyMailbox          = "EMPTY_MAILBOX"
	CodeMessageFetchFailed    = "MESSAGE_FETCH_FAILED"
	CodeClassificationFailed  = "CLASSIFICATION_FAILED"
	CodeSummarizationFailed   = "SUMMARIZATION_FAILED"
	CodeMalformedModelOutput  = "MALFORMED_MODEL_OUTPUT"
	CodeSyncFailed            = "SYNC_FAILED"
	CodeModelNotConfigured    = "MODEL_NOT_CONFIGURED"
	CodeMailboxNotConfigured  = "MAILBOX_NOT_CONFIGURED"
	CodeCrossReferenceFailure = "CROSS_REFERENCE_FAILED"

	// Internal errors
	CodeInternalError = "INTERNAL_ERROR"
	CodeConfigError   = "CONFIG_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"-"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError by code so errors.Is works against the sentinels below.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// New creates an AppError.
func New(code, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// Wrap creates an AppError around err.
func Wrap(err error, code, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func Unauthorized(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func InvalidToken(message string) *AppError {
	return New(CodeInvalidToken, message, http.StatusUnauthorized)
}

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message, http.StatusBadRequest)
}

func InvalidInput(field, reason string) *AppError {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: fmt.Sprintf("invalid input for '%s': %s", field, reason),
		Status:  http.StatusBadRequest,
		Details: map[string]any{"field": field},
	}
}

func MissingField(field string) *AppError {
	return &AppError{
		Code:    CodeMissingField,
		Message: fmt.Sprintf("missing required field: %s", field),
		Status:  http.StatusBadRequest,
		Details: map[string]any{"field": field},
	}
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func OAuthFailed(provider string, err error) *AppError {
	return &AppError{
		Code:    CodeOAuthFailed,
		Message: fmt.Sprintf("OAuth failed for %s", provider),
		Status:  http.StatusBadGateway,
		Details: map[string]any{"provider": provider},
		Err:     err,
	}
}

func DatabaseError(operation string, err error) *AppError {
	return &AppError{
		Code:    CodeDatabaseError,
		Message: fmt.Sprintf("database error: %s", operation),
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func ExternalError(service string, err error) *AppError {
	return &AppError{
		Code:    CodeExternalError,
		Message: fmt.Sprintf("external service error: %s", service),
		Status:  http.StatusBadGateway,
		Details: map[string]any{"service": service},
		Err:     err,
	}
}

// MailboxUnavailable reports a missing or rejected mailbox credential.
func MailboxUnavailable(reason string, err error) *AppError {
	return &AppError{
		Code:    CodeMailboxUnavailable,
		Message: reason,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

// MessageFetchFailed annotates a single message that could not be read.
func MessageFetchFailed(messageID string, err error) *AppError {
	return &AppError{
		Code:    CodeMessageFetchFailed,
		Message: fmt.Sprintf("failed to fetch message %s", messageID),
		Status:  http.StatusBadGateway,
		Details: map[string]any{"message_id": messageID},
		Err:     err,
	}
}

// SyncFailed is the single caller-visible pipeline failure.
func SyncFailed(stage string, err error) *AppError {
	return &AppError{
		Code:    CodeSyncFailed,
		Message: fmt.Sprintf("mailbox sync failed while %s", stage),
		Status:  http.StatusBadGateway,
		Details: map[string]any{"stage": stage},
		Err:     err,
	}
}

// ClassificationFailed annotates a relevance call that failed; the candidate is kept.
func ClassificationFailed(messageID string, err error) *AppError {
	return &AppError{
		Code:    CodeClassificationFailed,
		Message: fmt.Sprintf("failed to classify message %s", messageID),
		Status:  http.StatusBadGateway,
		Details: map[string]any{"message_id": messageID},
		Err:     err,
	}
}

// SummarizationFailed annotates a summary call that fell back to heuristics.
func SummarizationFailed(messageID string, err error) *AppError {
	return &AppError{
		Code:    CodeSummarizationFailed,
		Message: fmt.Sprintf("failed to summarize message %s", messageID),
		Status:  http.StatusBadGateway,
		Details: map[string]any{"message_id": messageID},
		Err:     err,
	}
}

func CrossReferenceFailed(err error) *AppError {
	return Wrap(err, CodeCrossReferenceFailure, "failed to load confirmed applications", http.StatusInternalServerError)
}

func MalformedModelOutput(reason string) *AppError {
	return New(CodeMalformedModelOutput, reason, http.StatusBadGateway)
}

func Internal(message string) *AppError {
	if message == "" {
		message = "internal server error"
	}
	return New(CodeInternalError, message, http.StatusInternalServerError)
}

func InternalWithError(err error) *AppError {
	return &AppError{
		Code:    CodeInternalError,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func ConfigError(message string) *AppError {
	return New(CodeConfigError, message, http.StatusInternalServerError)
}

// Common error instances
var (
	ErrNotFound             = NotFound("resource")
	ErrUnauthorized         = Unauthorized("")
	ErrMailboxUnavailable   = MailboxUnavailable("mailbox is not connected", nil)
	ErrEmptyMailbox         = New(CodeEmptyMailbox, "mailbox returned 0 messages", http.StatusOK)
	ErrModelNotConfigured   = New(CodeModelNotConfigured, "language model is not configured", http.StatusServiceUnavailable)
	ErrMailboxNotConfigured = New(CodeMailboxNotConfigured, "mailbox OAuth client is not configured", http.StatusServiceUnavailable)
)

// Helper functions
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return InternalWithError(err)
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
