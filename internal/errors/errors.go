// Package errors provides custom error types for spendtrack.
// Service-layer and engine errors use AppError so that both the HTTP API and
// the ledger engine report failures with a stable code, a human-readable
// message and, for validation failures, a per-field report.
package errors

import (
	"net/http"
	"strings"
)

// FieldError describes a single invalid field in a validation report.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Fields     []FieldError `json:"fields,omitempty"`
	StatusCode int          `json:"-"`
	Internal   error        `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError carrying the same code, so that
// errors.Is(err, ErrRemoteUnavailable) matches wrapped copies of a sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		Fields:     sentinel.Fields,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WithFields creates a new AppError carrying a per-field report.
func WithFields(sentinel *AppError, fields []FieldError) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Fields:     fields,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Storage errors.
var (
	ErrDatabaseUnavailable = &AppError{Code: "DATABASE_UNAVAILABLE", Message: "Database connection failed", StatusCode: http.StatusServiceUnavailable}
)

// Transaction errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Transaction type must be Revenue or Expense", StatusCode: http.StatusBadRequest}
)

// Ledger engine errors. These are advisory on the client side: only
// ErrValidation and ErrCommandInFlight abort a command.
var (
	ErrValidation        = &AppError{Code: "VALIDATION_FAILED", Message: "One or more fields are invalid", StatusCode: http.StatusBadRequest}
	ErrRemoteUnavailable = &AppError{Code: "REMOTE_UNAVAILABLE", Message: "Remote store is unavailable", StatusCode: http.StatusServiceUnavailable}
	ErrCacheUnavailable  = &AppError{Code: "CACHE_UNAVAILABLE", Message: "Local cache is unavailable", StatusCode: http.StatusInternalServerError}
	ErrImportRow         = &AppError{Code: "IMPORT_ROW_INVALID", Message: "Import row is invalid", StatusCode: http.StatusUnprocessableEntity}
	ErrInvalidImport     = &AppError{Code: "INVALID_IMPORT", Message: "Import file could not be read", StatusCode: http.StatusBadRequest}
	ErrCommandInFlight   = &AppError{Code: "COMMAND_IN_FLIGHT", Message: "Another ledger command is still running", StatusCode: http.StatusConflict}
)
