package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a resource was not found (e.g., no profile record).
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeValidation indicates invalid input data (e.g., empty required form field).
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeUnauthorized indicates the backend rejected the credential (401/403)
	// without signalling token expiry.
	ErrCodeUnauthorized ErrorCode = "unauthorized"
	// ErrCodeExpiredToken indicates the backend reported an expired or invalid
	// bearer token. This is the only code that triggers forced logout.
	ErrCodeExpiredToken ErrorCode = "expired_token"
	// ErrCodeUnavailable indicates the backend could not be reached or answered 5xx.
	ErrCodeUnavailable ErrorCode = "unavailable"
	// ErrCodeInternal indicates an unexpected client-side failure.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError is a structured application error with a code, a human-readable
// message, and an optional cause. It supports errors.Is and errors.As via
// Unwrap. The Status field carries the originating HTTP status when the error
// crossed the backend boundary.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Status  int
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates an AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a NotFound error.
func NotFound(message string) *AppError {
	return New(ErrCodeNotFound, message)
}

// Validation creates a Validation error.
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// Unauthorized creates an Unauthorized error carrying the HTTP status.
func Unauthorized(status int, message string) *AppError {
	return &AppError{Code: ErrCodeUnauthorized, Message: message, Status: status}
}

// ExpiredToken creates an ExpiredToken error carrying the HTTP status.
func ExpiredToken(status int, message string) *AppError {
	return &AppError{Code: ErrCodeExpiredToken, Message: message, Status: status}
}

// Unavailable creates an Unavailable error.
func Unavailable(message string) *AppError {
	return New(ErrCodeUnavailable, message)
}

// Internal creates an Internal error.
func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

// Wrap wraps an existing error, preserving the cause. Returns nil for a nil err.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool { return isCode(err, ErrCodeNotFound) }

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

// IsUnauthorized checks if an error is an Unauthorized error.
func IsUnauthorized(err error) bool { return isCode(err, ErrCodeUnauthorized) }

// IsExpiredToken checks if an error is an ExpiredToken error.
func IsExpiredToken(err error) bool { return isCode(err, ErrCodeExpiredToken) }

// IsUnavailable checks if an error is an Unavailable error.
func IsUnavailable(err error) bool { return isCode(err, ErrCodeUnavailable) }

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetStatus returns the HTTP status attached to the error, or 0.
func GetStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return 0
}

// UserMessage returns a message safe to surface inline in a blocking modal.
// AppError messages are already derived from response bodies; anything else
// collapses to a generic phrase so raw transport errors never reach the UI.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "request failed, please try again"
}
