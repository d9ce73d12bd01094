// Package errors defines the error classification used across the engine
// and its surrounding services: input validation, resource exhaustion,
// cooperative cancellation and storage/database failures.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the application.
const (
	CodeUnknown       = "UNKNOWN_ERROR"
	CodeRuleError     = "RULE_ERROR"      // malformed rule string
	CodeParseError    = "PARSE_ERROR"     // malformed macrocell or rule file
	CodeInvalidInput  = "INVALID_INPUT"   // out-of-range cell state or argument
	CodeMemoryError   = "MEMORY_ERROR"    // soft memory budget exhausted
	CodeInterrupted   = "INTERRUPTED"     // cooperative cancellation
	CodeDatabaseError = "DATABASE_ERROR"  // pattern archive database failure
	CodeUploadError   = "UPLOAD_ERROR"    // pattern storage upload failure
	CodeDownloadError = "DOWNLOAD_ERROR"  // pattern storage download failure
	CodeNotFound      = "NOT_FOUND"
	CodeConfigError   = "CONFIG_ERROR"
)

// AppError represents an application error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error instances.
var (
	ErrRuleError     = New(CodeRuleError, "bad rule string")
	ErrParseError    = New(CodeParseError, "parse error")
	ErrInvalidInput  = New(CodeInvalidInput, "invalid input")
	ErrMemoryError   = New(CodeMemoryError, "memory budget exhausted")
	ErrInterrupted   = New(CodeInterrupted, "operation interrupted")
	ErrDatabaseError = New(CodeDatabaseError, "database error")
	ErrUploadError   = New(CodeUploadError, "upload error")
	ErrDownloadError = New(CodeDownloadError, "download error")
	ErrNotFound      = New(CodeNotFound, "resource not found")
	ErrConfigError   = New(CodeConfigError, "configuration error")
)

// IsRuleError checks if the error is a rule-string error.
func IsRuleError(err error) bool {
	return errors.Is(err, ErrRuleError)
}

// IsParseError checks if the error is a parse error.
func IsParseError(err error) bool {
	return errors.Is(err, ErrParseError)
}

// IsInterrupted checks if the error is a cooperative cancellation.
func IsInterrupted(err error) bool {
	return errors.Is(err, ErrInterrupted)
}

// IsDatabaseError checks if the error is a database error.
func IsDatabaseError(err error) bool {
	return errors.Is(err, ErrDatabaseError)
}

// IsNotFound checks if the error is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
