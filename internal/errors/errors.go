// Package errors provides the structured error type used across the
// ingestion pipeline. Every failure that flows through a stream or is
// returned by the engine facade is one of these, so callers can branch on
// code or category instead of matching message strings.
package errors

import "fmt"

// Error is the structured error type for quarry.
type Error struct {
	// Code is the unique error code (e.g. "ERR_301_CLONE_FAILED").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is derived from the code.
	Category Category

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error.
	Cause error

	// Retryable indicates whether the operation may succeed on retry.
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code, enabling errors.Is against sentinel values
// built with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail and returns the error for chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates an Error with the given code and message. Category and the
// retryable flag are derived from the code.
func New(code string, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Newf creates an Error with a formatted message.
func Newf(code string, cause error, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...), cause)
}

// ConfigError creates a configuration error.
func ConfigError(message string, cause error) *Error {
	return New(ErrCodeConfigInvalid, message, cause)
}

// PatternError creates an invalid-filter-pattern error.
func PatternError(message string, cause error) *Error {
	return New(ErrCodePatternInvalid, message, cause)
}

// CloneError creates a repository-clone error carrying the repository name.
func CloneError(repository string, cause error) *Error {
	return New(ErrCodeCloneFailed, fmt.Sprintf("cloning repository %s", repository), cause).
		WithDetail("repository", repository)
}

// ListingError creates a repository-listing error.
func ListingError(message string, cause error) *Error {
	return New(ErrCodeListingFailed, message, cause)
}

// GetCode extracts the error code, or "" if err is not an *Error.
func GetCode(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

// IsRetryable reports whether err is an *Error marked retryable.
func IsRetryable(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Retryable
	}
	return false
}
