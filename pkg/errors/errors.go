package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the different failure classes in a collection run
type ErrorType string

const (
	ErrorTypeNotFound  ErrorType = "not_found"
	ErrorTypeTimeout   ErrorType = "timeout"
	ErrorTypeTransient ErrorType = "transient"
	ErrorTypeParsing   ErrorType = "parsing"
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypePersist   ErrorType = "persist"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// Error carries a failure class alongside the message so retry policy can
// classify without string matching
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error without a cause
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Wrap creates a typed error around an underlying cause
func Wrap(t ErrorType, message string, err error) *Error {
	return &Error{Type: t, Message: message, Err: err}
}

// TypeOf extracts the error type, defaulting to unknown for plain errors
func TypeOf(err error) ErrorType {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}

// IsRetryable checks if an error type should be retried. Permanent absence
// never is; render and transport hiccups are.
func IsRetryable(t ErrorType) bool {
	switch t {
	case ErrorTypeTimeout, ErrorTypeTransient, ErrorTypeParsing:
		return true
	case ErrorTypeNotFound, ErrorTypeConfig, ErrorTypePersist:
		return false
	default:
		return true
	}
}
