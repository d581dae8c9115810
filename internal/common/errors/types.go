package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeValidation represents caller-correctable field validation errors
	ErrTypeValidation ErrorType = "validation"
	// ErrTypeParse represents malformed vCard wire text
	ErrTypeParse ErrorType = "parse"
	// ErrTypeNotFound represents resource not found errors
	ErrTypeNotFound ErrorType = "not_found"
	// ErrTypeConfig represents configuration errors
	ErrTypeConfig ErrorType = "config"
	// ErrTypeStorage represents storage backend errors
	ErrTypeStorage ErrorType = "storage"
	// ErrTypeInternal represents internal system errors
	ErrTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType
	Message string
	// Field names the offending contact field for validation errors.
	Field string
	Cause error
}

// Error implements the error interface
func (e *AppError) Error() string {
	parts := []string{string(e.Type)}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithField names the contact field the error refers to
func (e *AppError) WithField(field string) *AppError {
	e.Field = field
	return e
}

// ValidationError creates a new validation error for the named field
func ValidationError(field, msg string) *AppError {
	return &AppError{
		Type:    ErrTypeValidation,
		Message: msg,
		Field:   field,
	}
}

// ValidationErrorf creates a new validation error with a formatted message
func ValidationErrorf(field, format string, args ...interface{}) *AppError {
	return ValidationError(field, fmt.Sprintf(format, args...))
}

// ParseError creates a new parse error
func ParseError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeParse,
		Message: msg,
		Cause:   cause,
	}
}

// NotFoundError creates a new not found error
func NotFoundError(resource string) *AppError {
	return &AppError{
		Type:    ErrTypeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// ConfigError creates a new configuration error
func ConfigError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeConfig,
		Message: msg,
	}
}

// StorageError creates a new storage error
func StorageError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeStorage,
		Message: msg,
		Cause:   cause,
	}
}

// InternalError creates a new internal error
func InternalError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeInternal,
		Message: msg,
		Cause:   cause,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}

	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}

	return appErr.Type == errType
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrTypeValidation)
}

// IsParse reports whether err is a parse error
func IsParse(err error) bool {
	return IsType(err, ErrTypeParse)
}

// IsNotFound reports whether err is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrTypeNotFound)
}

// FieldOf returns the offending field name if err is an AppError
func FieldOf(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Field
	}
	return ""
}
