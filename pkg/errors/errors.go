package errors

import (
	"fmt"
)

// ErrorCategory represents the category of error for handling
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryProtocol      ErrorCategory = "psp_protocol"
	CategoryRateLimit     ErrorCategory = "rate_limit"
	CategoryNetworkError  ErrorCategory = "network_error"
)

// PSPError represents a failed PSP exchange with the provider's raw
// diagnosis preserved. Status code and body are carried verbatim so
// operators can tell exactly what the PSP answered.
type PSPError struct {
	Code        string
	Message     string
	StatusCode  int
	Body        string
	ErrorName   string // PSP "nome" field when the body was parseable
	Category    ErrorCategory
	IsRetriable bool

	// Rate-limit hints from 429 responses
	BucketSize string
	RetryAfter string
}

func (e *PSPError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Code, e.Message, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewPSPError creates a new PSP error
func NewPSPError(code, message string, category ErrorCategory, retriable bool) *PSPError {
	return &PSPError{
		Code:        code,
		Message:     message,
		Category:    category,
		IsRetriable: retriable,
	}
}

// WithResponse attaches the PSP's status code and raw body
func (e *PSPError) WithResponse(statusCode int, body string) *PSPError {
	e.StatusCode = statusCode
	e.Body = body
	return e
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ConfigError represents missing or unreadable operator configuration,
// kept distinct from PSP rejections so "misconfigured" is never mistaken
// for "rejected".
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error on '%s': %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("configuration error on '%s': %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new configuration error
func NewConfigError(field, message string, err error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Err: err}
}
