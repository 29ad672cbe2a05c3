package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Validation Errors (VALIDATION_*) - rejected before any external call
	ErrorCodeValidationFailed            ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationAmountInvalid     ErrorCode = "VALIDATION_AMOUNT_INVALID"
	ErrorCodeValidationAmountOutOfBounds ErrorCode = "VALIDATION_AMOUNT_OUT_OF_BOUNDS"
	ErrorCodeValidationMissingField      ErrorCode = "VALIDATION_MISSING_FIELD"
	ErrorCodeValidationDocumentInvalid   ErrorCode = "VALIDATION_DOCUMENT_INVALID"

	// Configuration Errors (CONFIG_*) - operator problems, not business failures
	ErrorCodeConfigMissing     ErrorCode = "CONFIG_MISSING"
	ErrorCodeConfigCertificate ErrorCode = "CONFIG_CERTIFICATE"

	// PSP Protocol Errors (PSP_*)
	ErrorCodePSPError             ErrorCode = "PSP_ERROR"
	ErrorCodePSPAuthRejected      ErrorCode = "PSP_AUTH_REJECTED"
	ErrorCodePSPTimeout           ErrorCode = "PSP_TIMEOUT"
	ErrorCodePSPRateLimited       ErrorCode = "PSP_RATE_LIMITED"
	ErrorCodePSPDuplicate         ErrorCode = "PSP_DUPLICATE"
	ErrorCodePSPKeyNotFound       ErrorCode = "PSP_KEY_NOT_FOUND"
	ErrorCodePSPOwnershipMismatch ErrorCode = "PSP_OWNERSHIP_MISMATCH"

	// Ledger Errors (LEDGER_*)
	ErrorCodeLedgerError ErrorCode = "LEDGER_ERROR"

	// Internal Errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeValidationFailed ||
		code == ErrorCodeValidationAmountInvalid ||
		code == ErrorCodeValidationAmountOutOfBounds ||
		code == ErrorCodeValidationMissingField ||
		code == ErrorCodeValidationDocumentInvalid
}

// IsConfigError checks if an error signals missing or broken operator configuration
func IsConfigError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeConfigMissing || code == ErrorCodeConfigCertificate
}

// IsPSPError checks if an error originated from the PSP protocol exchange
func IsPSPError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodePSPError ||
		code == ErrorCodePSPAuthRejected ||
		code == ErrorCodePSPTimeout ||
		code == ErrorCodePSPRateLimited ||
		code == ErrorCodePSPDuplicate ||
		code == ErrorCodePSPKeyNotFound ||
		code == ErrorCodePSPOwnershipMismatch
}

// IsRateLimited checks if an error carries a PSP rate-limit rejection
func IsRateLimited(err error) bool {
	return GetErrorCode(err) == ErrorCodePSPRateLimited
}

// Structured error instances
var (
	ErrValidationFailed        = NewDomainError(ErrorCodeValidationFailed, "validation failed")
	ErrValidationAmountInvalid = NewDomainError(ErrorCodeValidationAmountInvalid, "invalid amount")
	ErrValidationMissingField  = NewDomainError(ErrorCodeValidationMissingField, "required field missing")
	ErrValidationBadDocument   = NewDomainError(ErrorCodeValidationDocumentInvalid, "tax document must have 11 (CPF) or 14 (CNPJ) digits")

	ErrConfigMissing     = NewDomainError(ErrorCodeConfigMissing, "required configuration missing")
	ErrConfigCertificate = NewDomainError(ErrorCodeConfigCertificate, "client certificate unavailable or unreadable")

	ErrPSPError             = NewDomainError(ErrorCodePSPError, "PSP request failed")
	ErrPSPAuthRejected      = NewDomainError(ErrorCodePSPAuthRejected, "PSP rejected client credentials")
	ErrPSPTimeout           = NewDomainError(ErrorCodePSPTimeout, "PSP request timed out")
	ErrPSPRateLimited       = NewDomainError(ErrorCodePSPRateLimited, "PSP rate limit exceeded")
	ErrPSPDuplicate         = NewDomainError(ErrorCodePSPDuplicate, "PSP rejected duplicate submission")
	ErrPSPKeyNotFound       = NewDomainError(ErrorCodePSPKeyNotFound, "recipient key not found at PSP")
	ErrPSPOwnershipMismatch = NewDomainError(ErrorCodePSPOwnershipMismatch, "key does not belong to the declared document")

	ErrInternalError = NewDomainError(ErrorCodeInternalError, "internal error")
)
