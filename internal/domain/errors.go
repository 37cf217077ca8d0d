package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Caller input errors (VALIDATION_*)
	ErrorCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationMissingField ErrorCode = "VALIDATION_MISSING_FIELD"
	ErrorCodeValidationAmount       ErrorCode = "VALIDATION_AMOUNT_INVALID"

	// Order lookup errors (ORDER_*)
	ErrorCodeOrderNotFound ErrorCode = "ORDER_NOT_FOUND"

	// Gateway errors (GATEWAY_*)
	ErrorCodeGatewayTransport ErrorCode = "GATEWAY_TRANSPORT"
	ErrorCodeGatewayMalformed ErrorCode = "GATEWAY_MALFORMED_RESPONSE"

	// Signature errors (SIG_*)
	ErrorCodeSigInvalid  ErrorCode = "SIG_INVALID"
	ErrorCodeSigEncoding ErrorCode = "SIG_ENCODING"

	// Internal errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrorCodeLedgerError   ErrorCode = "INTERNAL_LEDGER_ERROR"
	ErrorCodeSecretError   ErrorCode = "INTERNAL_SECRET_ERROR"
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

// IsValidationError checks if an error is a caller-input validation error
func IsValidationError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeValidationFailed ||
		code == ErrorCodeValidationMissingField ||
		code == ErrorCodeValidationAmount
}

// Common domain errors
var (
	ErrOrderNotFound    = NewDomainError(ErrorCodeOrderNotFound, "order not found")
	ErrMissingField     = NewDomainError(ErrorCodeValidationMissingField, "required field missing")
	ErrInvalidAmount    = NewDomainError(ErrorCodeValidationAmount, "invalid amount")
	ErrInvalidSignature = NewDomainError(ErrorCodeSigInvalid, "signature verification failed")
)
