package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Validation Errors (VALIDATION_*) - malformed input, never retried
	ErrorCodeValidationFailed          ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationAmountInvalid   ErrorCode = "VALIDATION_AMOUNT_INVALID"
	ErrorCodeValidationCurrencyInvalid ErrorCode = "VALIDATION_CURRENCY_INVALID"
	ErrorCodeValidationMissingField    ErrorCode = "VALIDATION_MISSING_FIELD"

	// Merchant Errors (MERCHANT_*)
	ErrorCodeMerchantNotFound    ErrorCode = "MERCHANT_NOT_FOUND"
	ErrorCodeMerchantUnavailable ErrorCode = "MERCHANT_UNAVAILABLE"

	// Vault Errors (VAULT_*)
	ErrorCodeVaultError ErrorCode = "VAULT_ERROR"

	// Fraud Engine Errors (FRAUD_*)
	ErrorCodeFraudUnavailable ErrorCode = "FRAUD_UNAVAILABLE"

	// Transaction Errors (TXN_*)
	ErrorCodeTxnNotFound     ErrorCode = "TXN_NOT_FOUND"
	ErrorCodeTxnInvalidState ErrorCode = "TXN_INVALID_STATE"

	// Idempotency Errors (IDEMPOTENCY_*)
	ErrorCodeIdempotencyConflict ErrorCode = "IDEMPOTENCY_CONFLICT"

	// Internal Errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrorCodeDatabaseError ErrorCode = "INTERNAL_DATABASE_ERROR"
	ErrorCodePublishError  ErrorCode = "INTERNAL_PUBLISH_ERROR"
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

// Is matches domain errors by code, so copies produced by WithDetail and
// WithCause still compare equal to their sentinel under errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// WithDetail returns a copy of the error with an added detail field. Copying
// keeps the package-level sentinel errors immutable and safe for concurrent
// use.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{
		Err:     e.Err,
		Details: details,
		Code:    e.Code,
		Message: e.Message,
	}
}

// WithCause returns a copy of the error wrapping an underlying cause
func (e *DomainError) WithCause(err error) *DomainError {
	return &DomainError{
		Err:     err,
		Details: e.Details,
		Code:    e.Code,
		Message: e.Message,
	}
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

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeValidationFailed ||
		code == ErrorCodeValidationAmountInvalid ||
		code == ErrorCodeValidationCurrencyInvalid ||
		code == ErrorCodeValidationMissingField
}

// IsNotFoundError checks if an error represents a "not found" condition
func IsNotFoundError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeMerchantNotFound ||
		code == ErrorCodeTxnNotFound
}

// IsDependencyError checks if an error came from an external collaborator.
// Before the transaction is persisted these abort the whole operation; after
// persistence the orchestrator converts them into a terminal transaction state.
func IsDependencyError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeMerchantUnavailable ||
		code == ErrorCodeVaultError ||
		code == ErrorCodeFraudUnavailable
}

// IsInvariantViolation checks if an error is an illegal state-machine operation
func IsInvariantViolation(err error) bool {
	return GetErrorCode(err) == ErrorCodeTxnInvalidState
}

// Structured error instances
var (
	ErrValidationFailed          = NewDomainError(ErrorCodeValidationFailed, "validation failed")
	ErrValidationAmountInvalid   = NewDomainError(ErrorCodeValidationAmountInvalid, "amount must be greater than zero")
	ErrValidationCurrencyInvalid = NewDomainError(ErrorCodeValidationCurrencyInvalid, "currency must be a 3-letter uppercase ISO code")
	ErrValidationMissingField    = NewDomainError(ErrorCodeValidationMissingField, "required field missing")

	ErrMerchantNotFound    = NewDomainError(ErrorCodeMerchantNotFound, "merchant not found")
	ErrMerchantUnavailable = NewDomainError(ErrorCodeMerchantUnavailable, "merchant service unavailable")

	ErrVaultError = NewDomainError(ErrorCodeVaultError, "secure tokenization failed")

	ErrFraudUnavailable = NewDomainError(ErrorCodeFraudUnavailable, "fraud engine unavailable")

	ErrTxnNotFound     = NewDomainError(ErrorCodeTxnNotFound, "transaction not found")
	ErrTxnInvalidState = NewDomainError(ErrorCodeTxnInvalidState, "transaction is in invalid state for this operation")

	ErrIdempotencyConflict = NewDomainError(ErrorCodeIdempotencyConflict, "idempotency key conflict")

	ErrInternalError = NewDomainError(ErrorCodeInternalError, "internal server error")
	ErrDatabaseError = NewDomainError(ErrorCodeDatabaseError, "database error")
)
