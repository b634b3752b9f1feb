package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeExternal   ErrorType = "external"
	ErrorTypeTool       ErrorType = "tool"
	ErrorTypeAudit      ErrorType = "audit"
	ErrorTypeCancelled  ErrorType = "cancelled"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Validation errors: malformed input or malformed structured model
	// output. Model-output validation failures are consumed by the
	// reasoning retry loop and never surface past it.
	ErrInvalidEvent    = NewDomainError(ErrorTypeValidation, "invalid event", nil)
	ErrMalformedOutput = NewDomainError(ErrorTypeValidation, "malformed structured output", nil)
	ErrSchemaViolation = NewDomainError(ErrorTypeValidation, "structured output violates schema", nil)

	// External errors: the reasoning endpoint is unreachable or slow.
	// Same retry treatment as validation failures.
	ErrEndpointUnavailable = NewDomainError(ErrorTypeExternal, "reasoning endpoint unavailable", nil)
	ErrEndpointTimeout     = NewDomainError(ErrorTypeExternal, "reasoning endpoint timeout", nil)

	// Tool errors: absorbed at the dispatcher boundary, downgrade the
	// action, never fatal.
	ErrToolExecution = NewDomainError(ErrorTypeTool, "tool execution failed", nil)

	// Audit errors: the only class that propagates to the pipeline caller.
	ErrAuditPersistence = NewDomainError(ErrorTypeAudit, "audit store unreachable", nil)

	// Cancellation: the enclosing request went away mid-pipeline.
	ErrRequestCancelled = NewDomainError(ErrorTypeCancelled, "request cancelled", nil)

	ErrEntryNotFound = NewDomainError(ErrorTypeNotFound, "audit entry not found", nil)
	ErrInternal      = NewDomainError(ErrorTypeInternal, "internal error", nil)
)

// Error type checking helper functions

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeValidation
	}
	return false
}

// IsExternalError checks if an error is an external endpoint error
func IsExternalError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeExternal
	}
	return false
}

// IsToolError checks if an error is a tool execution error
func IsToolError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeTool
	}
	return false
}

// IsAuditError checks if an error is an audit persistence error
func IsAuditError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeAudit
	}
	return false
}

// IsCancelledError checks if an error is a cancellation error
func IsCancelledError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeCancelled
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeNotFound
	}
	return false
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapAudit wraps an error as an audit persistence error
func WrapAudit(message string, err error) error {
	return NewDomainError(ErrorTypeAudit, message, err)
}

// WrapExternal wraps an error as an external endpoint error
func WrapExternal(message string, err error) error {
	return NewDomainError(ErrorTypeExternal, message, err)
}
