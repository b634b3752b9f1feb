package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	t.Run("without wrapped error", func(t *testing.T) {
		err := NewDomainError(ErrorTypeAudit, "audit store unreachable", nil)
		assert.Equal(t, "audit: audit store unreachable", err.Error())
	})

	t.Run("with wrapped error", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewDomainError(ErrorTypeAudit, "audit store unreachable", cause)
		assert.Contains(t, err.Error(), "audit store unreachable")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDomainError(ErrorTypeExternal, "endpoint unreachable", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestDomainError_Is(t *testing.T) {
	t.Run("matches same type", func(t *testing.T) {
		err := WrapAudit("failed to append audit entry", errors.New("db down"))
		assert.True(t, errors.Is(err, ErrAuditPersistence))
	})

	t.Run("does not match other types", func(t *testing.T) {
		err := WrapAudit("failed to append audit entry", nil)
		assert.False(t, errors.Is(err, ErrRequestCancelled))
	})

	t.Run("survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("pipeline failed: %w", WrapAudit("append failed", nil))
		assert.True(t, errors.Is(err, ErrAuditPersistence))
	})
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "invalid event", nil).
		WithDetail("field", "order_id").
		WithDetail("order_id", "ORD-1042")

	details := GetErrorDetails(err)
	assert.Equal(t, "order_id", details["field"])
	assert.Equal(t, "ORD-1042", details["order_id"])
}

func TestErrorTypeCheckers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
		want    bool
	}{
		{"validation error", ErrInvalidEvent, IsValidationError, true},
		{"external error", ErrEndpointUnavailable, IsExternalError, true},
		{"tool error", ErrToolExecution, IsToolError, true},
		{"audit error", ErrAuditPersistence, IsAuditError, true},
		{"cancelled error", ErrRequestCancelled, IsCancelledError, true},
		{"not found error", ErrEntryNotFound, IsNotFoundError, true},
		{"wrapped audit error", WrapAudit("append failed", errors.New("db down")), IsAuditError, true},
		{"audit is not validation", ErrAuditPersistence, IsValidationError, false},
		{"plain error", errors.New("plain"), IsAuditError, false},
		{"nil error", nil, IsAuditError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.checker(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorTypeAudit, GetErrorType(ErrAuditPersistence))
	assert.Equal(t, ErrorTypeCancelled, GetErrorType(ErrRequestCancelled))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("plain")))
	assert.Equal(t, ErrorType(""), GetErrorType(nil))
}

func TestWrapHelpers(t *testing.T) {
	cause := errors.New("boom")

	assert.True(t, IsAuditError(WrapAudit("m", cause)))
	assert.True(t, IsExternalError(WrapExternal("m", cause)))
	assert.True(t, IsToolError(WrapError(ErrorTypeTool, "m", cause)))
}
