package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestStruct struct {
	OrderID  string `validate:"required"`
	Supplier string `validate:"required"`
	Limit    int    `validate:"gte=0,lte=500"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		s := TestStruct{
			OrderID:  "ORD-1042",
			Supplier: "Acme Logistics",
			Limit:    50,
		}

		err := ValidateStruct(&s)
		assert.NoError(t, err)
	})

	t.Run("missing required field", func(t *testing.T) {
		s := TestStruct{
			Supplier: "Acme Logistics",
			Limit:    50,
		}

		err := ValidateStruct(&s)
		assert.Error(t, err)
		assert.True(t, IsValidationError(err))

		fields := GetValidationFields(err)
		assert.Contains(t, fields, "OrderID")
	})

	t.Run("limit out of range", func(t *testing.T) {
		s := TestStruct{
			OrderID:  "ORD-1042",
			Supplier: "Acme Logistics",
			Limit:    900,
		}

		err := ValidateStruct(&s)
		assert.Error(t, err)
		assert.True(t, IsValidationError(err))

		fields := GetValidationFields(err)
		assert.Contains(t, fields, "Limit")
	})
}

func TestValidateUUID(t *testing.T) {
	tests := []struct {
		name      string
		uuid      string
		wantError bool
	}{
		{
			name:      "valid UUID",
			uuid:      "550e8400-e29b-41d4-a716-446655440000",
			wantError: false,
		},
		{
			name:      "invalid UUID - wrong format",
			uuid:      "not-a-uuid",
			wantError: true,
		},
		{
			name:      "empty string",
			uuid:      "",
			wantError: true,
		},
		{
			name:      "invalid UUID - missing parts",
			uuid:      "550e8400-e29b-41d4",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUUID(tt.uuid)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewValidationError(t *testing.T) {
	t.Run("creates validation error with field details", func(t *testing.T) {
		s := TestStruct{
			Limit: 900,
		}

		err := ValidateStruct(&s)
		require.Error(t, err)

		validationErr, ok := err.(*ValidationError)
		require.True(t, ok)

		assert.Equal(t, "Validation failed", validationErr.Message)
		assert.NotEmpty(t, validationErr.Fields)
		assert.Contains(t, validationErr.Fields, "OrderID")
		assert.Contains(t, validationErr.Fields, "Supplier")
		assert.Contains(t, validationErr.Fields, "Limit")
	})
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Message: "Test validation error",
		Fields: map[string]string{
			"field1": "error1",
		},
	}

	assert.Equal(t, "Test validation error", err.Error())
}

func TestIsValidationError(t *testing.T) {
	t.Run("is validation error", func(t *testing.T) {
		err := &ValidationError{
			Message: "test",
			Fields:  map[string]string{},
		}

		assert.True(t, IsValidationError(err))
	})

	t.Run("is not validation error", func(t *testing.T) {
		err := assert.AnError

		assert.False(t, IsValidationError(err))
	})
}

func TestGetValidationFields(t *testing.T) {
	t.Run("gets fields from validation error", func(t *testing.T) {
		fields := map[string]string{
			"field1": "error1",
			"field2": "error2",
		}
		err := &ValidationError{
			Message: "test",
			Fields:  fields,
		}

		extracted := GetValidationFields(err)
		assert.Equal(t, fields, extracted)
	})

	t.Run("returns nil for non-validation error", func(t *testing.T) {
		err := assert.AnError

		extracted := GetValidationFields(err)
		assert.Nil(t, extracted)
	})
}
