package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	validNumbers := []struct {
		input    string
		expected string
		name     string
	}{
		{"9876543210", "9876543210", "Standard format"},
		{"98765 43210", "9876543210", "With spaces"},
		{"98765-43210", "9876543210", "With dashes"},
		{"98765.43210", "9876543210", "With dots"},
		{"(987) 654 3210", "9876543210", "With parentheses"},
		{"+91 98765 43210", "9876543210", "With country code"},
		{"919876543210", "9876543210", "Country code without plus"},
		{"09876543210", "9876543210", "Trunk zero"},
		{"6123456789", "6123456789", "Starts with 6"},
	}

	for _, tc := range validNumbers {
		t.Run(tc.name, func(t *testing.T) {
			sanitized, err := validator.Validate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sanitized)
		})
	}
}

func TestValidate_InvalidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	invalidNumbers := []struct {
		input       string
		expectedErr error
		name        string
	}{
		{"", ErrEmptyPhone, "Empty"},
		{"   ", ErrEmptyPhone, "Blank"},
		{"98765abcde", ErrInvalidFormat, "Letters"},
		{"987654321", ErrInvalidLength, "Too short"},
		{"98765432101", ErrInvalidLength, "Too long"},
		{"5876543210", ErrInvalidPrefix, "Landline style prefix"},
		{"0123456789", ErrInvalidPrefix, "Leading zero only"},
	}

	for _, tc := range invalidNumbers {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.Validate(tc.input)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestFormat(t *testing.T) {
	validator := NewPhoneValidator()

	formatted, err := validator.Format("+91 9876543210")
	require.NoError(t, err)
	assert.Equal(t, "98765 43210", formatted)

	_, err = validator.Format("123")
	assert.Error(t, err)
}

func TestIsValid(t *testing.T) {
	validator := NewPhoneValidator()

	assert.True(t, validator.IsValid("9876543210"))
	assert.False(t, validator.IsValid("12345"))
}
