package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidLength indicates phone number length is not 10 digits
	ErrInvalidLength = errors.New("phone number must be exactly 10 digits")

	// ErrInvalidPrefix indicates the number is not an Indian mobile number
	ErrInvalidPrefix = errors.New("phone number must start with 6, 7, 8 or 9")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits")

	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")
)

// countryCode is stripped from 12-digit input
const countryCode = "91"

// phoneRegex matches digits only
var phoneRegex = regexp.MustCompile(`^\d+$`)

// PhoneValidator handles phone number validation
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate validates an Indian mobile number
// Accepts format: 9876543210, 98765 43210, +91-98765-43210 or 09876543210
// Returns sanitized phone number (digits only) and error if invalid
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Sanitize(phone)

	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	if len(sanitized) != 10 {
		return "", ErrInvalidLength
	}

	if !v.IsValidPrefix(sanitized) {
		return "", ErrInvalidPrefix
	}

	return sanitized, nil
}

// Sanitize removes separators and a leading country code or trunk zero
func (v *PhoneValidator) Sanitize(phone string) string {
	phone = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "+", "", ".", "").Replace(phone)

	switch {
	case len(phone) == 12 && strings.HasPrefix(phone, countryCode):
		phone = phone[2:]
	case len(phone) == 11 && strings.HasPrefix(phone, "0"):
		phone = phone[1:]
	}

	return phone
}

// IsValidPrefix checks the leading digit of a mobile number
func (v *PhoneValidator) IsValidPrefix(phone string) bool {
	if phone == "" {
		return false
	}
	switch phone[0] {
	case '6', '7', '8', '9':
		return true
	}
	return false
}

// Format formats a phone number in the display format: XXXXX XXXXX
func (v *PhoneValidator) Format(phone string) (string, error) {
	sanitized, err := v.Validate(phone)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s", sanitized[0:5], sanitized[5:10]), nil
}

// IsValid is a convenience method that returns true if phone is valid
func (v *PhoneValidator) IsValid(phone string) bool {
	_, err := v.Validate(phone)
	return err == nil
}
