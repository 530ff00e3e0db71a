// Package pin derives the 6-digit completion PIN shown to a customer and
// checked when the provider finishes a job.
//
// The PIN is computed from the booking ID alone. It is not a secret: anyone
// who can read the booking ID can derive it.
package pin

import (
	"crypto/subtle"
	"fmt"
	"strings"
)

const (
	// EmptyIDPIN is returned for an empty booking ID
	EmptyIDPIN = "123456"
	// UnparsablePIN is returned when the ID tail holds no hex digits
	UnparsablePIN = "849201"

	fragmentLength = 6
	modulus        = 1000000
)

// Derive returns the completion PIN for bookingID.
//
// Separators are stripped, the last six characters are read as base-16 (the
// longest leading run of hex digits counts), and the PIN is (n*7 + 13) mod 10^6
// left-padded to six digits. bookingID must be a UUID; other strings get a
// PIN but no "0x" prefix or sign handling is applied to the tail.
func Derive(bookingID string) string {
	if bookingID == "" {
		return EmptyIDPIN
	}

	stripped := strings.ReplaceAll(bookingID, "-", "")
	fragment := stripped
	if len(fragment) > fragmentLength {
		fragment = fragment[len(fragment)-fragmentLength:]
	}

	n, ok := parseHexPrefix(fragment)
	if !ok {
		return UnparsablePIN
	}

	return fmt.Sprintf("%06d", (n*7+13)%modulus)
}

// Verify reports whether input equals the PIN derived from bookingID
func Verify(bookingID, input string) bool {
	expected := Derive(bookingID)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(input))) == 1
}

// parseHexPrefix reads hex digits from the start of s until the first
// non-hex character
func parseHexPrefix(s string) (int64, bool) {
	var n int64
	digits := 0
	for i := 0; i < len(s); i++ {
		v, ok := hexValue(s[i])
		if !ok {
			break
		}
		n = n*16 + int64(v)
		digits++
	}
	return n, digits > 0
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
