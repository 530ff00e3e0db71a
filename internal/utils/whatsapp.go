package utils

import (
	"net/url"
	"strings"
)

// defaultCountryCode is prefixed to bare 10-digit Indian mobile numbers
const defaultCountryCode = "91"

// WhatsAppLink builds a wa.me deep link with a prefilled message. It returns
// an empty string when the phone has no digits.
func WhatsAppLink(phone, message string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if len(digits) == 10 {
		digits = defaultCountryCode + digits
	}

	link := "https://wa.me/" + digits
	if message != "" {
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	}
	return link
}
