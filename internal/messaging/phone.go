package messaging

import (
	"regexp"
	"strings"
)

const whatsAppPrefix = "whatsapp:"

var phoneDigitsRe = regexp.MustCompile(`\d+`)

// NormalizeE164 ensures the value begins with + and only contains digits afterward.
func NormalizeE164(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	digits := sanitizePhone(value)
	if digits == "" {
		return ""
	}
	return "+" + digits
}

// WhatsAppAddress returns the Twilio channel address ("whatsapp:+447...")
// for a phone number or an address that already carries the prefix.
func WhatsAppAddress(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(value), whatsAppPrefix) {
		value = value[len(whatsAppPrefix):]
	}
	number := NormalizeE164(value)
	if number == "" {
		return ""
	}
	return whatsAppPrefix + number
}

func sanitizePhone(value string) string {
	if value == "" {
		return ""
	}
	digits := phoneDigitsRe.FindAllString(value, -1)
	return strings.Join(digits, "")
}
