package booking

import (
	"fmt"
	"net/url"
	"strings"
)

// HandoffKind identifies a client-side handoff target.
type HandoffKind string

const (
	HandoffMailto   HandoffKind = "mailto"
	HandoffWhatsApp HandoffKind = "whatsapp"
)

// Handoff is a pre-filled link the visitor's browser opens when automated
// delivery to the operator could not be confirmed.
type Handoff struct {
	Kind HandoffKind `json:"kind"`
	URL  string      `json:"url"`
}

// HandoffConfig holds the operator targets and branding used in summaries.
type HandoffConfig struct {
	OperatorEmail string
	OperatorPhone string
	BusinessName  string
}

// FallbackHandoffs returns exactly one mailto and one WhatsApp link carrying
// the booking summary, addressed to the operator.
func FallbackHandoffs(b Booking, cfg HandoffConfig) []Handoff {
	subject := fmt.Sprintf("New Car Wash Booking - %s", b.CustomerName)
	return []Handoff{
		{Kind: HandoffMailto, URL: MailtoURL(cfg.OperatorEmail, subject, FormatEmailSummary(b, cfg.BusinessName))},
		{Kind: HandoffWhatsApp, URL: WhatsAppURL(cfg.OperatorPhone, FormatChatSummary(b))},
	}
}

// MailtoURL builds a mailto link with an encoded recipient, subject and body.
func MailtoURL(to, subject, body string) string {
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s", url.PathEscape(strings.TrimSpace(to)), encodeComponent(subject), encodeComponent(body))
}

// WhatsAppURL builds a wa.me deep link for the given phone number.
func WhatsAppURL(phone, text string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", digitsOnly(phone), encodeComponent(text))
}

// WhatsAppChatURL links to a chat with the number without pre-filled text.
func WhatsAppChatURL(phone string) string {
	return "https://wa.me/" + digitsOnly(phone)
}

// FormatEmailSummary generates the plain-text operator summary used in the
// mailto fallback.
func FormatEmailSummary(b Booking, businessName string) string {
	if businessName == "" {
		businessName = "Car Wash"
	}
	var sb strings.Builder

	sb.WriteString("🚗 NEW BOOKING ALERT 🚗\n\n")
	sb.WriteString("Service Details:\n")
	sb.WriteString(fmt.Sprintf("• Service: %s\n", b.ServiceType))
	sb.WriteString(fmt.Sprintf("• Price: %s\n", b.PriceLabel()))
	sb.WriteString(fmt.Sprintf("• Date: %s\n", b.BookingDate))
	sb.WriteString(fmt.Sprintf("• Time: %s\n\n", b.BookingTime))
	sb.WriteString("Customer Information:\n")
	sb.WriteString(fmt.Sprintf("• Name: %s\n", b.CustomerName))
	sb.WriteString(fmt.Sprintf("• Email: %s\n", valueOrNotProvided(b.CustomerEmail)))
	sb.WriteString(fmt.Sprintf("• Phone: %s\n", b.CustomerPhone))
	sb.WriteString(fmt.Sprintf("• Address: %s\n\n", b.ServiceAddress))
	if strings.TrimSpace(b.Notes) != "" {
		sb.WriteString(fmt.Sprintf("Additional Notes:\n%s\n", b.Notes))
	} else {
		sb.WriteString("No additional notes\n")
	}
	sb.WriteString("\n---\nPlease contact the customer to confirm this booking.\n")
	sb.WriteString(fmt.Sprintf("%s Booking System", businessName))

	return sb.String()
}

// FormatChatSummary generates the WhatsApp message body shared by the
// automated chat channel and the deep-link fallback.
func FormatChatSummary(b Booking) string {
	var sb strings.Builder

	sb.WriteString("🚗 *NEW CAR WASH BOOKING* 🚗\n\n")
	sb.WriteString(fmt.Sprintf("*Service:* %s\n", b.ServiceType))
	sb.WriteString(fmt.Sprintf("*Price:* %s\n", b.PriceLabel()))
	sb.WriteString(fmt.Sprintf("*Date:* %s\n", b.BookingDate))
	sb.WriteString(fmt.Sprintf("*Time:* %s\n\n", b.BookingTime))
	sb.WriteString("*Customer Details:*\n")
	sb.WriteString(fmt.Sprintf("• *Name:* %s\n", b.CustomerName))
	sb.WriteString(fmt.Sprintf("• *Phone:* %s\n", b.CustomerPhone))
	sb.WriteString(fmt.Sprintf("• *Email:* %s\n", valueOrNotProvided(b.CustomerEmail)))
	sb.WriteString(fmt.Sprintf("• *Address:* %s\n\n", b.ServiceAddress))
	if strings.TrimSpace(b.Notes) != "" {
		sb.WriteString(fmt.Sprintf("*Notes:* %s\n\n", b.Notes))
	}
	sb.WriteString("Please confirm this booking with the customer! 📅✨")

	return sb.String()
}

// encodeComponent escapes s the way browsers' encodeURIComponent does for
// the characters that matter here: spaces become %20, not '+'.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func digitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func valueOrNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not provided"
	}
	return s
}
