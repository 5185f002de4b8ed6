package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/wolfman30/carwash-booking/pkg/logging"
)

const (
	ProviderResend   = "resend"
	ProviderSendGrid = "sendgrid"
	ProviderSES      = "ses"
	ProviderStub     = "stub"
)

// ProviderConfig selects and configures the outbound email provider.
type ProviderConfig struct {
	Provider       string
	FromEmail      string
	FromName       string
	ResendAPIKey   string
	ResendBaseURL  string
	SendGridAPIKey string
	SESClient      *sesv2.Client
	Timeout        time.Duration
}

// BuildEmailSender returns the configured email sender and the provider name.
// When the provider lacks credentials it returns a nil sender and the reason
// reported on every skipped email.
func BuildEmailSender(cfg ProviderConfig, logger *logging.Logger) (EmailSender, string, string) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderResend
	}

	switch provider {
	case ProviderResend:
		sender := NewResendSender(ResendConfig{
			APIKey:    cfg.ResendAPIKey,
			FromEmail: cfg.FromEmail,
			FromName:  cfg.FromName,
			BaseURL:   cfg.ResendBaseURL,
			Timeout:   cfg.Timeout,
		}, logger)
		if sender == nil {
			return nil, provider, "RESEND_API_KEY not configured"
		}
		return sender, provider, ""
	case ProviderSendGrid:
		sender := NewSendGridSender(SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.FromEmail,
			FromName:  cfg.FromName,
		}, logger)
		if sender == nil {
			return nil, provider, "SENDGRID_API_KEY not configured"
		}
		return sender, provider, ""
	case ProviderSES:
		sender := NewSESSender(cfg.SESClient, SESConfig{
			FromEmail: cfg.FromEmail,
			FromName:  cfg.FromName,
		}, logger)
		if sender == nil {
			return nil, provider, "AWS SES client not configured"
		}
		return sender, provider, ""
	case ProviderStub:
		return NewStubEmailSender(logger), provider, ""
	default:
		return nil, provider, fmt.Sprintf("unknown email provider %q", provider)
	}
}
