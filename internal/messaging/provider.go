package messaging

import (
	"strings"

	"github.com/wolfman30/carwash-booking/pkg/logging"
)

// NotConfiguredReason is reported when any WhatsApp credential is missing.
const NotConfiguredReason = "Twilio WhatsApp credentials not fully configured"

// BuildChatSender returns the Twilio WhatsApp sender when every credential is
// present. Otherwise it returns nil and the reason the channel is disabled.
func BuildChatSender(cfg TwilioConfig, to string, logger *logging.Logger) (*TwilioSender, string) {
	var missing []string
	if strings.TrimSpace(cfg.AccountSID) == "" {
		missing = append(missing, "account SID")
	}
	if strings.TrimSpace(cfg.AuthToken) == "" {
		missing = append(missing, "auth token")
	}
	if WhatsAppAddress(cfg.From) == "" {
		missing = append(missing, "sender")
	}
	if WhatsAppAddress(to) == "" {
		missing = append(missing, "destination")
	}
	if len(missing) > 0 {
		if logger != nil {
			logger.Warn("whatsapp notifications disabled", "missing", strings.Join(missing, ", "))
		}
		return nil, NotConfiguredReason
	}
	return NewTwilioSender(cfg, logger), ""
}
