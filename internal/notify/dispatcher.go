package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/carwash-booking/internal/booking"
	"github.com/wolfman30/carwash-booking/internal/messaging/templates"
	"github.com/wolfman30/carwash-booking/internal/observability/metrics"
	"github.com/wolfman30/carwash-booking/pkg/logging"
)

var tracer = otel.Tracer("carwash.internal.notify")

const contactPlainText = "New message from the {{.BusinessName}} contact form\n\nFrom: {{.Name}} <{{.Email}}>\n\n{{.Message}}\n"

// ChatSender delivers a plaintext chat message to a destination address.
type ChatSender interface {
	SendMessage(ctx context.Context, to, body string) error
}

// ContactMessage is a contact-form submission relayed to the operator.
type ContactMessage struct {
	Name    string
	Email   string
	Message string
}

// DispatcherConfig holds operator targets and the reasons reported when a
// channel has no provider.
type DispatcherConfig struct {
	SiteURL       string
	BusinessName  string
	OperatorEmail string
	OperatorPhone string
	ChatTo        string

	EmailUnconfiguredReason string
	ChatUnconfiguredReason  string
}

// Dispatcher fans booking and contact notifications out to email and chat.
// Channel failures are folded into the returned outcomes, never returned as
// errors.
type Dispatcher struct {
	email    EmailSender
	chat     ChatSender
	cfg      DispatcherConfig
	renderer templates.Renderer
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewDispatcher wires the senders. Either sender may be nil, in which case
// that channel is reported as skipped.
func NewDispatcher(email EmailSender, chat ChatSender, cfg DispatcherConfig, m *metrics.BookingMetrics, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.BusinessName == "" {
		cfg.BusinessName = "TBI Mobile Car Wash"
	}
	if cfg.EmailUnconfiguredReason == "" {
		cfg.EmailUnconfiguredReason = "email provider not configured"
	}
	if cfg.ChatUnconfiguredReason == "" {
		cfg.ChatUnconfiguredReason = "Twilio WhatsApp credentials not fully configured"
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	return &Dispatcher{
		email:   email,
		chat:    chat,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
	}
}

// ActionURL builds the operator link for a confirmation action.
func (d *Dispatcher) ActionURL(id, action string) string {
	return fmt.Sprintf("%s/confirm-booking?id=%s&action=%s", d.cfg.SiteURL, url.QueryEscape(id), url.QueryEscape(action))
}

// NotifyOperator alerts the operator about a new booking on every channel.
func (d *Dispatcher) NotifyOperator(ctx context.Context, b booking.Booking) DispatchResult {
	ctx, span := tracer.Start(ctx, "notify.operator")
	defer span.End()
	span.SetAttributes(attribute.String("carwash.booking_id", b.ID))

	var result DispatchResult

	status, detail := d.sendOperatorEmail(ctx, b)
	result.record(ChannelEmail, status, detail)

	status, detail = d.sendOperatorChat(ctx, b)
	result.record(ChannelWhatsApp, status, detail)

	d.logger.Info("operator notification processed",
		"booking_id", b.ID,
		"email", statusOf(result, ChannelEmail),
		"whatsapp", statusOf(result, ChannelWhatsApp),
	)
	return result
}

func (d *Dispatcher) sendOperatorEmail(ctx context.Context, b booking.Booking) (OutcomeStatus, string) {
	if d.email == nil {
		return d.skip(ChannelEmail, d.cfg.EmailUnconfiguredReason)
	}
	if strings.TrimSpace(d.cfg.OperatorEmail) == "" {
		return d.skip(ChannelEmail, "operator email not configured")
	}
	html, err := d.renderer.RenderHTML(templates.OperatorBookingEmail, map[string]any{
		"Booking":      b,
		"ConfirmURL":   d.ActionURL(b.ID, "confirm"),
		"CancelURL":    d.ActionURL(b.ID, "cancel"),
		"BusinessName": d.cfg.BusinessName,
	})
	if err != nil {
		return d.fail(ChannelEmail, err)
	}
	msg := EmailMessage{
		To:      d.cfg.OperatorEmail,
		Subject: fmt.Sprintf("🚗 New Car Wash Booking - %s", b.CustomerName),
		Body:    booking.FormatEmailSummary(b, d.cfg.BusinessName),
		HTML:    html,
	}
	return d.deliverEmail(ctx, msg)
}

func (d *Dispatcher) sendOperatorChat(ctx context.Context, b booking.Booking) (OutcomeStatus, string) {
	if d.chat == nil {
		return d.skip(ChannelWhatsApp, d.cfg.ChatUnconfiguredReason)
	}
	start := time.Now()
	err := d.chat.SendMessage(ctx, d.cfg.ChatTo, booking.FormatChatSummary(b))
	d.metrics.ObserveSendLatency(string(ChannelWhatsApp), time.Since(start).Seconds())
	if err != nil {
		return d.fail(ChannelWhatsApp, err)
	}
	d.metrics.ObserveChannel(string(ChannelWhatsApp), string(OutcomeSent))
	return OutcomeSent, ""
}

// NotifyCustomerConfirmed emails the customer that their booking is
// confirmed. Skipped when the booking has no customer email.
func (d *Dispatcher) NotifyCustomerConfirmed(ctx context.Context, b booking.Booking) ChannelOutcome {
	ctx, span := tracer.Start(ctx, "notify.customer_confirmed")
	defer span.End()
	span.SetAttributes(attribute.String("carwash.booking_id", b.ID))

	status, detail := d.sendCustomerEmail(ctx, b)
	if status == OutcomeFailed {
		d.logger.Error("customer confirmation email failed", "booking_id", b.ID, "error", detail)
	}
	return ChannelOutcome{Channel: ChannelEmail, Status: status, Error: detail}
}

func (d *Dispatcher) sendCustomerEmail(ctx context.Context, b booking.Booking) (OutcomeStatus, string) {
	if !b.HasCustomerEmail() {
		d.metrics.ObserveChannel(string(ChannelEmail), string(OutcomeSkipped))
		return OutcomeSkipped, ""
	}
	if d.email == nil {
		return d.skip(ChannelEmail, d.cfg.EmailUnconfiguredReason)
	}
	whatsApp := ""
	if d.cfg.OperatorPhone != "" {
		whatsApp = booking.WhatsAppChatURL(d.cfg.OperatorPhone)
	}
	html, err := d.renderer.RenderHTML(templates.CustomerConfirmedEmail, map[string]any{
		"Booking":       b,
		"WhatsAppURL":   whatsApp,
		"OperatorPhone": d.cfg.OperatorPhone,
		"BusinessName":  d.cfg.BusinessName,
	})
	if err != nil {
		return d.fail(ChannelEmail, err)
	}
	return d.deliverEmail(ctx, EmailMessage{
		To:      b.CustomerEmail,
		ToName:  b.CustomerName,
		Subject: fmt.Sprintf("✅ Booking Confirmed - %s", d.cfg.BusinessName),
		HTML:    html,
	})
}

// RelayContact forwards a contact-form message to the operator with
// reply-to set to the visitor.
func (d *Dispatcher) RelayContact(ctx context.Context, msg ContactMessage) DispatchResult {
	ctx, span := tracer.Start(ctx, "notify.contact")
	defer span.End()

	var result DispatchResult
	status, detail := d.sendContactEmail(ctx, msg)
	result.record(ChannelEmail, status, detail)
	return result
}

func (d *Dispatcher) sendContactEmail(ctx context.Context, msg ContactMessage) (OutcomeStatus, string) {
	if d.email == nil {
		return d.skip(ChannelEmail, d.cfg.EmailUnconfiguredReason)
	}
	if strings.TrimSpace(d.cfg.OperatorEmail) == "" {
		return d.skip(ChannelEmail, "operator email not configured")
	}
	data := map[string]any{
		"Name":         msg.Name,
		"Email":        msg.Email,
		"Message":      msg.Message,
		"BusinessName": d.cfg.BusinessName,
	}
	html, err := d.renderer.RenderHTML(templates.ContactMessageEmail, data)
	if err != nil {
		return d.fail(ChannelEmail, err)
	}
	plain, err := d.renderer.Render("contact_plain", contactPlainText, data)
	if err != nil {
		return d.fail(ChannelEmail, err)
	}
	return d.deliverEmail(ctx, EmailMessage{
		To:      d.cfg.OperatorEmail,
		ReplyTo: msg.Email,
		Subject: fmt.Sprintf("📧 Contact Form Message - %s", msg.Name),
		Body:    plain,
		HTML:    html,
	})
}

func (d *Dispatcher) deliverEmail(ctx context.Context, msg EmailMessage) (OutcomeStatus, string) {
	start := time.Now()
	err := d.email.Send(ctx, msg)
	d.metrics.ObserveSendLatency(string(ChannelEmail), time.Since(start).Seconds())
	if err != nil {
		return d.fail(ChannelEmail, err)
	}
	d.metrics.ObserveChannel(string(ChannelEmail), string(OutcomeSent))
	return OutcomeSent, ""
}

func (d *Dispatcher) skip(ch Channel, reason string) (OutcomeStatus, string) {
	d.metrics.ObserveChannel(string(ch), string(OutcomeSkipped))
	d.logger.Warn("notification channel skipped", "channel", ch, "reason", reason)
	return OutcomeSkipped, reason
}

func (d *Dispatcher) fail(ch Channel, err error) (OutcomeStatus, string) {
	d.metrics.ObserveChannel(string(ch), string(OutcomeFailed))
	d.logger.Error("notification channel failed", "channel", ch, "error", err)
	return OutcomeFailed, err.Error()
}

func statusOf(r DispatchResult, ch Channel) OutcomeStatus {
	if o, ok := r.Outcome(ch); ok {
		return o.Status
	}
	return ""
}
