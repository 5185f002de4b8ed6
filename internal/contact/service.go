// Package contact relays contact-form messages to the operator.
package contact

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/carwash-booking/internal/booking"
	"github.com/wolfman30/carwash-booking/internal/notify"
	"github.com/wolfman30/carwash-booking/internal/validation"
	"github.com/wolfman30/carwash-booking/pkg/logging"
)

// Relay forwards a contact message to the operator.
type Relay interface {
	RelayContact(ctx context.Context, msg notify.ContactMessage) notify.DispatchResult
}

// Message is a contact-form submission.
type Message struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

// ValidationError lists the form fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("contact: invalid fields: %s", strings.Join(e.Fields, ", "))
}

// RelayError is returned when no channel delivered the message. Handoff is a
// mailto link the visitor can use instead.
type RelayError struct {
	Errors  []string
	Handoff string
}

func (e *RelayError) Error() string {
	return "contact: relay failed: " + strings.Join(e.Errors, "; ")
}

// Service validates and relays contact messages.
type Service struct {
	relay         Relay
	operatorEmail string
	logger        *logging.Logger
}

func NewService(relay Relay, operatorEmail string, logger *logging.Logger) *Service {
	if relay == nil {
		panic("contact: relay required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{relay: relay, operatorEmail: operatorEmail, logger: logger}
}

// Send relays msg. A failed relay is returned as *RelayError.
func (s *Service) Send(ctx context.Context, msg Message) error {
	validation.TrimStrings(&msg)
	fields, err := validation.Struct(msg)
	if err != nil {
		return fmt.Errorf("contact: validate: %w", err)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	result := s.relay.RelayContact(ctx, notify.ContactMessage{
		Name:    msg.Name,
		Email:   msg.Email,
		Message: msg.Message,
	})
	if !result.Success() {
		s.logger.Error("contact relay failed", "errors", result.Errors())
		return &RelayError{
			Errors:  result.Errors(),
			Handoff: s.handoff(msg),
		}
	}
	s.logger.Info("contact message relayed", "from", msg.Email)
	return nil
}

func (s *Service) handoff(msg Message) string {
	if s.operatorEmail == "" {
		return ""
	}
	body := fmt.Sprintf("%s\n\n%s\n%s", msg.Message, msg.Name, msg.Email)
	return booking.MailtoURL(s.operatorEmail, "Contact Form Message - "+msg.Name, body)
}
