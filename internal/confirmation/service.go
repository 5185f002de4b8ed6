// Package confirmation moves bookings from pending to confirmed when the
// operator follows the link in the new-booking alert.
package confirmation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/carwash-booking/internal/booking"
	"github.com/wolfman30/carwash-booking/internal/bookings"
	"github.com/wolfman30/carwash-booking/internal/notify"
	"github.com/wolfman30/carwash-booking/internal/observability/metrics"
	"github.com/wolfman30/carwash-booking/pkg/logging"
)

var tracer = otel.Tracer("carwash.internal.confirmation")

const ActionConfirm = "confirm"

var (
	ErrMissingFields     = errors.New("confirmation: missing booking id or action")
	ErrUnsupportedAction = errors.New("confirmation: only confirm action is supported")
	ErrNotFound          = errors.New("confirmation: booking not found")
)

// ConflictError is returned when the booking is in a status that cannot be
// confirmed.
type ConflictError struct {
	Status booking.Status
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("confirmation: booking is %s", e.Status)
}

// Store loads bookings and applies the conditional pending to confirmed update.
type Store interface {
	GetByID(ctx context.Context, id string) (*booking.Booking, error)
	ConfirmPending(ctx context.Context, id string) (bool, error)
}

// Notifier emails the customer once the booking is confirmed.
type Notifier interface {
	NotifyCustomerConfirmed(ctx context.Context, b booking.Booking) notify.ChannelOutcome
}

// Request identifies the booking and the requested action.
type Request struct {
	BookingID string `json:"bookingId"`
	Action    string `json:"action"`
}

// Result is returned for a successful confirmation request.
type Result struct {
	BookingUpdated bool   `json:"bookingUpdated"`
	EmailSent      bool   `json:"emailSent"`
	Message        string `json:"message"`
}

// Service confirms bookings.
type Service struct {
	store    Store
	notifier Notifier
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

func NewService(store Store, notifier Notifier, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("confirmation: store required")
	}
	if notifier == nil {
		panic("confirmation: notifier required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, notifier: notifier, metrics: m, logger: logger}
}

// Confirm applies the action. Only the request whose conditional update
// flips the row emails the customer; repeats report the booking as already
// confirmed.
func (s *Service) Confirm(ctx context.Context, req Request) (*Result, error) {
	ctx, span := tracer.Start(ctx, "confirmation.confirm")
	defer span.End()

	id := strings.TrimSpace(req.BookingID)
	action := strings.TrimSpace(req.Action)
	if id == "" || action == "" {
		s.metrics.ObserveConfirmation("invalid")
		return nil, ErrMissingFields
	}
	if action != ActionConfirm {
		s.metrics.ObserveConfirmation("invalid")
		return nil, ErrUnsupportedAction
	}
	span.SetAttributes(attribute.String("carwash.booking_id", id))

	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookings.ErrNotFound) {
			s.metrics.ObserveConfirmation("not_found")
			return nil, ErrNotFound
		}
		span.RecordError(err)
		s.metrics.ObserveConfirmation("error")
		return nil, fmt.Errorf("confirmation: load booking: %w", err)
	}

	if b.Status == booking.StatusConfirmed {
		s.metrics.ObserveConfirmation("already_confirmed")
		return alreadyConfirmed(), nil
	}
	if !b.Status.CanTransition(booking.StatusConfirmed) {
		s.metrics.ObserveConfirmation("conflict")
		return nil, &ConflictError{Status: b.Status}
	}

	updated, err := s.store.ConfirmPending(ctx, id)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveConfirmation("error")
		return nil, fmt.Errorf("confirmation: update booking: %w", err)
	}
	if !updated {
		s.logger.Info("booking confirmed by a concurrent request", "booking_id", id)
		s.metrics.ObserveConfirmation("already_confirmed")
		return alreadyConfirmed(), nil
	}

	b.Status = booking.StatusConfirmed
	result := &Result{BookingUpdated: true, Message: "Booking confirmed successfully"}
	if b.HasCustomerEmail() {
		outcome := s.notifier.NotifyCustomerConfirmed(ctx, *b)
		result.EmailSent = outcome.Status == notify.OutcomeSent
	}
	if result.EmailSent {
		result.Message += " and customer notified"
	}
	s.metrics.ObserveConfirmation("confirmed")
	s.logger.Info("booking confirmed", "booking_id", id, "email_sent", result.EmailSent)
	return result, nil
}

func alreadyConfirmed() *Result {
	return &Result{Message: "Booking was already confirmed"}
}
