// Package intake implements the booking form submission workflow.
package intake

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/carwash-booking/internal/booking"
	"github.com/wolfman30/carwash-booking/internal/bookings"
	"github.com/wolfman30/carwash-booking/internal/notify"
	"github.com/wolfman30/carwash-booking/internal/observability/metrics"
	"github.com/wolfman30/carwash-booking/internal/validation"
	"github.com/wolfman30/carwash-booking/pkg/logging"
)

var tracer = otel.Tracer("carwash.internal.intake")

// Store persists new bookings.
type Store interface {
	Insert(ctx context.Context, d booking.Draft) (*booking.Booking, error)
}

// Notifier alerts the operator about a stored booking.
type Notifier interface {
	NotifyOperator(ctx context.Context, b booking.Booking) notify.DispatchResult
}

// Request carries the booking form fields.
type Request struct {
	Service string `json:"service" validate:"required"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Time    string `json:"time" validate:"required,timeslot"`
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address" validate:"required"`
	Contact string `json:"contact" validate:"required"`
	Notes   string `json:"notes"`
}

// Path tells the client whether the operator was reached automatically.
type Path string

const (
	PathDispatched Path = "dispatched"
	PathFallback   Path = "fallback"
)

// Outcome is the result of a stored submission.
type Outcome struct {
	Booking      booking.Booking
	Path         Path
	Notification notify.DispatchResult
	Handoffs     []booking.Handoff
}

// ValidationError lists the form fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("intake: invalid fields: %s", strings.Join(e.Fields, ", "))
}

// StoreError reports that the booking could not be stored. Message is the
// store's own explanation.
type StoreError struct {
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	return "intake: store booking: " + e.Message
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Service runs the submission workflow.
type Service struct {
	store    Store
	notifier Notifier
	handoff  booking.HandoffConfig
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

func NewService(store Store, notifier Notifier, handoff booking.HandoffConfig, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("intake: store required")
	}
	if notifier == nil {
		panic("intake: notifier required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, notifier: notifier, handoff: handoff, metrics: m, logger: logger}
}

// Submit validates the form, stores a pending booking and notifies the
// operator. Once the row is stored the submission succeeds; when no channel
// reached the operator the outcome carries client-side handoff links instead.
func (s *Service) Submit(ctx context.Context, req Request) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "intake.submit")
	defer span.End()

	validation.TrimStrings(&req)
	fields, err := validation.Struct(req)
	if err != nil {
		return nil, fmt.Errorf("intake: validate: %w", err)
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	svc := booking.ResolveService(req.Service)
	stored, err := s.store.Insert(ctx, booking.Draft{
		ServiceType:    svc.Label,
		ServicePrice:   svc.Price,
		BookingDate:    req.Date,
		BookingTime:    req.Time,
		CustomerName:   req.Name,
		CustomerEmail:  req.Email,
		CustomerPhone:  req.Contact,
		ServiceAddress: req.Address,
		Notes:          req.Notes,
		Status:         booking.StatusPending,
	})
	if err != nil {
		span.RecordError(err)
		s.logger.Error("booking insert failed", "error", err)
		return nil, &StoreError{Message: bookings.Message(err), Err: err}
	}
	span.SetAttributes(attribute.String("carwash.booking_id", stored.ID))

	outcome := &Outcome{
		Booking:      *stored,
		Notification: s.notifier.NotifyOperator(ctx, *stored),
	}
	if outcome.Notification.Success() {
		outcome.Path = PathDispatched
	} else {
		outcome.Path = PathFallback
		outcome.Handoffs = booking.FallbackHandoffs(*stored, s.handoff)
		s.logger.Warn("operator not reached, returning handoffs", "booking_id", stored.ID, "errors", outcome.Notification.Errors())
	}
	s.metrics.ObserveSubmission(string(outcome.Path))
	span.SetAttributes(attribute.String("carwash.intake_path", string(outcome.Path)))

	s.logger.Info("booking submitted", "booking_id", stored.ID, "service", svc.Key, "path", outcome.Path)
	return outcome, nil
}
