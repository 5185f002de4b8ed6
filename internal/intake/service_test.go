package intake

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/carwash-booking/internal/booking"
	"github.com/wolfman30/carwash-booking/internal/bookings"
	"github.com/wolfman30/carwash-booking/internal/notify"
)

type fakeStore struct {
	inserted []booking.Draft
	err      error
}

func (f *fakeStore) Insert(_ context.Context, d booking.Draft) (*booking.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inserted = append(f.inserted, d)
	now := time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
	return &booking.Booking{
		ID:             "3f1c2a9e-0000-4000-8000-000000000001",
		ServiceType:    d.ServiceType,
		ServicePrice:   d.ServicePrice,
		BookingDate:    d.BookingDate,
		BookingTime:    d.BookingTime,
		CustomerName:   d.CustomerName,
		CustomerEmail:  d.CustomerEmail,
		CustomerPhone:  d.CustomerPhone,
		ServiceAddress: d.ServiceAddress,
		Notes:          d.Notes,
		Status:         d.Status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

type fakeEmail struct {
	sent []notify.EmailMessage
	err  error
}

func (f *fakeEmail) Send(_ context.Context, msg notify.EmailMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeChat struct {
	bodies []string
	err    error
}

func (f *fakeChat) SendMessage(_ context.Context, _, body string) error {
	if f.err != nil {
		return f.err
	}
	f.bodies = append(f.bodies, body)
	return nil
}

var handoffCfg = booking.HandoffConfig{
	OperatorEmail: "owner@wash.example",
	OperatorPhone: "+447827092693",
	BusinessName:  "TBI Mobile Car Wash",
}

func newService(store Store, email notify.EmailSender, chat notify.ChatSender) *Service {
	d := notify.NewDispatcher(email, chat, notify.DispatcherConfig{
		SiteURL:       "https://wash.example",
		OperatorEmail: handoffCfg.OperatorEmail,
		OperatorPhone: handoffCfg.OperatorPhone,
		ChatTo:        "whatsapp:+447827092693",
	}, nil, nil)
	return NewService(store, d, handoffCfg, nil, nil)
}

func deluxeRequest() Request {
	return Request{
		Service: "deluxe",
		Date:    "2025-06-01",
		Time:    "10:00",
		Name:    " Jane Doe ",
		Address: "1 Test St",
		Contact: "+441234567890",
	}
}

func TestSubmit_DeluxeBookingDispatched(t *testing.T) {
	store := &fakeStore{}
	email := &fakeEmail{}
	chat := &fakeChat{}
	svc := newService(store, email, chat)

	outcome, err := svc.Submit(context.Background(), deluxeRequest())
	require.NoError(t, err)

	require.Len(t, store.inserted, 1)
	draft := store.inserted[0]
	assert.Equal(t, "Deluxe - £35 (~45 mins)", draft.ServiceType)
	assert.Equal(t, 35.0, draft.ServicePrice)
	assert.Equal(t, "Jane Doe", draft.CustomerName)
	assert.Equal(t, "", draft.CustomerEmail)
	assert.Equal(t, booking.StatusPending, draft.Status)

	assert.Equal(t, PathDispatched, outcome.Path)
	assert.Empty(t, outcome.Handoffs)
	assert.Equal(t, "3f1c2a9e-0000-4000-8000-000000000001", outcome.Booking.ID)
	assert.True(t, outcome.Notification.Sent(notify.ChannelEmail))
	assert.True(t, outcome.Notification.Sent(notify.ChannelWhatsApp))

	require.Len(t, email.sent, 1)
	assert.Contains(t, email.sent[0].HTML, "confirm-booking?id=3f1c2a9e-0000-4000-8000-000000000001")
	require.Len(t, chat.bodies, 1)
	assert.Contains(t, chat.bodies[0], "Deluxe - £35 (~45 mins)")
}

func TestSubmit_FallbackWhenNoChannelDelivers(t *testing.T) {
	svc := newService(&fakeStore{}, &fakeEmail{err: errors.New("resend 500")}, nil)

	req := deluxeRequest()
	req.Notes = "Gate code 1234"
	outcome, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, PathFallback, outcome.Path)
	require.Len(t, outcome.Handoffs, 2)
	assert.Equal(t, booking.HandoffMailto, outcome.Handoffs[0].Kind)
	assert.True(t, strings.HasPrefix(outcome.Handoffs[0].URL, "mailto:owner@wash.example?"))
	assert.Equal(t, booking.HandoffWhatsApp, outcome.Handoffs[1].Kind)
	assert.True(t, strings.HasPrefix(outcome.Handoffs[1].URL, "https://wa.me/447827092693?text="))

	decoded, err := url.QueryUnescape(outcome.Handoffs[1].URL)
	require.NoError(t, err)
	assert.Contains(t, decoded, "Gate code 1234")
	assert.Contains(t, decoded, "Not provided")
}

func TestSubmit_PartialDeliveryIsDispatched(t *testing.T) {
	svc := newService(&fakeStore{}, &fakeEmail{err: errors.New("down")}, &fakeChat{})

	outcome, err := svc.Submit(context.Background(), deluxeRequest())
	require.NoError(t, err)
	assert.Equal(t, PathDispatched, outcome.Path)
	assert.Nil(t, outcome.Handoffs)
}

func TestSubmit_ValidationNeverCallsStore(t *testing.T) {
	store := &fakeStore{}
	svc := newService(store, &fakeEmail{}, nil)

	_, err := svc.Submit(context.Background(), Request{
		Service: "deluxe",
		Date:    "June 1st",
		Time:    "08:15",
		Name:    "   ",
		Email:   "nope",
		Address: "1 Test St",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"date", "time", "name", "email", "contact"}, verr.Fields)
	assert.Empty(t, store.inserted)
}

func TestSubmit_StoreErrorCarriesStoreMessage(t *testing.T) {
	email := &fakeEmail{}
	svc := newService(&fakeStore{err: &bookings.RejectedError{Status: 400, Code: "23514", Message: "new row violates check constraint"}}, email, nil)

	_, err := svc.Submit(context.Background(), deluxeRequest())

	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "new row violates check constraint", serr.Message)
	assert.Empty(t, email.sent)
}

func TestSubmit_UnknownServiceKeepsRawKey(t *testing.T) {
	store := &fakeStore{}
	svc := newService(store, &fakeEmail{}, nil)

	req := deluxeRequest()
	req.Service = "mystery"
	_, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "mystery", store.inserted[0].ServiceType)
	assert.Equal(t, 0.0, store.inserted[0].ServicePrice)
}
