package notify

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bookingBody = `{"booking":{"id":"b-1","customer_name":"Jane","customer_phone":"+44123","service_type":"Deluxe - £35 (~45 mins)","service_price":35,"booking_date":"2025-06-01","booking_time":"10:00","service_address":"1 Test St","status":"pending"}}`

func TestNotifyBookingHandler_Success(t *testing.T) {
	h := NewHandler(NewDispatcher(&recordingEmail{}, nil, testConfig(), nil, nil), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/notifications/booking", strings.NewReader(bookingBody))
	rec := httptest.NewRecorder()

	h.NotifyBooking(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp NotificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.EmailSent)
	assert.False(t, resp.WhatsAppSent)
	assert.Equal(t, "Booking notifications processed", resp.Message)
	assert.Len(t, resp.Errors, 1)
}

func TestNotifyBookingHandler_AllFailed(t *testing.T) {
	h := NewHandler(NewDispatcher(&recordingEmail{err: errors.New("down")}, nil, testConfig(), nil, nil), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/notifications/booking", strings.NewReader(bookingBody))
	rec := httptest.NewRecorder()

	h.NotifyBooking(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp NotificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Failed to send notifications", resp.Message)
	assert.Contains(t, resp.Errors, "Email failed: down")
}

func TestNotifyBookingHandler_MissingFields(t *testing.T) {
	h := NewHandler(NewDispatcher(&recordingEmail{}, nil, testConfig(), nil, nil), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/notifications/booking", strings.NewReader(`{"booking":{"customer_name":"Jane"}}`))
	rec := httptest.NewRecorder()

	h.NotifyBooking(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing required booking information")
}

func TestNotifyBookingHandler_InvalidJSON(t *testing.T) {
	h := NewHandler(NewDispatcher(nil, nil, testConfig(), nil, nil), nil)
	rec := httptest.NewRecorder()

	h.NotifyBooking(rec, httptest.NewRequest(http.MethodPost, "/api/notifications/booking", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
