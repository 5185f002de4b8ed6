package messaging

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSender(t *testing.T, handler http.HandlerFunc) (*TwilioSender, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s := NewTwilioSender(TwilioConfig{
		AccountSID: "AC123",
		AuthToken:  "secret",
		From:       "whatsapp:+14155238886",
		BaseURL:    srv.URL,
	}, nil)
	s.backoff = func(int) time.Duration { return time.Millisecond }
	return s, srv
}

func TestTwilioSender_SendMessage(t *testing.T) {
	var got url.Values
	var path string
	var user, pass string
	s, _ := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		user, pass, _ = r.BasicAuth()
		body, _ := io.ReadAll(r.Body)
		got, _ = url.ParseQuery(string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1","status":"queued"}`))
	})

	err := s.SendMessage(context.Background(), "+44 7700 900123", "New booking")
	require.NoError(t, err)
	assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", path)
	assert.Equal(t, "AC123", user)
	assert.Equal(t, "secret", pass)
	assert.Equal(t, "whatsapp:+447700900123", got.Get("To"))
	assert.Equal(t, "whatsapp:+14155238886", got.Get("From"))
	assert.Equal(t, "New booking", got.Get("Body"))
}

func TestTwilioSender_NoRetryOnClientError(t *testing.T) {
	var calls int32
	s, _ := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number"}`))
	})

	err := s.SendMessage(context.Background(), "whatsapp:+447700900123", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code 21211")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTwilioSender_RetriesServerError(t *testing.T) {
	var calls int32
	s, _ := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, s.SendMessage(context.Background(), "+447700900123", "hi"))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestTwilioSender_Validation(t *testing.T) {
	s := NewTwilioSender(TwilioConfig{}, nil)
	assert.Error(t, s.SendMessage(context.Background(), "+447700900123", "hi"))

	s = NewTwilioSender(TwilioConfig{AccountSID: "AC", AuthToken: "t", From: "+1415"}, nil)
	assert.Error(t, s.SendMessage(context.Background(), "", "hi"))
	assert.Error(t, s.SendMessage(context.Background(), "+447700900123", "   "))
}

func TestFormatTwilioError(t *testing.T) {
	assert.Equal(t, "status 500", formatTwilioError(500, nil))
	assert.Equal(t, "status 400: bad", formatTwilioError(400, []byte("bad")))
	assert.Equal(t, "status 401: Authenticate", formatTwilioError(401, []byte(`{"message":"Authenticate"}`)))
}

func TestWhatsAppAddress(t *testing.T) {
	assert.Equal(t, "whatsapp:+447700900123", WhatsAppAddress("whatsapp:+447700900123"))
	assert.Equal(t, "whatsapp:+447700900123", WhatsAppAddress("+44 7700 900123"))
	assert.Equal(t, "whatsapp:+447700900123", WhatsAppAddress("WhatsApp:447700900123"))
	assert.Equal(t, "", WhatsAppAddress("whatsapp:"))
	assert.Equal(t, "", WhatsAppAddress(""))
}

func TestNormalizeE164(t *testing.T) {
	assert.Equal(t, "+15551234567", NormalizeE164("1 (555) 123-4567"))
	assert.Equal(t, "+447700900123", NormalizeE164(" +44 7700-900123 "))
	assert.Equal(t, "", NormalizeE164("abc"))
}

func TestBuildChatSender(t *testing.T) {
	sender, reason := BuildChatSender(TwilioConfig{AccountSID: "AC", AuthToken: "t"}, "+447700900123", nil)
	assert.Nil(t, sender)
	assert.Equal(t, "Twilio WhatsApp credentials not fully configured", reason)

	sender, reason = BuildChatSender(TwilioConfig{AccountSID: "AC", AuthToken: "t", From: "whatsapp:+14155238886"}, "whatsapp:+447700900123", nil)
	require.NotNil(t, sender)
	assert.Empty(t, reason)
}
