package bookings

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/carwash-booking/internal/booking"
)

func newTestRESTStore(t *testing.T, handler http.HandlerFunc) *RESTStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store, err := NewRESTStore(RESTConfig{BaseURL: srv.URL + "/rest/v1/", ServiceKey: "service-key"})
	require.NoError(t, err)
	return store
}

func TestNewRESTStore_RequiresCredentials(t *testing.T) {
	_, err := NewRESTStore(RESTConfig{ServiceKey: "k"})
	assert.Error(t, err)
	_, err = NewRESTStore(RESTConfig{BaseURL: "https://db.example"})
	assert.Error(t, err)
}

func TestRESTStore_Insert(t *testing.T) {
	store := newTestRESTStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/bookings", r.URL.Path)
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var drafts []booking.Draft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&drafts))
		require.Len(t, drafts, 1)
		assert.Equal(t, booking.StatusPending, drafts[0].Status)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `[{"id":"b-42","service_type":"Deluxe","service_price":35,"status":"pending","created_at":"2025-06-01T10:00:00.123456+00:00","updated_at":"2025-06-01T10:00:00.123456+00:00"}]`)
	})

	b, err := store.Insert(context.Background(), booking.Draft{ServiceType: "Deluxe", ServicePrice: 35})
	require.NoError(t, err)
	assert.Equal(t, "b-42", b.ID)
	assert.Equal(t, 35.0, b.ServicePrice)
	assert.Equal(t, 2025, b.CreatedAt.Year())
}

func TestRESTStore_InsertRejected(t *testing.T) {
	store := newTestRESTStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"code":"23502","message":"null value in column \"customer_phone\" violates not-null constraint"}`)
	})

	_, err := store.Insert(context.Background(), booking.Draft{})
	require.Error(t, err)
	assert.Equal(t, `null value in column "customer_phone" violates not-null constraint`, Message(err))

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "23502", rejected.Code)
}

func TestRESTStore_GetByID(t *testing.T) {
	store := newTestRESTStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		if r.URL.Query().Get("id") == "eq.known" {
			_, _ = io.WriteString(w, `[{"id":"known","status":"pending","customer_email":"jane@example.com"}]`)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	})

	b, err := store.GetByID(context.Background(), "known")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", b.CustomerEmail)

	_, err = store.GetByID(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRESTStore_MalformedIDIsNotFound(t *testing.T) {
	store := newTestRESTStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.not-a-uuid", r.URL.Query().Get("id"))
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"code":"22P02","message":"invalid input syntax for type uuid: \"not-a-uuid\""}`)
	})

	_, err := store.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	changed, err := store.ConfirmPending(context.Background(), "not-a-uuid")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRESTStore_ConfirmPendingIsConditional(t *testing.T) {
	calls := 0
	store := newTestRESTStore(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.b-1", r.URL.Query().Get("id"))
		assert.Equal(t, "eq.pending", r.URL.Query().Get("status"))

		var patch map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		assert.Equal(t, "confirmed", patch["status"])

		if calls == 1 {
			_, _ = io.WriteString(w, `[{"id":"b-1","status":"confirmed"}]`)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	})

	changed, err := store.ConfirmPending(context.Background(), "b-1")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = store.ConfirmPending(context.Background(), "b-1")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRESTStore_ConfirmPendingFailure(t *testing.T) {
	store := newTestRESTStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "upstream unavailable")
	})

	_, err := store.ConfirmPending(context.Background(), "b-1")
	require.Error(t, err)
	assert.Equal(t, "upstream unavailable", Message(err))
}
