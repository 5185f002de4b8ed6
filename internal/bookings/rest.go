package bookings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wolfman30/carwash-booking/internal/booking"
)

// RESTConfig configures a PostgREST-compatible booking store.
type RESTConfig struct {
	BaseURL    string // e.g. https://project.example.co/rest/v1
	ServiceKey string
	Table      string
	Timeout    time.Duration
}

// RESTStore talks to a REST-over-database endpoint using a bearer service key.
type RESTStore struct {
	baseURL    string
	key        string
	table      string
	httpClient *http.Client
	now        func() time.Time
}

// NewRESTStore builds a REST store. BaseURL and ServiceKey are required.
func NewRESTStore(cfg RESTConfig) (*RESTStore, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("bookings: rest base url required")
	}
	if strings.TrimSpace(cfg.ServiceKey) == "" {
		return nil, fmt.Errorf("bookings: rest service key required")
	}
	if cfg.Table == "" {
		cfg.Table = "bookings"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &RESTStore{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		key:        cfg.ServiceKey,
		table:      cfg.Table,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
	}, nil
}

// Insert creates the row and returns the stored representation.
func (s *RESTStore) Insert(ctx context.Context, d booking.Draft) (*booking.Booking, error) {
	if d.Status == "" {
		d.Status = booking.StatusPending
	}
	rows, err := s.do(ctx, http.MethodPost, s.tableURL(nil), []booking.Draft{d})
	if err != nil {
		return nil, fmt.Errorf("bookings: insert: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("bookings: insert: store returned no row")
	}
	return &rows[0], nil
}

// GetByID loads a single booking.
func (s *RESTStore) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	q := url.Values{}
	q.Set("id", "eq."+id)
	q.Set("select", "*")
	rows, err := s.do(ctx, http.MethodGet, s.tableURL(q), nil)
	if err != nil {
		if isInvalidID(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("bookings: get: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// ConfirmPending issues a conditional PATCH filtered on status=pending and
// reports whether a row was changed.
func (s *RESTStore) ConfirmPending(ctx context.Context, id string) (bool, error) {
	q := url.Values{}
	q.Set("id", "eq."+id)
	q.Set("status", "eq."+string(booking.StatusPending))
	patch := map[string]any{
		"status":     booking.StatusConfirmed,
		"updated_at": s.now().UTC().Format(time.RFC3339Nano),
	}
	rows, err := s.do(ctx, http.MethodPatch, s.tableURL(q), patch)
	if err != nil {
		if isInvalidID(err) {
			return false, nil
		}
		return false, fmt.Errorf("bookings: confirm: %w", err)
	}
	return len(rows) > 0, nil
}

func (s *RESTStore) tableURL(q url.Values) string {
	u := s.baseURL + "/" + url.PathEscape(s.table)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (s *RESTStore) do(ctx context.Context, method, endpoint string, payload any) ([]booking.Booking, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseRejection(resp.StatusCode, raw)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var rows []booking.Booking
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}

type restError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// invalidTextRepresentation is the Postgres code PostgREST relays when a
// filter value does not parse as the column type, e.g. a malformed uuid.
const invalidTextRepresentation = "22P02"

func isInvalidID(err error) bool {
	var rejected *RejectedError
	return errors.As(err, &rejected) && rejected.Code == invalidTextRepresentation
}

func parseRejection(status int, body []byte) error {
	rejected := &RejectedError{Status: status}
	var parsed restError
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		rejected.Code = parsed.Code
		rejected.Message = parsed.Message
		return rejected
	}
	rejected.Message = strings.TrimSpace(string(body))
	return rejected
}
