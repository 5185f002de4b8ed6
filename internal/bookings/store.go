// Package bookings persists booking rows. Two backends are provided: a
// Postgres store on a pgx pool and a REST store speaking PostgREST.
package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wolfman30/carwash-booking/internal/booking"
)

// Store is implemented by both backends.
type Store interface {
	Insert(ctx context.Context, d booking.Draft) (*booking.Booking, error)
	GetByID(ctx context.Context, id string) (*booking.Booking, error)
	ConfirmPending(ctx context.Context, id string) (bool, error)
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*RESTStore)(nil)
)

// ErrNotFound is returned when no booking matches the requested id.
var ErrNotFound = errors.New("bookings: booking not found")

// RejectedError is returned when the store answered but refused the
// operation. Message is the store's own explanation.
type RejectedError struct {
	Status  int
	Code    string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("store rejected request with status %d", e.Status)
	}
	return e.Message
}

// Message extracts the store-reported message from err, falling back to the
// error text when the store gave no structured reason.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.Error()
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Message != "" {
		return pgErr.Message
	}
	return err.Error()
}
