package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/carwash-booking/internal/booking"
)

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const bookingColumns = `id::text, service_type, service_price::float8, booking_date::text, booking_time,
	customer_name, COALESCE(customer_email, ''), customer_phone, service_address, COALESCE(notes, ''),
	status, created_at, updated_at`

// PostgresStore stores bookings in the bookings table.
type PostgresStore struct {
	db  rowQuerier
	now func() time.Time
}

// NewPostgresStore creates a store backed by a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return &PostgresStore{db: pool, now: time.Now}
}

func newPostgresStoreWithQuerier(db rowQuerier) *PostgresStore {
	if db == nil {
		panic("bookings: querier required")
	}
	return &PostgresStore{db: db, now: time.Now}
}

// Insert stores a new booking row and returns it with its assigned id.
func (s *PostgresStore) Insert(ctx context.Context, d booking.Draft) (*booking.Booking, error) {
	status := d.Status
	if status == "" {
		status = booking.StatusPending
	}
	now := s.now().UTC()
	query := `
		INSERT INTO bookings (id, service_type, service_price, booking_date, booking_time,
			customer_name, customer_email, customer_phone, service_address, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		RETURNING ` + bookingColumns

	row := s.db.QueryRow(ctx, query,
		uuid.NewString(), d.ServiceType, d.ServicePrice, d.BookingDate, d.BookingTime,
		d.CustomerName, d.CustomerEmail, d.CustomerPhone, d.ServiceAddress, d.Notes, string(status), now,
	)
	b, err := scanBooking(row)
	if err != nil {
		return nil, fmt.Errorf("bookings: insert: %w", err)
	}
	return b, nil
}

// GetByID loads a booking, returning ErrNotFound when it does not exist.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("bookings: get: %w", err)
	}
	return b, nil
}

// ConfirmPending moves a pending booking to confirmed. It reports false when
// no pending row matched, which happens when the booking was confirmed by a
// concurrent request.
func (s *PostgresStore) ConfirmPending(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4
	`
	ct, err := s.db.Exec(ctx, query, id, string(booking.StatusConfirmed), s.now().UTC(), string(booking.StatusPending))
	if err != nil {
		return false, fmt.Errorf("bookings: confirm: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var (
		b      booking.Booking
		status string
	)
	if err := row.Scan(
		&b.ID, &b.ServiceType, &b.ServicePrice, &b.BookingDate, &b.BookingTime,
		&b.CustomerName, &b.CustomerEmail, &b.CustomerPhone, &b.ServiceAddress, &b.Notes,
		&status, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	b.Status = booking.Status(status)
	return &b, nil
}
