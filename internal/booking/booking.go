// Package booking defines the booking record, its lifecycle and the static
// service catalog offered on the booking form.
package booking

import (
	"strconv"
	"strings"
	"time"
)

// Status is the lifecycle state of a booking row.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// CanTransition reports whether a booking may move from s to next. Only
// pending -> confirmed is implemented; completed and cancelled are reserved.
func (s Status) CanTransition(next Status) bool {
	return s == StatusPending && next == StatusConfirmed
}

// Booking is a single customer service request as stored.
type Booking struct {
	ID             string    `json:"id"`
	ServiceType    string    `json:"service_type"`
	ServicePrice   float64   `json:"service_price"`
	BookingDate    string    `json:"booking_date"`
	BookingTime    string    `json:"booking_time"`
	CustomerName   string    `json:"customer_name"`
	CustomerEmail  string    `json:"customer_email"`
	CustomerPhone  string    `json:"customer_phone"`
	ServiceAddress string    `json:"service_address"`
	Notes          string    `json:"notes"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Draft is the insert payload for a new booking; the store assigns the id
// and timestamps.
type Draft struct {
	ServiceType    string  `json:"service_type"`
	ServicePrice   float64 `json:"service_price"`
	BookingDate    string  `json:"booking_date"`
	BookingTime    string  `json:"booking_time"`
	CustomerName   string  `json:"customer_name"`
	CustomerEmail  string  `json:"customer_email"`
	CustomerPhone  string  `json:"customer_phone"`
	ServiceAddress string  `json:"service_address"`
	Notes          string  `json:"notes"`
	Status         Status  `json:"status"`
}

// HasCustomerEmail reports whether a customer confirmation can be sent.
func (b Booking) HasCustomerEmail() bool {
	return strings.TrimSpace(b.CustomerEmail) != ""
}

// PriceLabel renders the price without trailing zeros.
func (b Booking) PriceLabel() string {
	return strconv.FormatFloat(b.ServicePrice, 'f', -1, 64)
}
