// Package queue defines booking lifecycle events and moves them over
// RabbitMQ.  Each event type has its own durable queue on the default
// exchange.
package queue

import "time"

// Event types double as queue names.
const (
	BookingReserved  = "booking.reserved"
	BookingConfirmed = "booking.confirmed"
	BookingExpired   = "booking.expired"
)

// Queues lists every queue the publisher writes to and the consumer reads.
var Queues = []string{BookingReserved, BookingConfirmed, BookingExpired}

// BookingEvent is published after a booking changes state.  It carries
// enough for downstream consumers to log, notify or refresh seat maps
// without querying the primary database.
type BookingEvent struct {
	Type        string    `json:"type"`
	BookingID   string    `json:"booking_id"`
	ShowID      string    `json:"show_id"`
	UserEmail   string    `json:"user_email"`
	SeatIDs     []string  `json:"seat_ids"`
	SeatNumbers []int     `json:"seat_numbers,omitempty"`
	Status      string    `json:"status"`
	ExpiresAt   time.Time `json:"expires_at"`
	OccurredAt  time.Time `json:"occurred_at"`
}
