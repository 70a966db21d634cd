package model

import "time"

// HoldDuration is how long a PENDING booking keeps its seats before it is
// considered expired.
const HoldDuration = 2 * time.Minute

// BookingStatus is the lifecycle state of a booking.  PENDING is the only
// non-terminal state.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingFailed    BookingStatus = "FAILED"
)

// Booking is one reservation attempt over a fixed set of seats.  Only Status
// changes after creation.
//
// Fields:
//   - ID: primary key identifier (UUID).
//   - ShowID: show the seats belong to.
//   - UserEmail: opaque customer contact, validated by the caller.
//   - SeatIDs: the requested seats, in request order.
//   - Status: PENDING, CONFIRMED or FAILED.
//   - ExpiresAt: CreatedAt + HoldDuration.
//   - CreatedAt: creation timestamp.
type Booking struct {
	ID        string        `json:"id"`         // bookings.id
	ShowID    string        `json:"show_id"`    // bookings.show_id
	UserEmail string        `json:"user_email"` // bookings.user_email
	SeatIDs   []string      `json:"seat_ids"`   // bookings.seat_ids (JSON array)
	Status    BookingStatus `json:"status"`     // bookings.status
	ExpiresAt time.Time     `json:"expires_at"` // bookings.expires_at
	CreatedAt time.Time     `json:"created_at"` // bookings.created_at
}

// Expired reports whether the hold deadline has passed at now.  A booking
// whose deadline equals now is already expired.
func (b *Booking) Expired(now time.Time) bool {
	return !now.Before(b.ExpiresAt)
}
