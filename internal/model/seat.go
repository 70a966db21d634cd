package model

// SeatStatus is the concurrency-control field of a seat.  Every change to
// it is a conditional update keyed on the current value.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatPending   SeatStatus = "PENDING"
	SeatBooked    SeatStatus = "BOOKED"
)

// Seat is a numbered seat of a single show.  Seats are created once when the
// show is set up and are never deleted; they cycle between AVAILABLE,
// PENDING and BOOKED.
//
// Fields:
//   - ID: primary key identifier (UUID).
//   - ShowID: show to which this seat belongs.
//   - SeatNumber: numeric label displayed to customers.
//   - Status: AVAILABLE, PENDING or BOOKED.
type Seat struct {
	ID         string     `json:"id"`          // seats.id
	ShowID     string     `json:"show_id"`     // seats.show_id
	SeatNumber int        `json:"seat_number"` // seats.seat_number
	Status     SeatStatus `json:"status"`      // seats.status
}
