package model

import "time"

// Show is a venue event.  It is descriptive only: the reservation engine
// never mutates a show after it has been created.
//
// Fields:
//   - ID: primary key identifier (UUID).
//   - Name: display name.
//   - StartTime: when the show begins (UTC).
//   - TotalSeats: number of seats created for the show.
//   - CreatedAt: creation timestamp.
type Show struct {
	ID         string    `json:"id"`          // shows.id
	Name       string    `json:"name"`        // shows.name
	StartTime  time.Time `json:"start_time"`  // shows.start_time
	TotalSeats int       `json:"total_seats"` // shows.total_seats
	CreatedAt  time.Time `json:"created_at"`  // shows.created_at
}
