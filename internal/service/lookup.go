package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/seat-hold-engine/internal/repository"
)

// GetBooking returns a booking with its seat numbers, for countdown and
// status displays.  It does not sweep: a PENDING booking past its deadline
// is reported as stored.
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*BookingDetails, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return nil, fmt.Errorf("%w: bookingId is required", ErrValidation)
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return nil, fmt.Errorf("%w: booking not found", ErrNotFound)
	}
	if err != nil {
		return nil, storeErr("load booking", err)
	}
	numbers, err := s.seats.SeatNumbers(ctx, b.SeatIDs)
	if err != nil {
		return nil, storeErr("load seat numbers", err)
	}
	return &BookingDetails{Booking: *b, SeatNumbers: numbers}, nil
}

// seatNumbers is best-effort: events and responses can go out without
// numbers if the lookup fails.
func (s *BookingService) seatNumbers(ctx context.Context, ids []string) []int {
	numbers, err := s.seats.SeatNumbers(ctx, ids)
	if err != nil {
		s.log.Warn("load seat numbers failed", "error", err)
		return nil
	}
	return numbers
}
