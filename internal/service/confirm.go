package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/seat-hold-engine/internal/model"
	"github.com/iliyamo/seat-hold-engine/internal/queue"
	"github.com/iliyamo/seat-hold-engine/internal/repository"
)

// Confirm turns a live PENDING booking into CONFIRMED and its seats into
// BOOKED, atomically.  Errors:
//   - ErrNotFound when the booking does not exist
//   - ErrExpired when the deadline has passed; the booking is left FAILED
//     and its seats AVAILABLE, however often Confirm is retried
//   - *InvalidStateError (ErrInvalidState) for any other non-PENDING booking
//   - ErrConflict when a concurrent request resolved the booking first
//   - ErrInternal on store failure
func (s *BookingService) Confirm(ctx context.Context, bookingID string) (*BookingDetails, error) {
	d, err := s.confirm(ctx, bookingID)
	s.metrics.Confirmations.WithLabelValues(Result(err)).Inc()
	return d, err
}

func (s *BookingService) confirm(ctx context.Context, bookingID string) (*BookingDetails, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return nil, fmt.Errorf("%w: bookingId is required", ErrValidation)
	}

	s.sweepBestEffort(ctx)

	b, now, err := s.loadConfirmable(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.commitConfirmation(ctx, b, now)
}

// loadConfirmable fetches the booking and rejects it unless it is PENDING
// and within its deadline.  A PENDING booking found past its deadline is
// expired on the spot rather than left for the next sweep.
func (s *BookingService) loadConfirmable(ctx context.Context, bookingID string) (*model.Booking, time.Time, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return nil, time.Time{}, fmt.Errorf("%w: booking not found", ErrNotFound)
	}
	if err != nil {
		return nil, time.Time{}, storeErr("load booking", err)
	}

	now := s.clock.Now()
	switch b.Status {
	case model.BookingPending:
	case model.BookingFailed:
		// Only expiry fails a booking, so a retried confirm keeps reporting
		// the same outcome.
		if b.Expired(now) {
			return nil, now, ErrExpired
		}
		return nil, now, &InvalidStateError{Status: b.Status}
	default:
		return nil, now, &InvalidStateError{Status: b.Status}
	}

	if b.Expired(now) {
		if _, err := s.expire(ctx, b, now); err != nil {
			// The sweeper will still release the seats later.
			s.log.Warn("expire on confirm failed", "booking_id", b.ID, "error", err)
		}
		return nil, now, ErrExpired
	}
	return b, now, nil
}

// commitConfirmation flips the booking and its seats in one transaction.
// The booking update is guarded on PENDING and the deadline, so a racing
// confirm or sweep makes it affect no rows.
func (s *BookingService) commitConfirmation(ctx context.Context, b *model.Booking, now time.Time) (*BookingDetails, error) {
	err := s.withTx(ctx, "confirm", func(tx *sql.Tx) error {
		ok, err := s.bookings.ConfirmTx(ctx, tx, b.ID, now)
		if err != nil {
			return storeErr("confirm booking", err)
		}
		if !ok {
			return fmt.Errorf("%w: booking was already resolved by another request", ErrConflict)
		}

		n, err := s.seats.TransitionTx(ctx, tx, b.SeatIDs, model.SeatPending, model.SeatBooked)
		if err != nil {
			return storeErr("book seats", err)
		}
		if int(n) != len(b.SeatIDs) {
			s.log.Error("held seats out of step with booking",
				"booking_id", b.ID, "show_id", b.ShowID, "seat_count", len(b.SeatIDs), "booked", n)
			return fmt.Errorf("%w: %d of %d held seats could be booked", ErrInternal, n, len(b.SeatIDs))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d := &BookingDetails{Booking: *b, SeatNumbers: s.seatNumbers(ctx, b.SeatIDs)}
	d.Status = model.BookingConfirmed
	s.publish(ctx, queue.BookingConfirmed, d)
	return d, nil
}
