package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/seat-hold-engine/internal/model"
	"github.com/iliyamo/seat-hold-engine/internal/queue"
)

// Sweep marks every PENDING booking whose deadline has passed as FAILED and
// returns its seats to AVAILABLE.  It is safe to run concurrently with
// itself and with Reserve and Confirm: a booking is released only by the
// call whose conditional update flips it, so seats are never released
// twice.  It returns the number of bookings it released and the first
// error met; remaining bookings are still attempted after an error.
func (s *BookingService) Sweep(ctx context.Context) (int, error) {
	now := s.clock.Now()
	released := 0
	var firstErr error

	for {
		expired, err := s.bookings.ListExpiredPending(ctx, now, s.sweepBatch)
		if err != nil {
			if firstErr == nil {
				firstErr = storeErr("list expired bookings", err)
			}
			break
		}

		progressed := 0
		for i := range expired {
			ok, err := s.expire(ctx, &expired[i], now)
			if err != nil {
				s.log.Warn("expire booking failed", "booking_id", expired[i].ID, "error", err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			if ok {
				progressed++
			}
		}
		released += progressed

		// A full batch may hide more expired bookings; stop once a batch is
		// short or nothing could be released from it.
		if len(expired) < s.sweepBatch || progressed == 0 {
			break
		}
	}

	if released > 0 {
		s.metrics.Swept.Add(float64(released))
		s.log.Info("released expired bookings", "released", released)
	}
	if firstErr != nil {
		s.metrics.SweepErrors.Inc()
	}
	return released, firstErr
}

// sweepBestEffort runs Sweep and only logs a failure.
func (s *BookingService) sweepBestEffort(ctx context.Context) {
	if _, err := s.Sweep(ctx); err != nil {
		s.log.Warn("sweep before request failed", "error", err)
	}
}

// expire fails b and releases its seats in one transaction, provided b is
// still PENDING with a deadline at or before now.  It reports whether this
// call performed the transition.
func (s *BookingService) expire(ctx context.Context, b *model.Booking, now time.Time) (bool, error) {
	flipped := false
	err := s.withTx(ctx, "expire booking", func(tx *sql.Tx) error {
		ok, err := s.bookings.ExpireTx(ctx, tx, b.ID, now)
		if err != nil {
			return storeErr("expire booking", err)
		}
		if !ok {
			return nil
		}
		if _, err := s.seats.TransitionTx(ctx, tx, b.SeatIDs, model.SeatPending, model.SeatAvailable); err != nil {
			return storeErr("release seats", err)
		}
		flipped = true
		return nil
	})
	if err != nil || !flipped {
		return false, err
	}

	d := &BookingDetails{Booking: *b, SeatNumbers: s.seatNumbers(ctx, b.SeatIDs)}
	d.Status = model.BookingFailed
	s.publish(ctx, queue.BookingExpired, d)
	return true, nil
}
