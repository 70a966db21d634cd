package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/seat-hold-engine/internal/model"
	"github.com/iliyamo/seat-hold-engine/internal/queue"
)

// ReserveRequest asks for a hold on SeatIDs of ShowID.  UserEmail is an
// opaque contact already validated by the caller.
type ReserveRequest struct {
	ShowID    string
	SeatIDs   []string
	UserEmail string
}

// Reserve holds every requested seat for model.HoldDuration or none of them.
// Duplicate seat ids are collapsed.  Errors:
//   - ErrValidation when the request is incomplete
//   - ErrNotFound when a seat does not exist or belongs to another show
//   - *UnavailableSeatsError (ErrConflict) when a seat is not AVAILABLE
//   - ErrConflict when a concurrent request took a seat first
//   - ErrInternal on store failure
func (s *BookingService) Reserve(ctx context.Context, req ReserveRequest) (*BookingDetails, error) {
	d, err := s.reserve(ctx, req)
	s.metrics.Reservations.WithLabelValues(Result(err)).Inc()
	return d, err
}

func (s *BookingService) reserve(ctx context.Context, req ReserveRequest) (*BookingDetails, error) {
	showID := strings.TrimSpace(req.ShowID)
	email := strings.TrimSpace(req.UserEmail)
	ids, err := uniqueSeatIDs(req.SeatIDs)
	if err != nil {
		return nil, err
	}
	if showID == "" || email == "" {
		return nil, fmt.Errorf("%w: showId and userEmail are required", ErrValidation)
	}

	s.sweepBestEffort(ctx)

	now := s.clock.Now()
	b := model.Booking{
		ID:        uuid.NewString(),
		ShowID:    showID,
		UserEmail: email,
		SeatIDs:   ids,
		Status:    model.BookingPending,
		CreatedAt: now,
		ExpiresAt: now.Add(model.HoldDuration),
	}
	var numbers []int

	err = s.withTx(ctx, "reserve", func(tx *sql.Tx) error {
		seats, err := s.seats.GetByIDsTx(ctx, tx, showID, ids)
		if err != nil {
			return storeErr("load seats", err)
		}
		if len(seats) != len(ids) {
			return fmt.Errorf("%w: some seats were not found", ErrNotFound)
		}

		var unavailable []int
		numbers = make([]int, 0, len(seats))
		for _, seat := range seats {
			numbers = append(numbers, seat.SeatNumber)
			if seat.Status != model.SeatAvailable {
				unavailable = append(unavailable, seat.SeatNumber)
			}
		}
		if len(unavailable) > 0 {
			return &UnavailableSeatsError{SeatNumbers: unavailable}
		}

		// The read above may be stale; the guarded update is what decides.
		n, err := s.seats.TransitionTx(ctx, tx, ids, model.SeatAvailable, model.SeatPending)
		if err != nil {
			return storeErr("hold seats", err)
		}
		if int(n) != len(ids) {
			return fmt.Errorf("%w: some seats were just taken by another user", ErrConflict)
		}

		if err := s.bookings.CreateTx(ctx, tx, &b); err != nil {
			return storeErr("create booking", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d := &BookingDetails{Booking: b, SeatNumbers: numbers}
	s.publish(ctx, queue.BookingReserved, d)
	return d, nil
}

// uniqueSeatIDs trims and de-duplicates ids, keeping first-seen order.
func uniqueSeatIDs(ids []string) ([]string, error) {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("%w: seat ids must not be empty", ErrValidation)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: at least one seat is required", ErrValidation)
	}
	return out, nil
}
