// Package service is the seat reservation engine.  Reserve places a
// time-bounded hold on a set of seats, Confirm turns a live hold into a
// booking, and Sweep releases holds whose deadline has passed.
//
// Coordination happens entirely in the database: every status change is a
// conditional update on the expected prior status, executed inside a
// transaction, and a short affected-row count means another request won.
// No in-process lock is taken, so several instances may share one store.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/iliyamo/seat-hold-engine/internal/clock"
	"github.com/iliyamo/seat-hold-engine/internal/metrics"
	"github.com/iliyamo/seat-hold-engine/internal/model"
	"github.com/iliyamo/seat-hold-engine/internal/queue"
	"github.com/iliyamo/seat-hold-engine/internal/repository"
)

// EventPublisher receives booking events after the state change has been
// committed.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, queue.BookingEvent) error { return nil }

const (
	defaultSweepBatch = 500
	publishTimeout    = 3 * time.Second
)

// BookingService implements reserve, confirm and sweep over a shared store.
type BookingService struct {
	db       *sql.DB
	seats    *repository.SeatRepo
	bookings *repository.BookingRepo

	clock      clock.Clock
	events     EventPublisher
	metrics    *metrics.Engine
	log        *slog.Logger
	sweepBatch int
}

// Option configures a BookingService.
type Option func(*BookingService)

// WithClock overrides the system clock.
func WithClock(c clock.Clock) Option {
	return func(s *BookingService) { s.clock = c }
}

// WithPublisher sets where booking events go.  Without it events are
// dropped.
func WithPublisher(p EventPublisher) Option {
	return func(s *BookingService) { s.events = p }
}

// WithMetrics sets the counters updated by the service.
func WithMetrics(m *metrics.Engine) Option {
	return func(s *BookingService) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *BookingService) { s.log = l }
}

// WithSweepBatch bounds how many expired bookings one sweep query loads.
func WithSweepBatch(n int) Option {
	return func(s *BookingService) {
		if n > 0 {
			s.sweepBatch = n
		}
	}
}

// NewBookingService builds the engine on db.
func NewBookingService(db *sql.DB, opts ...Option) *BookingService {
	s := &BookingService{
		db:         db,
		seats:      repository.NewSeatRepo(db),
		bookings:   repository.NewBookingRepo(db),
		clock:      clock.NewSystem(),
		events:     noopPublisher{},
		sweepBatch: defaultSweepBatch,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New(nil)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// BookingDetails is a booking together with the numbers of its seats.
type BookingDetails struct {
	model.Booking
	SeatNumbers []int
}

// withTx runs fn in a transaction, committing when fn returns nil.  The
// deferred rollback undoes every conditional update fn made when it fails.
func (s *BookingService) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr(op+": begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.log.Error("transaction rollback failed", "op", op, "error", rbErr)
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storeErr(op+": commit", err)
	}
	committed = true
	return nil
}

// publish sends ev after commit.  Failures are logged only: the state
// change has already happened and consumers can catch up from the store.
func (s *BookingService) publish(ctx context.Context, eventType string, d *BookingDetails) {
	now := s.clock.Now()
	ev := queue.BookingEvent{
		Type:        eventType,
		BookingID:   d.ID,
		ShowID:      d.ShowID,
		UserEmail:   d.UserEmail,
		SeatIDs:     d.SeatIDs,
		SeatNumbers: d.SeatNumbers,
		Status:      string(d.Status),
		ExpiresAt:   d.ExpiresAt,
		OccurredAt:  now,
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.Publish(pctx, ev); err != nil {
		s.log.Warn("publish booking event failed", "type", eventType, "booking_id", d.ID, "error", err)
	}
}
