package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/seat-hold-engine/internal/model"
)

// BookingRepo provides data access to the bookings table.  All deadline
// comparisons take "now" from the caller so the application clock, not the
// database clock, decides expiry.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, show_id, user_email, seat_ids, status, expires_at, created_at`

// CreateTx inserts b within tx.  The seat id list is stored as a JSON array
// in request order.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	seatIDs, err := json.Marshal(b.SeatIDs)
	if err != nil {
		return fmt.Errorf("encode seat ids: %w", err)
	}
	const q = `INSERT INTO bookings (` + bookingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, q,
		b.ID, b.ShowID, b.UserEmail, string(seatIDs), string(b.Status),
		formatTime(b.ExpiresAt), formatTime(b.CreatedAt),
	)
	return err
}

// GetByID retrieves a booking by its ID.  It returns ErrBookingNotFound if
// there is no matching row.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// ListExpiredPending returns up to limit PENDING bookings whose deadline is
// at or before now, oldest deadline first.
func (r *BookingRepo) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings
	           WHERE status = ? AND expires_at <= ?
	           ORDER BY expires_at
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, string(model.BookingPending), formatTime(now), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ExpireTx marks a PENDING booking FAILED provided its deadline is at or
// before now.  It reports whether this call made the transition; false
// means another caller already resolved the booking.
func (r *BookingRepo) ExpireTx(ctx context.Context, tx *sql.Tx, id string, now time.Time) (bool, error) {
	const q = `UPDATE bookings SET status = ? WHERE id = ? AND status = ? AND expires_at <= ?`
	return affectedOne(tx.ExecContext(ctx, q,
		string(model.BookingFailed), id, string(model.BookingPending), formatTime(now)))
}

// ConfirmTx marks a PENDING booking CONFIRMED provided its deadline is still
// in the future at now.  It reports whether this call made the transition.
func (r *BookingRepo) ConfirmTx(ctx context.Context, tx *sql.Tx, id string, now time.Time) (bool, error) {
	const q = `UPDATE bookings SET status = ? WHERE id = ? AND status = ? AND expires_at > ?`
	return affectedOne(tx.ExecContext(ctx, q,
		string(model.BookingConfirmed), id, string(model.BookingPending), formatTime(now)))
}

func affectedOne(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*model.Booking, error) {
	var (
		b       model.Booking
		seatIDs string
		status  string
	)
	if err := row.Scan(&b.ID, &b.ShowID, &b.UserEmail, &seatIDs, &status,
		scanTime(&b.ExpiresAt), scanTime(&b.CreatedAt)); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(seatIDs), &b.SeatIDs); err != nil {
		return nil, fmt.Errorf("decode seat ids of booking %s: %w", b.ID, err)
	}
	b.Status = model.BookingStatus(status)
	return &b, nil
}
