// Shows are descriptive only.  They are created together with their seats
// at setup time and read by the browse endpoints.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/seat-hold-engine/internal/model"
)

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning multiple repositories.
func (r *ShowRepo) DB() *sql.DB {
	return r.db
}

const showColumns = `id, name, start_time, total_seats, created_at`

// CreateWithSeats inserts s together with seats numbered 1..s.TotalSeats,
// all AVAILABLE, in one transaction.  Missing ids are generated.
func (r *ShowRepo) CreateWithSeats(ctx context.Context, s *model.Show) ([]model.Seat, error) {
	if s.TotalSeats < 1 {
		return nil, fmt.Errorf("show needs at least one seat, got %d", s.TotalSeats)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	seats := make([]model.Seat, 0, s.TotalSeats)
	for n := 1; n <= s.TotalSeats; n++ {
		seats = append(seats, model.Seat{
			ID:         uuid.NewString(),
			ShowID:     s.ID,
			SeatNumber: n,
			Status:     model.SeatAvailable,
		})
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO shows (` + showColumns + `) VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q, s.ID, s.Name, formatTime(s.StartTime), s.TotalSeats, formatTime(s.CreatedAt)); err != nil {
		return nil, err
	}
	if err := NewSeatRepo(r.db).CreateBulkTx(ctx, tx, seats); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return seats, nil
}

// GetByID retrieves a show by its ID.  It returns ErrShowNotFound if
// there is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id string) (*model.Show, error) {
	const q = `SELECT ` + showColumns + ` FROM shows WHERE id = ?`
	var s model.Show
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Name, scanTime(&s.StartTime), &s.TotalSeats, scanTime(&s.CreatedAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &s, nil
}
