package repository // repository defines data access for seats

import (
	"context"
	"database/sql"

	"github.com/iliyamo/seat-hold-engine/internal/model"
)

// SeatRepo provides methods to work with seats in the database.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// CreateBulkTx inserts seats in a single statement within tx.
func (r *SeatRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (id, show_id, seat_number, status) VALUES `
	args := make([]any, 0, len(seats)*4)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, s.ID, s.ShowID, s.SeatNumber, string(s.Status))
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ListByShow returns every seat of a show ordered by seat number.  An
// unknown show yields an empty slice.
func (r *SeatRepo) ListByShow(ctx context.Context, showID string) ([]model.Seat, error) {
	const q = `SELECT id, show_id, seat_number, status
	           FROM seats
	           WHERE show_id = ?
	           ORDER BY seat_number`
	rows, err := r.db.QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	return scanSeats(rows)
}

// GetByIDsTx loads the seats with the given ids that belong to showID,
// ordered by seat number.  Ids from another show, or unknown ids, are
// silently absent from the result; callers compare lengths.
func (r *SeatRepo) GetByIDsTx(ctx context.Context, tx *sql.Tx, showID string, ids []string) ([]model.Seat, error) {
	if len(ids) == 0 {
		return []model.Seat{}, nil
	}
	q := `SELECT id, show_id, seat_number, status
	      FROM seats
	      WHERE show_id = ? AND id IN (` + placeholders(len(ids)) + `)
	      ORDER BY seat_number`
	args := make([]any, 0, len(ids)+1)
	args = append(args, showID)
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanSeats(rows)
}

// TransitionTx moves the given seats from one status to another.  Only
// seats currently in from are touched; the number of seats actually moved
// is returned so callers can detect a lost race.
func (r *SeatRepo) TransitionTx(ctx context.Context, tx *sql.Tx, ids []string, from, to model.SeatStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := `UPDATE seats SET status = ? WHERE status = ? AND id IN (` + placeholders(len(ids)) + `)`
	args := make([]any, 0, len(ids)+2)
	args = append(args, string(to), string(from))
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SeatNumbers maps seat ids to their seat numbers, ordered by number.
func (r *SeatRepo) SeatNumbers(ctx context.Context, ids []string) ([]int, error) {
	if len(ids) == 0 {
		return []int{}, nil
	}
	q := `SELECT seat_number FROM seats WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY seat_number`
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]int, 0, len(ids))
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanSeats(rows *sql.Rows) ([]model.Seat, error) {
	defer rows.Close()
	out := []model.Seat{}
	for rows.Next() {
		var s model.Seat
		var status string
		if err := rows.Scan(&s.ID, &s.ShowID, &s.SeatNumber, &status); err != nil {
			return nil, err
		}
		s.Status = model.SeatStatus(status)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
