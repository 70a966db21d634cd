package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/seat-hold-engine/internal/model"
)

// ShowSearchQuery defines filters & pagination for listing shows.
type ShowSearchQuery struct {
	Name string
	// Upcoming restricts results to shows starting at or after Now.
	Upcoming bool
	Now      time.Time
	Page     int
	PageSize int
}

// Search lists shows ordered by start time and returns the total number of
// matches ignoring pagination.
func (r *ShowRepo) Search(ctx context.Context, q ShowSearchQuery) ([]model.Show, int64, error) {
	where := []string{}
	args := []any{}

	if q.Upcoming {
		where = append(where, "start_time >= ?")
		args = append(args, formatTime(q.Now))
	}
	if q.Name != "" {
		where = append(where, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Name)+"%")
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shows WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	dataSQL := `SELECT ` + showColumns + `
		FROM shows
		WHERE ` + cond + `
		ORDER BY start_time ASC, id ASC
		LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), q.PageSize, (q.Page-1)*q.PageSize)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Show, 0, q.PageSize)
	for rows.Next() {
		var s model.Show
		if err := rows.Scan(&s.ID, &s.Name, scanTime(&s.StartTime), &s.TotalSeats, scanTime(&s.CreatedAt)); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
