// Package testutil opens throwaway databases carrying the production schema.
package testutil

import (
	"database/sql"
	"io/fs"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/iliyamo/seat-hold-engine/internal/database/migrations"
)

// NewDB returns an in-memory SQLite database with every up migration
// applied.  The pool holds a single connection, so concurrent transactions
// run one after another; code under test must not use the pool while it
// holds a transaction.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`PRAGMA foreign_keys = ON`)
	require.NoError(t, err)

	names, err := fs.Glob(migrations.FS, "*.up.sql")
	require.NoError(t, err)
	sort.Strings(names)
	for _, name := range names {
		body, err := migrations.FS.ReadFile(name)
		require.NoError(t, err)
		_, err = db.Exec(strings.TrimSpace(string(body)))
		require.NoErrorf(t, err, "apply %s", name)
	}
	return db
}

// Fixture is a show with its seats, indexed by seat number.
type Fixture struct {
	ShowID string
	Seats  map[int]string
}

// SeatIDs returns the ids of the given seat numbers.
func (f Fixture) SeatIDs(numbers ...int) []string {
	out := make([]string, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, f.Seats[n])
	}
	return out
}

// SeedShow inserts a show with one seat per status, numbered from 1.
func SeedShow(t testing.TB, db *sql.DB, statuses ...string) Fixture {
	t.Helper()

	f := Fixture{ShowID: uuid.NewString(), Seats: map[int]string{}}
	now := time.Now().UTC().Format("2006-01-02 15:04:05.000")
	_, err := db.Exec(`INSERT INTO shows (id, name, start_time, total_seats, created_at) VALUES (?, ?, ?, ?, ?)`,
		f.ShowID, "Fixture show", now, len(statuses), now)
	require.NoError(t, err)

	for i, status := range statuses {
		id := uuid.NewString()
		_, err := db.Exec(`INSERT INTO seats (id, show_id, seat_number, status) VALUES (?, ?, ?, ?)`,
			id, f.ShowID, i+1, status)
		require.NoError(t, err)
		f.Seats[i+1] = id
	}
	return f
}

// SeatStatus reads the current status of a seat.
func SeatStatus(t testing.TB, db *sql.DB, seatID string) string {
	t.Helper()
	var status string
	require.NoError(t, db.QueryRow(`SELECT status FROM seats WHERE id = ?`, seatID).Scan(&status))
	return status
}

// BookingStatus reads the current status of a booking.
func BookingStatus(t testing.TB, db *sql.DB, bookingID string) string {
	t.Helper()
	var status string
	require.NoError(t, db.QueryRow(`SELECT status FROM bookings WHERE id = ?`, bookingID).Scan(&status))
	return status
}
