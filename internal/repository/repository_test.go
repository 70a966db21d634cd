package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/seat-hold-engine/internal/model"
	"github.com/iliyamo/seat-hold-engine/internal/repository"
	"github.com/iliyamo/seat-hold-engine/internal/testutil"
)

var base = time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

func TestSeatRepoGetByIDsScopedToShow(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	a := testutil.SeedShow(t, db, "AVAILABLE", "PENDING", "BOOKED")
	b := testutil.SeedShow(t, db, "AVAILABLE")
	seats := repository.NewSeatRepo(db)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	got, err := seats.GetByIDsTx(ctx, tx, a.ShowID, append(a.SeatIDs(3, 1), b.Seats[1], "missing"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].SeatNumber)
	assert.Equal(t, model.SeatAvailable, got[0].Status)
	assert.Equal(t, 3, got[1].SeatNumber)
	assert.Equal(t, model.SeatBooked, got[1].Status)
}

func TestSeatRepoTransitionOnlyMovesExpectedStatus(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	f := testutil.SeedShow(t, db, "AVAILABLE", "PENDING", "AVAILABLE")
	seats := repository.NewSeatRepo(db)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	n, err := seats.TransitionTx(ctx, tx, f.SeatIDs(1, 2, 3), model.SeatAvailable, model.SeatPending)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.EqualValues(t, 2, n)
	for _, num := range []int{1, 2, 3} {
		assert.Equal(t, "PENDING", testutil.SeatStatus(t, db, f.Seats[num]))
	}
}

func TestSeatRepoListByShowOrdered(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.SeedShow(t, db, "BOOKED", "AVAILABLE", "PENDING")

	got, err := repository.NewSeatRepo(db).ListByShow(context.Background(), f.ShowID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, s := range got {
		assert.Equal(t, i+1, s.SeatNumber)
	}

	numbers, err := repository.NewSeatRepo(db).SeatNumbers(context.Background(), f.SeatIDs(3, 1))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, numbers)

	empty, err := repository.NewSeatRepo(db).ListByShow(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func newBooking(showID string, seatIDs []string, createdAt time.Time) *model.Booking {
	return &model.Booking{
		ID:        uuid.NewString(),
		ShowID:    showID,
		UserEmail: "ada@example.com",
		SeatIDs:   seatIDs,
		Status:    model.BookingPending,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(model.HoldDuration),
	}
}

func TestBookingRepoRoundTrip(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	f := testutil.SeedShow(t, db, "PENDING", "PENDING")
	repo := repository.NewBookingRepo(db)

	b := newBooking(f.ShowID, f.SeatIDs(2, 1), base.Add(123*time.Millisecond))
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.CreateTx(ctx, tx, b))
	require.NoError(t, tx.Commit())

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.SeatIDs, got.SeatIDs)
	assert.Equal(t, model.BookingPending, got.Status)
	assert.True(t, b.ExpiresAt.Equal(got.ExpiresAt), "expires_at %s != %s", got.ExpiresAt, b.ExpiresAt)
	assert.True(t, b.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
}

func TestBookingRepoExpiryAndConfirmGuards(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	f := testutil.SeedShow(t, db, "PENDING", "PENDING")
	repo := repository.NewBookingRepo(db)

	early := newBooking(f.ShowID, f.SeatIDs(1), base)
	late := newBooking(f.ShowID, f.SeatIDs(2), base.Add(time.Minute))
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.CreateTx(ctx, tx, early))
	require.NoError(t, repo.CreateTx(ctx, tx, late))
	require.NoError(t, tx.Commit())

	// Exactly at the early deadline: early is expired, late is not.
	now := early.ExpiresAt
	expired, err := repo.ListExpiredPending(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, early.ID, expired[0].ID)

	tx, err = db.BeginTx(ctx, nil)
	require.NoError(t, err)
	ok, err := repo.ConfirmTx(ctx, tx, early.ID, now)
	require.NoError(t, err)
	assert.False(t, ok, "confirm must not win past the deadline")

	ok, err = repo.ExpireTx(ctx, tx, late.ID, now)
	require.NoError(t, err)
	assert.False(t, ok, "expire must not fire before the deadline")

	ok, err = repo.ExpireTx(ctx, tx, early.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.ExpireTx(ctx, tx, early.ID, now)
	require.NoError(t, err)
	assert.False(t, ok, "second expire is a no-op")

	ok, err = repo.ConfirmTx(ctx, tx, late.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, tx.Commit())

	assert.Equal(t, "FAILED", testutil.BookingStatus(t, db, early.ID))
	assert.Equal(t, "CONFIRMED", testutil.BookingStatus(t, db, late.ID))
}

func TestShowRepoCreateAndSearch(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repository.NewShowRepo(db)

	later := &model.Show{Name: "Late Night Jazz", StartTime: base.Add(48 * time.Hour), TotalSeats: 3}
	sooner := &model.Show{Name: "Matinee", StartTime: base.Add(24 * time.Hour), TotalSeats: 2}
	past := &model.Show{Name: "Yesterday's Jazz", StartTime: base.Add(-24 * time.Hour), TotalSeats: 1}
	for _, s := range []*model.Show{later, sooner, past} {
		seats, err := repo.CreateWithSeats(ctx, s)
		require.NoError(t, err)
		require.Len(t, seats, s.TotalSeats)
		assert.Equal(t, 1, seats[0].SeatNumber)
	}

	got, err := repo.GetByID(ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, "Late Night Jazz", got.Name)
	assert.True(t, later.StartTime.Equal(got.StartTime))

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrShowNotFound)

	all, total, err := repo.Search(ctx, repository.ShowSearchQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, []string{past.ID, sooner.ID, later.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	jazz, total, err := repo.Search(ctx, repository.ShowSearchQuery{Name: "JAZZ", Upcoming: true, Now: base, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, jazz, 1)
	assert.Equal(t, later.ID, jazz[0].ID)

	page2, _, err := repo.Search(ctx, repository.ShowSearchQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, later.ID, page2[0].ID)

	_, err = repo.CreateWithSeats(ctx, &model.Show{Name: "Empty"})
	assert.Error(t, err)
}

func TestIsLockConflict(t *testing.T) {
	assert.False(t, repository.IsLockConflict(nil))
	assert.False(t, repository.IsLockConflict(assert.AnError))
	assert.False(t, repository.IsLockConflict(&mysql.MySQLError{Number: 1062}))
	assert.True(t, repository.IsLockConflict(&mysql.MySQLError{Number: 1213}))
	assert.True(t, repository.IsLockConflict(fmt.Errorf("reserve: %w", &mysql.MySQLError{Number: 1205})))
}
