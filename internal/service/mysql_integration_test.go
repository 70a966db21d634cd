package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/iliyamo/seat-hold-engine/internal/database"
	"github.com/iliyamo/seat-hold-engine/internal/logger"
	dbtest "github.com/iliyamo/seat-hold-engine/internal/testutil"
)

// TestMySQLRaces runs the reserve and confirm races against InnoDB row
// locking, where requests genuinely overlap instead of queueing on a
// single connection.
func TestMySQLRaces(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MySQL container test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mysql:8.0",
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "secret",
				"MYSQL_DATABASE":      "seats",
			},
			WaitingFor: wait.ForListeningPort("3306/tcp").WithStartupTimeout(3 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	defer container.Terminate(ctx)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306")
	require.NoError(t, err)

	dsn := database.DSN("root", "secret", host, port.Port(), "seats")
	version, err := database.Migrate(dsn)
	require.NoError(t, err)
	assert.EqualValues(t, 5, version)

	db, err := database.OpenDSN(dsn)
	require.NoError(t, err)
	defer db.Close()

	svc := NewBookingService(db, WithLogger(logger.Discard()))
	f := dbtest.SeedShow(t, db, "AVAILABLE", "AVAILABLE", "AVAILABLE")

	const racers = 16
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		winID string
		wins  int
	)
	start := make(chan struct{})
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			b, err := svc.Reserve(ctx, ReserveRequest{ShowID: f.ShowID, SeatIDs: f.SeatIDs(1, 2, 3), UserEmail: "racer@example.com"})
			if err != nil {
				assert.ErrorIs(t, err, ErrConflict)
				return
			}
			mu.Lock()
			wins++
			winID = b.ID
			mu.Unlock()
		}()
	}
	close(start)
	wg.Wait()
	require.Equal(t, 1, wins)

	confirmErrs := make([]error, racers)
	start = make(chan struct{})
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, confirmErrs[i] = svc.Confirm(ctx, winID)
		}(i)
	}
	close(start)
	wg.Wait()

	confirmed := 0
	for _, err := range confirmErrs {
		if err == nil {
			confirmed++
		}
	}
	assert.Equal(t, 1, confirmed)
	for _, n := range []int{1, 2, 3} {
		assert.Equal(t, "BOOKED", dbtest.SeatStatus(t, db, f.Seats[n]))
	}
}
