package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/seat-hold-engine/internal/logger"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweeper) Sweep(context.Context) (int, error) {
	s.calls.Add(1)
	return 1, s.err
}

func TestExpiryJobSweepsImmediatelyAndOnTick(t *testing.T) {
	sw := &countingSweeper{}
	job := NewExpiryJob(sw, 10*time.Millisecond, logger.Discard())

	job.Start(context.Background())
	assert.Eventually(t, func() bool { return sw.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	job.Stop()
	after := sw.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, sw.calls.Load(), "no sweeps after Stop")

	assert.NotPanics(t, job.Stop)
}

func TestExpiryJobStopsOnContextCancel(t *testing.T) {
	sw := &countingSweeper{err: errors.New("db down")}
	job := NewExpiryJob(sw, time.Hour, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	job.Start(ctx)
	assert.Eventually(t, func() bool { return sw.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	done := make(chan struct{})
	go func() {
		job.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after context cancel")
	}
}
