// Package jobs holds background work that runs alongside the HTTP server.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sweeper releases expired holds and reports how many it released.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// ExpiryJob runs a sweep immediately and then on every tick, bounding how
// long an abandoned hold can keep its seats beyond its deadline.  Ticks
// that arrive while a sweep is still running are dropped.
type ExpiryJob struct {
	sweeper  Sweeper
	interval time.Duration
	log      *slog.Logger

	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewExpiryJob creates a job sweeping every interval.
func NewExpiryJob(sweeper Sweeper, interval time.Duration, log *slog.Logger) *ExpiryJob {
	if log == nil {
		log = slog.Default()
	}
	return &ExpiryJob{
		sweeper:  sweeper,
		interval: interval,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start launches the job.  It returns immediately; the job ends when ctx is
// cancelled or Stop is called.
func (j *ExpiryJob) Start(ctx context.Context) {
	j.log.Info("starting expiry job", "interval", j.interval)

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		j.run(ctx)
		for {
			select {
			case <-ticker.C:
				j.run(ctx)
			case <-ctx.Done():
				j.log.Info("expiry job stopped", "reason", ctx.Err())
				return
			case <-j.done:
				j.log.Info("expiry job stopped")
				return
			}
		}
	}()
}

func (j *ExpiryJob) run(ctx context.Context) {
	released, err := j.sweeper.Sweep(ctx)
	if err != nil {
		j.log.Error("periodic sweep failed", "error", err, "released", released)
		return
	}
	if released > 0 {
		j.log.Debug("periodic sweep finished", "released", released)
	}
}

// Stop ends the job and waits for an in-flight sweep to finish.  It is safe
// to call more than once.
func (j *ExpiryJob) Stop() {
	j.stopOnce.Do(func() { close(j.done) })
	j.wg.Wait()
}
