package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

// sweeper is the maintenance surface of the rate limiter.
type sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Worker periodically deletes expired rate limit records. Pure storage
// hygiene: limiter correctness does not depend on it.
type Worker struct {
	limiter       sweeper
	sweepInterval time.Duration
	stopCh        chan struct{}
}

// NewWorker creates a new sweeper worker.
func NewWorker(limiter sweeper) *Worker {
	sweepIntervalMinutes := viper.GetInt("ratelimit.sweep_interval_minutes")
	if sweepIntervalMinutes == 0 {
		sweepIntervalMinutes = 30
	}

	return &Worker{
		limiter:       limiter,
		sweepInterval: time.Duration(sweepIntervalMinutes) * time.Minute,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the periodic sweep.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	slog.Info("Rate limit sweeper started", "sweep_interval", w.sweepInterval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Rate limit sweeper shutting down")

			return
		case <-w.stopCh:
			slog.Info("Rate limit sweeper stopped")

			return
		case <-ticker.C:
			removed, err := w.limiter.SweepExpired(ctx)
			if err != nil {
				slog.Error("Failed to sweep expired rate limit records", "error", err)

				continue
			}
			if removed > 0 {
				slog.Info("Swept expired rate limit records", "removed", removed)
			}
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}
