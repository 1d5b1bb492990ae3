package sweep

import (
	"context"
	"log/slog"
	"time"
)

// Gate lets at most one caller through per key and ttl.
type Gate interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

const gateKey = "sweep"

type Runner struct {
	sweeper  *Sweeper
	gate     Gate
	interval time.Duration
	throttle time.Duration
	timeout  time.Duration
}

func NewRunner(sweeper *Sweeper, gate Gate, interval, throttle time.Duration) *Runner {
	return &Runner{
		sweeper:  sweeper,
		gate:     gate,
		interval: interval,
		throttle: throttle,
		timeout:  2 * time.Second,
	}
}

// Run sweeps every interval until ctx is done.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("sweep runner started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("sweep runner stopped")
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// SweepIfDue runs a short sweep unless one ran within the throttle window.
// Called before buyer-facing reads so they never show lapsed holds.
func (r *Runner) SweepIfDue(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	r.sweep(ctx)
}

func (r *Runner) sweep(ctx context.Context) {
	ok, err := r.gate.TryAcquire(ctx, gateKey, r.throttle)
	if err != nil {
		// Sweeps are safe to overlap; only the throttling is lost.
		slog.Warn("sweep gate unavailable", "error", err)
		ok = true
	}

	if !ok {
		return
	}

	if _, err := r.sweeper.Sweep(ctx); err != nil {
		slog.Error("sweep failed", "error", err)
	}
}
