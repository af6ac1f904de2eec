package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/messpulse/internal/domain"
	"github.com/pscheid92/messpulse/internal/metrics"
)

const sweepTimeout = 30 * time.Second

// Sweeper periodically deletes votes older than the retention age. Slot
// aggregates are permanent and never touched by the sweep.
type Sweeper struct {
	votes    domain.VoteStore
	clock    clockwork.Clock
	interval time.Duration
	maxAge   time.Duration
}

func NewSweeper(votes domain.VoteStore, clock clockwork.Clock, interval, maxAge time.Duration) *Sweeper {
	return &Sweeper{
		votes:    votes,
		clock:    clock,
		interval: interval,
		maxAge:   maxAge,
	}
}

// Run starts the periodic sweep loop. It blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	slog.Info("retention sweeper started",
		slog.Duration("interval", s.interval),
		slog.Duration("max_age", s.maxAge))

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single purge pass. Failures are logged and retried on the
// next tick; deletion is idempotent, so a partially failed pass leaves
// nothing to repair.
func (s *Sweeper) Sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	cutoff := s.clock.Now().Add(-s.maxAge)
	deleted, err := s.votes.PurgeOlderThan(sweepCtx, cutoff)
	if err != nil {
		metrics.SweepRunsTotal.WithLabelValues("error").Inc()
		slog.Error("retention sweep failed", slog.Any("error", err))
		return
	}

	metrics.SweepRunsTotal.WithLabelValues("ok").Inc()
	metrics.SweepDeletedTotal.Add(float64(deleted))
	if deleted > 0 {
		slog.Info("retention sweep completed", slog.Int64("deleted_votes", deleted))
	} else {
		slog.Debug("retention sweep completed, nothing to delete")
	}
}
