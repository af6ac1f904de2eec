package app

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/messpulse/internal/busyness"
	"github.com/pscheid92/messpulse/internal/domain"
)

func appendVoteAt(t *testing.T, store *busyness.MemoryStore, venueID string, ts time.Time) {
	t.Helper()
	err := store.Append(context.Background(), domain.Vote{
		VenueID:   venueID,
		Status:    domain.StatusModerate,
		Weight:    1,
		Period:    "lunch",
		Timestamp: ts,
	})
	require.NoError(t, err)
}

func TestSweep_DeletesOnlyExpiredVotes(t *testing.T) {
	now := lunchtime()
	clock := clockwork.NewFakeClockAt(now)
	store := busyness.NewMemoryStore(clock)
	sweeper := NewSweeper(store, clock, 30*time.Minute, time.Hour)

	appendVoteAt(t, store, "mensa-nord", now.Add(-2*time.Hour))
	appendVoteAt(t, store, "mensa-nord", now.Add(-61*time.Minute))
	appendVoteAt(t, store, "mensa-nord", now.Add(-5*time.Minute))
	appendVoteAt(t, store, "mensa-sued", now.Add(-90*time.Minute))

	sweeper.Sweep(context.Background())

	recent, err := store.Window(context.Background(), "mensa-nord", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, recent.Count, "votes inside the retention age survive")

	other, err := store.Window(context.Background(), "mensa-sued", now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, other.Count, "expired votes are purged across venues")
}

func TestSweep_LeavesSlotAggregatesUntouched(t *testing.T) {
	now := lunchtime()
	clock := clockwork.NewFakeClockAt(now)
	store := busyness.NewMemoryStore(clock)
	sweeper := NewSweeper(store, clock, 30*time.Minute, time.Hour)

	slot := domain.SlotAt(now)
	_, err := store.UpsertSlot(context.Background(), "mensa-nord", slot, 2.5, "lunch", 0)
	require.NoError(t, err)
	appendVoteAt(t, store, "mensa-nord", now.Add(-3*time.Hour))

	sweeper.Sweep(context.Background())

	agg, err := store.GetSlot(context.Background(), "mensa-nord", slot)
	require.NoError(t, err)
	require.NotNil(t, agg)
	assert.Equal(t, 2.5, agg.Avg)
	assert.EqualValues(t, 1, agg.Count)
}

func TestRun_SweepsOnEveryTick(t *testing.T) {
	now := lunchtime()
	clock := clockwork.NewFakeClockAt(now)
	store := busyness.NewMemoryStore(clock)
	sweeper := NewSweeper(store, clock, 30*time.Minute, time.Hour)

	appendVoteAt(t, store, "mensa-nord", now.Add(-2*time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sweeper.Run(ctx)
	}()

	clock.BlockUntil(1)
	clock.Advance(30 * time.Minute)

	require.Eventually(t, func() bool {
		stats, err := store.Window(context.Background(), "mensa-nord", now.Add(-24*time.Hour))
		return err == nil && stats.Count == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
