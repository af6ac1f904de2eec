package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/messpulse/internal/busyness"
	"github.com/pscheid92/messpulse/internal/domain"
)

// --- Mock publisher ---

type mockPublisher struct {
	mu        sync.Mutex
	published []domain.VenueStatus
	publishFn func(ctx context.Context, status domain.VenueStatus) error
}

func (m *mockPublisher) PublishStatus(ctx context.Context, status domain.VenueStatus) error {
	if m.publishFn != nil {
		return m.publishFn(ctx, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, status)
	return nil
}

func (m *mockPublisher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published)
}

func newTestService(t *testing.T, now time.Time) (*Service, *busyness.MemoryStore, *mockPublisher) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(now)
	store := busyness.NewMemoryStore(clock)
	engine := busyness.NewEngine(store, store, clock, busyness.WithLocation(time.UTC))
	publisher := &mockPublisher{}
	return NewService(engine, store, publisher, clock), store, publisher
}

func lunchtime() time.Time {
	return time.Date(2024, 3, 12, 12, 30, 0, 0, time.UTC)
}

func TestSubmitVote_PersistsAndPublishesStatus(t *testing.T) {
	svc, store, publisher := newTestService(t, lunchtime())
	ctx := context.Background()

	status, err := svc.SubmitVote(ctx, "mensa-nord", "busy", "voter-1")
	require.NoError(t, err)

	assert.Equal(t, "mensa-nord", status.VenueID)
	assert.Equal(t, "lunch", status.Period)
	assert.Equal(t, 1, status.VoteCount)
	assert.Equal(t, lunchtime(), status.LastUpdate)

	stored, err := store.GetStatus(ctx, "mensa-nord")
	require.NoError(t, err)
	assert.Equal(t, status, stored)

	require.Equal(t, 1, publisher.count())
	assert.Equal(t, status, publisher.published[0])
}

func TestSubmitVote_ValidationErrorsDoNotPublish(t *testing.T) {
	svc, _, publisher := newTestService(t, lunchtime())
	ctx := context.Background()

	_, err := svc.SubmitVote(ctx, "", "busy", "")
	assert.ErrorIs(t, err, domain.ErrMissingVenue)

	_, err = svc.SubmitVote(ctx, "mensa-nord", "crowded", "")
	assert.ErrorIs(t, err, domain.ErrUnknownStatus)

	assert.Zero(t, publisher.count())
}

func TestSubmitVote_PublishFailureIsNotFatal(t *testing.T) {
	svc, store, publisher := newTestService(t, lunchtime())
	publisher.publishFn = func(context.Context, domain.VenueStatus) error {
		return fmt.Errorf("redis down")
	}
	ctx := context.Background()

	status, err := svc.SubmitVote(ctx, "mensa-nord", "moderate", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusModerate, status.Status)

	// The vote and the status survive the failed fanout.
	stored, err := store.GetStatus(ctx, "mensa-nord")
	require.NoError(t, err)
	assert.Equal(t, status, stored)
}

// ctxAwareStore fails every write whose context is already cancelled,
// the way the Redis and Postgres stores do.
type ctxAwareStore struct {
	*busyness.MemoryStore
}

func (s *ctxAwareStore) Append(ctx context.Context, vote domain.Vote) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStore.Append(ctx, vote)
}

func (s *ctxAwareStore) UpsertSlot(ctx context.Context, venueID string, slot domain.TimeSlot, weight float64, period string, countCap int64) (domain.SlotAggregate, error) {
	if err := ctx.Err(); err != nil {
		return domain.SlotAggregate{}, err
	}
	return s.MemoryStore.UpsertSlot(ctx, venueID, slot, weight, period, countCap)
}

func (s *ctxAwareStore) Window(ctx context.Context, venueID string, notBefore time.Time) (domain.WindowStats, error) {
	if err := ctx.Err(); err != nil {
		return domain.WindowStats{}, err
	}
	return s.MemoryStore.Window(ctx, venueID, notBefore)
}

func (s *ctxAwareStore) UpsertStatus(ctx context.Context, status domain.VenueStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStore.UpsertStatus(ctx, status)
}

func TestSubmitVote_SurvivesCancelledRequestContext(t *testing.T) {
	clock := clockwork.NewFakeClockAt(lunchtime())
	store := &ctxAwareStore{MemoryStore: busyness.NewMemoryStore(clock)}
	engine := busyness.NewEngine(store, store, clock, busyness.WithLocation(time.UTC))
	svc := NewService(engine, store, &mockPublisher{}, clock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status, err := svc.SubmitVote(ctx, "mensa-nord", "empty", "")
	require.NoError(t, err, "an accepted vote must land even when the caller is gone")
	assert.Equal(t, 1, status.VoteCount)

	live, err := store.Window(context.Background(), "mensa-nord", lunchtime().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, live.Count)

	stored, err := store.GetStatus(context.Background(), "mensa-nord")
	require.NoError(t, err)
	assert.Equal(t, status, stored)
}

func TestGetCurrentStatus_ReturnsStoredStatus(t *testing.T) {
	svc, _, _ := newTestService(t, lunchtime())
	ctx := context.Background()

	submitted, err := svc.SubmitVote(ctx, "mensa-nord", "busy", "")
	require.NoError(t, err)

	got, err := svc.GetCurrentStatus(ctx, "mensa-nord")
	require.NoError(t, err)
	assert.Equal(t, submitted, got)
}

func TestGetCurrentStatus_DefaultsForUnknownVenue(t *testing.T) {
	svc, _, _ := newTestService(t, lunchtime())

	got, err := svc.GetCurrentStatus(context.Background(), "never-seen")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusModerate, got.Status)
	assert.Equal(t, "lunch", got.Period)
	assert.Zero(t, got.VoteCount)
	assert.Equal(t, 1.0, got.Score, "neutral default is the period's moderate weight")
}

func TestGetCurrentStatus_RequiresVenue(t *testing.T) {
	svc, _, _ := newTestService(t, lunchtime())

	_, err := svc.GetCurrentStatus(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrMissingVenue)
}

func TestActivePeriod_FollowsClock(t *testing.T) {
	svc, _, _ := newTestService(t, lunchtime())
	assert.Equal(t, "lunch", svc.ActivePeriod().Name)

	svcNight, _, _ := newTestService(t, time.Date(2024, 3, 12, 3, 0, 0, 0, time.UTC))
	assert.Equal(t, "off-peak", svcNight.ActivePeriod().Name)
}
