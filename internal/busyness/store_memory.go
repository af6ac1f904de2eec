package busyness

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/messpulse/internal/domain"
)

// MemoryStore is an in-memory implementation of the vote, history and
// status stores. It backs unit tests and the storage-free development
// mode; the Redis/Postgres implementations are the production path.
type MemoryStore struct {
	clock clockwork.Clock

	mu       sync.Mutex
	votes    map[string][]domain.Vote
	slots    map[slotKey]*domain.SlotAggregate
	statuses map[string]domain.VenueStatus
}

type slotKey struct {
	venueID string
	slot    domain.TimeSlot
}

func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		clock:    clock,
		votes:    make(map[string][]domain.Vote),
		slots:    make(map[slotKey]*domain.SlotAggregate),
		statuses: make(map[string]domain.VenueStatus),
	}
}

func (s *MemoryStore) Append(_ context.Context, vote domain.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes[vote.VenueID] = append(s.votes[vote.VenueID], vote)
	return nil
}

func (s *MemoryStore) Window(_ context.Context, venueID string, notBefore time.Time) (domain.WindowStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum float64
	var count int
	for _, v := range s.votes[venueID] {
		if v.Timestamp.After(notBefore) {
			sum += v.Weight
			count++
		}
	}
	if count == 0 {
		return domain.WindowStats{}, nil
	}
	return domain.WindowStats{Mean: sum / float64(count), Count: count, Defined: true}, nil
}

func (s *MemoryStore) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for venueID, votes := range s.votes {
		kept := votes[:0]
		for _, v := range votes {
			if v.Timestamp.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, v)
		}
		if len(kept) == 0 {
			delete(s.votes, venueID)
			continue
		}
		s.votes[venueID] = kept
	}
	return removed, nil
}

func (s *MemoryStore) UpsertSlot(_ context.Context, venueID string, slot domain.TimeSlot, weight float64, period string, countCap int64) (domain.SlotAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := slotKey{venueID: venueID, slot: slot}
	now := s.clock.Now()

	agg, exists := s.slots[key]
	if !exists {
		agg = &domain.SlotAggregate{VenueID: venueID, Slot: slot}
		s.slots[key] = agg
	}

	effective := agg.Count
	if countCap > 0 && effective > countCap {
		effective = countCap
	}
	agg.Avg = (agg.Avg*float64(effective) + weight) / float64(effective+1)
	agg.Count++
	agg.Period = period
	agg.LastUpdate = now
	return *agg, nil
}

func (s *MemoryStore) GetSlot(_ context.Context, venueID string, slot domain.TimeSlot) (*domain.SlotAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg, exists := s.slots[slotKey{venueID: venueID, slot: slot}]
	if !exists {
		return nil, nil
	}
	cp := *agg
	return &cp, nil
}

func (s *MemoryStore) UpsertStatus(_ context.Context, status domain.VenueStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[status.VenueID] = status
	return nil
}

func (s *MemoryStore) GetStatus(_ context.Context, venueID string) (domain.VenueStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, exists := s.statuses[venueID]
	if !exists {
		return domain.VenueStatus{}, domain.ErrStatusNotFound
	}
	return status, nil
}
