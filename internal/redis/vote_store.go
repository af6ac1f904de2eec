package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/messpulse/internal/domain"
)

const (
	// voteKeyTTL is a safety net well beyond the retention age, so a
	// venue that stops receiving votes does not leak its key even if
	// the sweep never runs.
	voteKeyTTL = 24 * time.Hour

	purgeScanCount = 100
)

// VoteStore persists votes in one sorted set per venue, scored by
// submission time in unix milliseconds.
type VoteStore struct {
	rdb *goredis.Client
}

func NewVoteStore(rdb *goredis.Client) *VoteStore {
	return &VoteStore{rdb: rdb}
}

func voteKey(venueID string) string {
	return "votes:" + venueID
}

// Append records a vote. The member is the serialized vote, so the
// score-range queries below never need a secondary lookup.
func (s *VoteStore) Append(ctx context.Context, vote domain.Vote) error {
	data, err := json.Marshal(vote)
	if err != nil {
		return fmt.Errorf("marshal vote: %w", err)
	}

	key := voteKey(vote.VenueID)
	pipe := s.rdb.TxPipeline()
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(vote.Timestamp.UnixMilli()), Member: data})
	pipe.Expire(ctx, key, voteKeyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append vote pipeline failed: %w", err)
	}
	return nil
}

// Window returns stats over the venue's votes with timestamp strictly
// greater than notBefore.
func (s *VoteStore) Window(ctx context.Context, venueID string, notBefore time.Time) (domain.WindowStats, error) {
	members, err := s.rdb.ZRangeByScore(ctx, voteKey(venueID), &goredis.ZRangeBy{
		Min: "(" + strconv.FormatInt(notBefore.UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return domain.WindowStats{}, fmt.Errorf("live window query failed: %w", err)
	}
	if len(members) == 0 {
		return domain.WindowStats{}, nil
	}

	var sum float64
	var count int
	for _, member := range members {
		var vote domain.Vote
		if err := json.Unmarshal([]byte(member), &vote); err != nil {
			slog.Warn("Skipping corrupt vote entry", "venue_id", venueID, "error", err)
			continue
		}
		sum += vote.Weight
		count++
	}
	if count == 0 {
		return domain.WindowStats{}, nil
	}
	return domain.WindowStats{Mean: sum / float64(count), Count: count, Defined: true}, nil
}

// PurgeOlderThan deletes votes with a timestamp before cutoff across
// all venues. Slot aggregates live in Postgres and are untouched.
// Deletes are idempotent, so concurrent sweeps are safe.
func (s *VoteStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	maxScore := "(" + strconv.FormatInt(cutoff.UnixMilli(), 10)

	var removed int64
	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, voteKey("*"), purgeScanCount).Result()
		if err != nil {
			return removed, fmt.Errorf("scan vote keys failed: %w", err)
		}

		for _, key := range keys {
			n, err := s.rdb.ZRemRangeByScore(ctx, key, "-inf", maxScore).Result()
			if err != nil {
				return removed, fmt.Errorf("purge %s failed: %w", key, err)
			}
			removed += n
		}

		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}
