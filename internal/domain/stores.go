package domain

import (
	"context"
	"time"
)

// VoteStore holds raw votes and answers live-window queries over them.
// Votes are append-only and eligible for deletion once they exceed the
// retention age.
type VoteStore interface {
	// Append records a vote. The vote is never mutated afterwards.
	Append(ctx context.Context, vote Vote) error

	// Window returns stats over the venue's votes with timestamp
	// strictly greater than notBefore.
	Window(ctx context.Context, venueID string, notBefore time.Time) (WindowStats, error)

	// PurgeOlderThan deletes votes older than cutoff across all venues
	// and reports how many were removed. It must not touch slot
	// aggregates.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// HistoryStore maintains the permanent per-slot running means.
type HistoryStore interface {
	// UpsertSlot folds weight into the (venueID, slot) aggregate with
	// the incremental-mean formula and merge semantics. countCap > 0
	// caps the effective denominator so the mean keeps responding to
	// new data; 0 keeps the mean unbounded.
	UpsertSlot(ctx context.Context, venueID string, slot TimeSlot, weight float64, period string, countCap int64) (SlotAggregate, error)

	// GetSlot reads an aggregate without updating it. A venue/slot with
	// no aggregate yet returns (nil, nil).
	GetSlot(ctx context.Context, venueID string, slot TimeSlot) (*SlotAggregate, error)
}

// StatusStore persists the latest published status per venue.
type StatusStore interface {
	// UpsertStatus overwrites the venue's current status with merge
	// semantics.
	UpsertStatus(ctx context.Context, status VenueStatus) error

	// GetStatus returns the last published status, or ErrStatusNotFound.
	GetStatus(ctx context.Context, venueID string) (VenueStatus, error)
}

// StatusPublisher fans a freshly computed status out to subscribers.
// Delivery is at-most-once; a missed notification self-heals on the
// next vote or poll.
type StatusPublisher interface {
	PublishStatus(ctx context.Context, status VenueStatus) error
}
