package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the discrete crowd level surfaced to users.
type Status string

const (
	StatusEmpty    Status = "empty"
	StatusModerate Status = "moderate"
	StatusBusy     Status = "busy"
)

// ParseStatus validates a raw status label from the boundary.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusEmpty, StatusModerate, StatusBusy:
		return Status(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
}

// TimeSlot is a date-independent 15-minute bucket: 96 slots per day.
// Slots accumulate across calendar days.
type TimeSlot struct {
	Hour    int
	Quarter int
}

// SlotAt returns the slot containing t.
func SlotAt(t time.Time) TimeSlot {
	return TimeSlot{Hour: t.Hour(), Quarter: t.Minute() / 15}
}

// String renders the slot in the "hour_quarter" document-key form.
func (s TimeSlot) String() string {
	return fmt.Sprintf("%d_%d", s.Hour, s.Quarter)
}

// Vote is a single recorded busyness report. Immutable once recorded;
// its weight is fixed at submission time and never recomputed, even if
// period configurations change later.
type Vote struct {
	ID        uuid.UUID `json:"id"`
	VenueID   string    `json:"venueId"`
	Status    Status    `json:"status"`
	Weight    float64   `json:"weight"`
	VoterID   string    `json:"voterId"`
	Period    string    `json:"period"`
	Timestamp time.Time `json:"timestamp"`
}

// WindowStats is the live-window aggregate over recent votes.
// Defined is false when the window contained no votes, in which case
// Mean carries no information and the caller must fall back.
type WindowStats struct {
	Mean    float64
	Count   int
	Defined bool
}

// SlotAggregate is the running historical mean for a (venue, slot) key.
// Count only ever increases; the retention sweep never rolls it back.
type SlotAggregate struct {
	VenueID    string
	Slot       TimeSlot
	Avg        float64
	Count      int64
	Period     string
	LastUpdate time.Time
}

// Classification is the outcome of one blending/classification pass.
type Classification struct {
	VenueID   string
	Status    Status
	Score     float64
	Period    string
	VoteCount int
}

// VenueStatus is the latest published classification for a venue.
// Overwritten on every computation; no history is retained.
type VenueStatus struct {
	VenueID    string    `json:"venueId"`
	Status     Status    `json:"currentStatus"`
	Score      float64   `json:"finalScore"`
	VoteCount  int       `json:"voteCount"`
	Period     string    `json:"mealPeriod"`
	LastUpdate time.Time `json:"lastUpdate"`
}
