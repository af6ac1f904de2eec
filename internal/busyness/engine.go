package busyness

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/messpulse/internal/domain"
)

const (
	// DefaultLiveWindow is the trailing window for the live mean,
	// overridable per deployment via WithLiveWindow.
	DefaultLiveWindow = 5 * time.Minute

	// anonymousVoter is recorded when a submission carries no voter ID.
	anonymousVoter = "anonymous"
)

// Engine converts a stream of timestamped votes into a current crowd
// level. All time reads go through the injected clock so tests can pin
// period selection exactly.
type Engine struct {
	votes      domain.VoteStore
	history    domain.HistoryStore
	clock      clockwork.Clock
	loc        *time.Location
	liveWindow time.Duration
	countCap   int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLiveWindow overrides the trailing live-window duration.
func WithLiveWindow(d time.Duration) Option {
	return func(e *Engine) { e.liveWindow = d }
}

// WithLocation sets the timezone used for period and slot resolution.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// WithHistoryCountCap caps the effective denominator of the historical
// running mean. Zero keeps the mean unbounded.
func WithHistoryCountCap(cap int64) Option {
	return func(e *Engine) { e.countCap = cap }
}

func NewEngine(votes domain.VoteStore, history domain.HistoryStore, clock clockwork.Clock, opts ...Option) *Engine {
	e := &Engine{
		votes:      votes,
		history:    history,
		clock:      clock,
		loc:        time.Local,
		liveWindow: DefaultLiveWindow,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LiveWindow reports the configured trailing window.
func (e *Engine) LiveWindow() time.Duration {
	return e.liveWindow
}

// ActivePeriod resolves the period configuration for the current
// instant.
func (e *Engine) ActivePeriod() domain.PeriodConfig {
	return ResolvePeriod(e.clock.Now().In(e.loc))
}

// RecordVote validates and records a single vote: it resolves the
// active period, derives the vote's weight from the period's weight
// table, appends the vote, and folds the weight into the historical
// aggregate for the current 15-minute slot. Classification is a
// separate step.
func (e *Engine) RecordVote(ctx context.Context, venueID, status, voterID string) (domain.Vote, error) {
	if venueID == "" {
		return domain.Vote{}, domain.ErrMissingVenue
	}
	if status == "" {
		return domain.Vote{}, domain.ErrMissingStatus
	}
	label, err := domain.ParseStatus(status)
	if err != nil {
		return domain.Vote{}, err
	}
	if voterID == "" {
		voterID = anonymousVoter
	}

	now := e.clock.Now().In(e.loc)
	period := ResolvePeriod(now)

	vote := domain.Vote{
		ID:        uuid.New(),
		VenueID:   venueID,
		Status:    label,
		Weight:    period.Weights.For(label),
		VoterID:   voterID,
		Period:    period.Name,
		Timestamp: now,
	}

	if err := e.votes.Append(ctx, vote); err != nil {
		return domain.Vote{}, fmt.Errorf("append vote: %w", err)
	}

	slot := domain.SlotAt(now)
	if _, err := e.history.UpsertSlot(ctx, venueID, slot, vote.Weight, period.Name, e.countCap); err != nil {
		return domain.Vote{}, fmt.Errorf("update slot aggregate: %w", err)
	}

	return vote, nil
}

// Classify blends the live and historical means under the active
// period's alpha and maps the score onto a status label.
//
// Missing data degrades, never fails: an undefined live mean falls back
// to the historical mean, an undefined historical mean to the live
// mean, and when both are absent the period's moderate weight serves as
// the neutral default. Thresholds are exclusive bounds, so a score
// exactly on a threshold classifies as moderate. The reported score is
// rounded to two decimals; the unrounded value is not persisted.
func (e *Engine) Classify(ctx context.Context, venueID string) (domain.Classification, error) {
	if venueID == "" {
		return domain.Classification{}, domain.ErrMissingVenue
	}

	now := e.clock.Now().In(e.loc)
	period := ResolvePeriod(now)

	agg, err := e.history.GetSlot(ctx, venueID, domain.SlotAt(now))
	if err != nil {
		return domain.Classification{}, fmt.Errorf("read slot aggregate: %w", err)
	}

	live, err := e.votes.Window(ctx, venueID, now.Add(-e.liveWindow))
	if err != nil {
		return domain.Classification{}, fmt.Errorf("live window query: %w", err)
	}

	liveMean, histMean := blendInputs(live, agg, period)
	score := period.Alpha*liveMean + (1-period.Alpha)*histMean

	label := domain.StatusModerate
	switch {
	case score < period.Thresholds.Empty:
		label = domain.StatusEmpty
	case score > period.Thresholds.Busy:
		label = domain.StatusBusy
	}

	return domain.Classification{
		VenueID:   venueID,
		Status:    label,
		Score:     math.Round(score*100) / 100,
		Period:    period.Name,
		VoteCount: live.Count,
	}, nil
}

// blendInputs applies the substitution ladder for absent data.
func blendInputs(live domain.WindowStats, agg *domain.SlotAggregate, period domain.PeriodConfig) (liveMean, histMean float64) {
	switch {
	case live.Defined && agg != nil:
		return live.Mean, agg.Avg
	case live.Defined:
		return live.Mean, live.Mean
	case agg != nil:
		return agg.Avg, agg.Avg
	default:
		neutral := period.Weights.Moderate
		return neutral, neutral
	}
}
