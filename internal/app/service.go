package app

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/pscheid92/messpulse/internal/busyness"
	"github.com/pscheid92/messpulse/internal/domain"
	"github.com/pscheid92/messpulse/internal/logging"
	"github.com/pscheid92/messpulse/internal/metrics"
)

// Service is the application layer — the only component that references
// multiple domain components. It orchestrates all use cases.
type Service struct {
	engine    *busyness.Engine
	statuses  domain.StatusStore
	publisher domain.StatusPublisher
	clock     clockwork.Clock

	statusGroup singleflight.Group
}

// NewService creates the application layer service.
// publisher may be nil when cross-instance fanout is not configured.
func NewService(engine *busyness.Engine, statuses domain.StatusStore, publisher domain.StatusPublisher, clock clockwork.Clock) *Service {
	return &Service{
		engine:    engine,
		statuses:  statuses,
		publisher: publisher,
		clock:     clock,
	}
}

// SubmitVote records a vote, recomputes the venue's classification, persists
// the refreshed status and publishes it for fanout. The persisted status and
// the publication are best-effort: the vote itself is already durable, so
// failures there are logged and the caller still receives the computed
// status.
func (s *Service) SubmitVote(ctx context.Context, venueID, status, voterID string) (domain.VenueStatus, error) {
	// Detached before ingest: once a vote is accepted, its storage
	// writes complete even when the caller disconnects mid-request.
	detached := context.WithoutCancel(ctx)

	vote, err := s.engine.RecordVote(detached, venueID, status, voterID)
	if err != nil {
		if isValidationError(err) {
			metrics.VotesRejectedTotal.Inc()
		}
		return domain.VenueStatus{}, err
	}
	metrics.VotesTotal.WithLabelValues(string(vote.Status), vote.Period).Inc()

	classification, err := s.engine.Classify(detached, venueID)
	if err != nil {
		return domain.VenueStatus{}, err
	}
	metrics.ClassificationsTotal.WithLabelValues(string(classification.Status), classification.Period).Inc()
	metrics.BusynessScore.WithLabelValues(classification.Period).Observe(classification.Score)
	logging.WithPeriod(classification.Period).Debug("venue classified",
		"venue_id", venueID,
		"status", classification.Status,
		"score", classification.Score)

	venueStatus := domain.VenueStatus{
		VenueID:    venueID,
		Status:     classification.Status,
		Score:      classification.Score,
		VoteCount:  classification.VoteCount,
		Period:     classification.Period,
		LastUpdate: s.clock.Now(),
	}

	if err := s.statuses.UpsertStatus(detached, venueStatus); err != nil {
		logging.WithVenue(venueID).Error("failed to persist venue status", "error", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishStatus(detached, venueStatus); err != nil {
			metrics.PublishErrors.Inc()
			logging.WithError(err).Error("failed to publish venue status", "venue_id", venueID)
		}
	}

	return venueStatus, nil
}

// GetCurrentStatus returns the latest stored status for a venue. Venues
// without any recorded status yet get a neutral default for the active
// period. Concurrent reads for the same venue are collapsed.
func (s *Service) GetCurrentStatus(ctx context.Context, venueID string) (domain.VenueStatus, error) {
	if venueID == "" {
		return domain.VenueStatus{}, domain.ErrMissingVenue
	}

	v, err, _ := s.statusGroup.Do(venueID, func() (any, error) {
		status, err := s.statuses.GetStatus(ctx, venueID)
		if errors.Is(err, domain.ErrStatusNotFound) {
			period := s.engine.ActivePeriod()
			return domain.VenueStatus{
				VenueID:    venueID,
				Status:     domain.StatusModerate,
				Score:      period.Weights.Moderate,
				VoteCount:  0,
				Period:     period.Name,
				LastUpdate: s.clock.Now(),
			}, nil
		}
		if err != nil {
			return domain.VenueStatus{}, err
		}
		return status, nil
	})
	if err != nil {
		return domain.VenueStatus{}, err
	}
	return v.(domain.VenueStatus), nil
}

// ActivePeriod reports the period configuration in effect right now.
func (s *Service) ActivePeriod() domain.PeriodConfig {
	return s.engine.ActivePeriod()
}

func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrMissingVenue) ||
		errors.Is(err, domain.ErrMissingStatus) ||
		errors.Is(err, domain.ErrUnknownStatus)
}
