package server

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/messpulse/internal/domain"
	apperrors "github.com/pscheid92/messpulse/internal/errors"
)

type submitVoteRequest struct {
	VenueID string `json:"venueId"`
	Status  string `json:"status"`
	VoterID string `json:"voterId"`
}

type submitVoteResponse struct {
	Status     string  `json:"status"`
	Score      float64 `json:"score"`
	MealPeriod string  `json:"mealPeriod"`
	VoteCount  int     `json:"voteCount"`
}

func (s *Server) handleSubmitVote(c echo.Context) error {
	var req submitVoteRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	status, err := s.service.SubmitVote(c.Request().Context(), req.VenueID, req.Status, req.VoterID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingVenue):
			return apperrors.ValidationError("venueId is required")
		case errors.Is(err, domain.ErrMissingStatus):
			return apperrors.ValidationError("status is required")
		case errors.Is(err, domain.ErrUnknownStatus):
			return apperrors.ValidationError("status must be one of empty, moderate, busy").
				WithField("status", req.Status)
		default:
			return apperrors.UnavailableError("failed to record vote", err).
				WithField("venue_id", req.VenueID)
		}
	}

	if err := c.JSON(200, submitVoteResponse{
		Status:     string(status.Status),
		Score:      status.Score,
		MealPeriod: status.Period,
		VoteCount:  status.VoteCount,
	}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleGetBusyness(c echo.Context) error {
	venueID := c.Param("venueId")

	status, err := s.service.GetCurrentStatus(c.Request().Context(), venueID)
	if err != nil {
		if errors.Is(err, domain.ErrMissingVenue) {
			return apperrors.ValidationError("venueId is required")
		}
		return apperrors.UnavailableError("failed to load venue status", err).
			WithField("venue_id", venueID)
	}

	if err := c.JSON(200, status); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

type periodResponse struct {
	Name       string         `json:"name"`
	StartsAt   string         `json:"startsAt,omitempty"`
	EndsAt     string         `json:"endsAt,omitempty"`
	Weights    domain.Weights `json:"weights"`
	Alpha      float64        `json:"alpha"`
	EmptyBound float64        `json:"emptyThreshold"`
	BusyBound  float64        `json:"busyThreshold"`
}

func (s *Server) handleGetPeriod(c echo.Context) error {
	period := s.service.ActivePeriod()

	resp := periodResponse{
		Name:       period.Name,
		Weights:    period.Weights,
		Alpha:      period.Alpha,
		EmptyBound: period.Thresholds.Empty,
		BusyBound:  period.Thresholds.Busy,
	}
	// The off-peak default carries no wall-clock window.
	if period.End > 0 {
		resp.StartsAt = minutesToClock(period.Start)
		resp.EndsAt = minutesToClock(period.End)
	}

	if err := c.JSON(200, resp); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func minutesToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
