package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pscheid92/messpulse/internal/domain"
)

// StatusRepo holds the latest published classification per venue.
// Overwritten on every computation; no history retained.
type StatusRepo struct {
	pool *pgxpool.Pool
}

func NewStatusRepo(pool *pgxpool.Pool) *StatusRepo {
	return &StatusRepo{pool: pool}
}

func (r *StatusRepo) UpsertStatus(ctx context.Context, status domain.VenueStatus) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO venue_status (venue_id, current_status, final_score, vote_count, meal_period, last_update)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (venue_id) DO UPDATE SET
			current_status = EXCLUDED.current_status,
			final_score = EXCLUDED.final_score,
			vote_count = EXCLUDED.vote_count,
			meal_period = EXCLUDED.meal_period,
			last_update = EXCLUDED.last_update
	`, status.VenueID, status.Status, status.Score, status.VoteCount, status.Period, status.LastUpdate)
	if err != nil {
		return fmt.Errorf("failed to upsert venue status: %w", err)
	}
	return nil
}

func (r *StatusRepo) GetStatus(ctx context.Context, venueID string) (domain.VenueStatus, error) {
	var status domain.VenueStatus
	err := r.pool.QueryRow(ctx, `
		SELECT venue_id, current_status, final_score, vote_count, meal_period, last_update
		FROM venue_status
		WHERE venue_id = $1
	`, venueID).Scan(
		&status.VenueID, &status.Status, &status.Score,
		&status.VoteCount, &status.Period, &status.LastUpdate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.VenueStatus{}, domain.ErrStatusNotFound
	}
	if err != nil {
		return domain.VenueStatus{}, fmt.Errorf("failed to read venue status: %w", err)
	}
	return status, nil
}
