package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pscheid92/messpulse/internal/domain"
)

// HistoryRepo persists the running per-slot means. The incremental
// mean runs inside a single INSERT ... ON CONFLICT statement, so two
// concurrent votes to the same slot both land without a
// read-modify-write lost-update race.
type HistoryRepo struct {
	pool *pgxpool.Pool
}

func NewHistoryRepo(pool *pgxpool.Pool) *HistoryRepo {
	return &HistoryRepo{pool: pool}
}

const upsertSlotSQL = `
	INSERT INTO slot_aggregates (venue_id, slot_hour, slot_quarter, avg, count, meal_period, last_update)
	VALUES ($1, $2, $3, $4, 1, $5, NOW())
	ON CONFLICT (venue_id, slot_hour, slot_quarter) DO UPDATE SET
		avg = (slot_aggregates.avg * LEAST(slot_aggregates.count, CASE WHEN $6::bigint > 0 THEN $6::bigint ELSE slot_aggregates.count END)::double precision + $4)
			/ (LEAST(slot_aggregates.count, CASE WHEN $6::bigint > 0 THEN $6::bigint ELSE slot_aggregates.count END) + 1)::double precision,
		count = slot_aggregates.count + 1,
		meal_period = EXCLUDED.meal_period,
		last_update = NOW()
	RETURNING venue_id, slot_hour, slot_quarter, avg, count, meal_period, last_update`

func (r *HistoryRepo) UpsertSlot(ctx context.Context, venueID string, slot domain.TimeSlot, weight float64, period string, countCap int64) (domain.SlotAggregate, error) {
	var agg domain.SlotAggregate
	err := r.pool.QueryRow(ctx, upsertSlotSQL,
		venueID, slot.Hour, slot.Quarter, weight, period, countCap,
	).Scan(
		&agg.VenueID, &agg.Slot.Hour, &agg.Slot.Quarter,
		&agg.Avg, &agg.Count, &agg.Period, &agg.LastUpdate,
	)
	if err != nil {
		return domain.SlotAggregate{}, fmt.Errorf("failed to upsert slot aggregate: %w", err)
	}
	return agg, nil
}

func (r *HistoryRepo) GetSlot(ctx context.Context, venueID string, slot domain.TimeSlot) (*domain.SlotAggregate, error) {
	var agg domain.SlotAggregate
	err := r.pool.QueryRow(ctx, `
		SELECT venue_id, slot_hour, slot_quarter, avg, count, meal_period, last_update
		FROM slot_aggregates
		WHERE venue_id = $1 AND slot_hour = $2 AND slot_quarter = $3
	`, venueID, slot.Hour, slot.Quarter).Scan(
		&agg.VenueID, &agg.Slot.Hour, &agg.Slot.Quarter,
		&agg.Avg, &agg.Count, &agg.Period, &agg.LastUpdate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot aggregate: %w", err)
	}
	return &agg, nil
}
