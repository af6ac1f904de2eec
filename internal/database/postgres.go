package database

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	slog.Info("Database SSL mode", "sslmode", extractSSLMode(databaseURL))

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Database connected", "min_conns", poolCfg.MinConns, "max_conns", poolCfg.MaxConns)
	return pool, nil
}

func extractSSLMode(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "unknown"
	}
	mode := strings.ToLower(u.Query().Get("sslmode"))
	if mode == "" {
		return "prefer (default)"
	}
	return mode
}

func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS slot_aggregates (
			venue_id TEXT NOT NULL,
			slot_hour SMALLINT NOT NULL,
			slot_quarter SMALLINT NOT NULL,
			avg DOUBLE PRECISION NOT NULL DEFAULT 0,
			count BIGINT NOT NULL DEFAULT 0,
			meal_period TEXT NOT NULL DEFAULT '',
			last_update TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (venue_id, slot_hour, slot_quarter)
		)`,
		`CREATE TABLE IF NOT EXISTS venue_status (
			venue_id TEXT PRIMARY KEY,
			current_status TEXT NOT NULL,
			final_score DOUBLE PRECISION NOT NULL,
			vote_count INT NOT NULL,
			meal_period TEXT NOT NULL,
			last_update TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	slog.Info("Database migrations completed")
	return nil
}
