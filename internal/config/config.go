package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	RedisURL    string
	LogLevel    string
	LogFormat   string

	// Timezone drives period and slot resolution (IANA name).
	Timezone string

	// LiveWindow is the trailing window for the live mean.
	LiveWindow time.Duration
	// VoteMaxAge is the retention age for raw votes.
	VoteMaxAge time.Duration
	// SweepInterval is how often the retention sweep runs.
	SweepInterval time.Duration
	// HistoryCountCap caps the effective denominator of the historical
	// running mean. 0 keeps the mean unbounded.
	HistoryCountCap int64

	// MaxClientsPerVenue limits WebSocket connections per venue.
	MaxClientsPerVenue int
	// VoteRatePerSecond / VoteRateBurst bound vote submissions per client IP.
	VoteRatePerSecond float64
	VoteRateBurst     int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		Timezone:    getEnv("TIMEZONE", "Local"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	var err error
	if cfg.LiveWindow, err = getSeconds("LIVE_WINDOW_SECONDS", 300); err != nil {
		return nil, err
	}
	if cfg.VoteMaxAge, err = getSeconds("VOTE_MAX_AGE_SECONDS", 3600); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = getSeconds("SWEEP_INTERVAL_SECONDS", 1800); err != nil {
		return nil, err
	}
	if cfg.LiveWindow <= 0 {
		return nil, fmt.Errorf("LIVE_WINDOW_SECONDS must be positive")
	}
	if cfg.VoteMaxAge < cfg.LiveWindow {
		return nil, fmt.Errorf("VOTE_MAX_AGE_SECONDS must not be below LIVE_WINDOW_SECONDS")
	}

	cap, err := getInt("HISTORY_COUNT_CAP", 0)
	if err != nil {
		return nil, err
	}
	if cap < 0 {
		return nil, fmt.Errorf("HISTORY_COUNT_CAP must not be negative")
	}
	cfg.HistoryCountCap = int64(cap)

	if cfg.MaxClientsPerVenue, err = getInt("MAX_CLIENTS_PER_VENUE", 200); err != nil {
		return nil, err
	}

	rate, err := getInt("VOTE_RATE_PER_MINUTE", 30)
	if err != nil {
		return nil, err
	}
	cfg.VoteRatePerSecond = float64(rate) / 60
	if cfg.VoteRateBurst, err = getInt("VOTE_RATE_BURST", 10); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

func getSeconds(key string, defaultSeconds int) (time.Duration, error) {
	value, err := getInt(key, defaultSeconds)
	if err != nil {
		return 0, err
	}
	return time.Duration(value) * time.Second, nil
}
