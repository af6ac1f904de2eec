package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	voteKeyPattern = "votes:*"
	scanCount      = 100
)

// One-shot retention sweep. The server runs the same purge on a timer;
// this tool exists for manual runs and for deployments that schedule
// retention externally.
func main() {
	var (
		redisURL = flag.String("redis", os.Getenv("REDIS_URL"), "Redis URL (or set REDIS_URL env)")
		maxAge   = flag.Duration("max-age", time.Hour, "Delete votes older than this")
		dryRun   = flag.Bool("dry-run", false, "Dry run mode (don't delete anything)")
		verbose  = flag.Bool("verbose", false, "Verbose logging")
	)
	flag.Parse()

	if *redisURL == "" {
		log.Fatal("Redis URL required (--redis or REDIS_URL env)")
	}
	if *maxAge <= 0 {
		log.Fatal("--max-age must be positive")
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))

	opts, err := goredis.ParseURL(*redisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	rdb := goredis.NewClient(opts)
	defer rdb.Close()

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	slog.Info("Connected to Redis", "url", sanitizeURL(*redisURL))

	if err := sweep(ctx, rdb, *maxAge, *dryRun); err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}

	slog.Info("Sweep complete")
}

func sweep(ctx context.Context, rdb *goredis.Client, maxAge time.Duration, dryRun bool) error {
	start := time.Now()
	cutoff := fmt.Sprintf("(%d", time.Now().Add(-maxAge).UnixMilli())
	var cursor uint64
	var scanned int
	var deleted int64

	slog.Info("Starting retention sweep", "max_age", maxAge, "dry_run", dryRun)

	for {
		keys, nextCursor, err := rdb.Scan(ctx, cursor, voteKeyPattern, scanCount).Result()
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		for _, key := range keys {
			scanned++

			if dryRun {
				n, err := rdb.ZCount(ctx, key, "-inf", cutoff).Result()
				if err != nil {
					return fmt.Errorf("zcount %s failed: %w", key, err)
				}
				slog.Debug("Would delete", "key", key, "votes", n)
				deleted += n
				continue
			}

			n, err := rdb.ZRemRangeByScore(ctx, key, "-inf", cutoff).Result()
			if err != nil {
				return fmt.Errorf("zremrangebyscore %s failed: %w", key, err)
			}
			if n > 0 {
				slog.Debug("Deleted expired votes", "key", key, "votes", n)
			}
			deleted += n
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	slog.Info("Sweep summary",
		"scanned_venues", scanned,
		"deleted_votes", deleted,
		"dry_run", dryRun,
		"duration_ms", time.Since(start).Milliseconds())

	return nil
}

func sanitizeURL(url string) string {
	// Hide password in Redis URL for logging
	if strings.Contains(url, "@") {
		parts := strings.Split(url, "@")
		if len(parts) == 2 {
			credParts := strings.Split(parts[0], ":")
			if len(credParts) >= 2 {
				return credParts[0] + ":***@" + parts[1]
			}
		}
	}
	return url
}
