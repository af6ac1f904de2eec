package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/messpulse/internal/app"
	"github.com/pscheid92/messpulse/internal/busyness"
	"github.com/pscheid92/messpulse/internal/config"
	"github.com/pscheid92/messpulse/internal/database"
	"github.com/pscheid92/messpulse/internal/logging"
	"github.com/pscheid92/messpulse/internal/redis"
	"github.com/pscheid92/messpulse/internal/server"
	"github.com/pscheid92/messpulse/internal/websocket"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return db
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupTimezone(cfg *config.Config) *time.Location {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		slog.Error("Failed to load timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}
	return loc
}

func runGracefulShutdown(srv *server.Server, hub *websocket.Hub, cancelWorkers context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		cancelWorkers()
		hub.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	loc := setupTimezone(cfg)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(context.Background(), cfg)
	defer func() { _ = redisClient.Close() }()

	voteStore := redis.NewVoteStore(redisClient)
	pubsub := redis.NewStatusPubSub(redisClient)
	historyRepo := database.NewHistoryRepo(pool)
	statusRepo := database.NewStatusRepo(pool)

	engine := busyness.NewEngine(voteStore, historyRepo, clock,
		busyness.WithLiveWindow(cfg.LiveWindow),
		busyness.WithLocation(loc),
		busyness.WithHistoryCountCap(cfg.HistoryCountCap),
	)

	appSvc := app.NewService(engine, statusRepo, pubsub, clock)

	hub := websocket.NewHub(cfg.MaxClientsPerVenue, slog.Default())

	// Background workers: pub/sub fanout and retention sweep
	workerCtx, cancelWorkers := context.WithCancel(context.Background())

	go func() {
		if err := pubsub.Listen(workerCtx, hub.BroadcastRaw); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Pub/sub listener stopped", "error", err)
		}
	}()

	sweeper := app.NewSweeper(voteStore, clock, cfg.SweepInterval, cfg.VoteMaxAge)
	go sweeper.Run(workerCtx)

	srv := server.NewServer(cfg, appSvc, hub, redisClient, pool)

	done := runGracefulShutdown(srv, hub, cancelWorkers)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
