package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/messpulse/internal/app"
	"github.com/pscheid92/messpulse/internal/config"
	apperrors "github.com/pscheid92/messpulse/internal/errors"
	"github.com/pscheid92/messpulse/internal/websocket"
)

// redisHealthChecker is a minimal interface for Redis health checks
type redisHealthChecker interface {
	Ping(ctx context.Context) *goredis.StatusCmd
}

// postgresHealthChecker is a minimal interface for PostgreSQL health checks
type postgresHealthChecker interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	service   *app.Service
	hub       *websocket.Hub
	redis     redisHealthChecker
	db        postgresHealthChecker
	startTime time.Time
}

func NewServer(cfg *config.Config, service *app.Service, hub *websocket.Hub, redis *goredis.Client, db *pgxpool.Pool) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		service:   service,
		hub:       hub,
		redis:     redis,
		db:        db,
		startTime: time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("starting server", slog.String("port", s.config.Port))
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
