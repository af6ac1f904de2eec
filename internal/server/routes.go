package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Vote submission is rate limited per client IP
	s.echo.POST("/api/votes", s.handleSubmitVote, s.voteRateLimiter())

	// Read surface
	s.echo.GET("/api/venues/:venueId/busyness", s.handleGetBusyness)
	s.echo.GET("/api/period", s.handleGetPeriod)

	// Live updates
	s.echo.GET("/ws/venues/:venueId", s.handleWebSocket)
}
