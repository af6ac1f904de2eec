// Package server implements the HTTP server using Echo framework.
//
// Routes: vote submission, busyness reads, period info, WebSocket fanout,
// health and metrics. Handlers split by surface: handlers_api.go,
// handlers_ws.go, handlers_health.go.
package server
