package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	apperrors "github.com/pscheid92/messpulse/internal/errors"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Clients embed the widget from arbitrary origins
	},
}

func (s *Server) handleWebSocket(c echo.Context) error {
	venueID := c.Param("venueId")
	if venueID == "" {
		return apperrors.ValidationError("venueId is required")
	}

	// Snapshot is fetched before the upgrade so a storage outage still
	// yields a proper HTTP error instead of a dropped socket.
	snapshot, err := s.service.GetCurrentStatus(c.Request().Context(), venueID)
	if err != nil {
		return apperrors.UnavailableError("failed to load venue status", err).
			WithField("venue_id", venueID)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade WebSocket: %w", err)
	}

	// Initial snapshot so the client renders without waiting for a vote.
	// Written before Register, which hands the connection to the hub's
	// writer goroutine.
	if data, err := json.Marshal(snapshot); err == nil {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			return nil
		}
		conn.SetWriteDeadline(time.Time{})
	}

	if err := s.hub.Register(venueID, conn); err != nil {
		slog.Warn("failed to register websocket client",
			slog.String("venue_id", venueID),
			slog.Any("error", err))
		return nil
	}

	// Read pump — blocks until the connection closes
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.hub.Unregister(venueID, conn)

	return nil
}
