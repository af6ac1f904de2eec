package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pscheid92/messpulse/internal/domain"
	"github.com/pscheid92/messpulse/internal/metrics"
)

const writeTimeout = 5 * time.Second

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdRegister struct {
	venueID string
	conn    *websocket.Conn
	errCh   chan error
}

func (cmdRegister) hubCmd() {}

type cmdUnregister struct {
	venueID string
	conn    *websocket.Conn
}

func (cmdUnregister) hubCmd() {}

type cmdBroadcast struct {
	venueID string
	data    []byte
}

func (cmdBroadcast) hubCmd() {}

type cmdGetClientCount struct {
	venueID string
	replyCh chan int
}

func (cmdGetClientCount) hubCmd() {}

type cmdStop struct{}

func (cmdStop) hubCmd() {}

// --- Per-connection writer ---

type clientWriter struct {
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
}

func newClientWriter(conn *websocket.Conn) *clientWriter {
	cw := &clientWriter{
		conn:   conn,
		sendCh: make(chan []byte, 16),
		done:   make(chan struct{}),
	}
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	for {
		select {
		case msg, ok := <-cw.sendCh:
			if !ok {
				return
			}
			cw.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := cw.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-cw.done:
			return
		}
	}
}

func (cw *clientWriter) stop() {
	close(cw.done)
	cw.conn.Close()
}

// --- Hub ---

// Hub fans status updates out to the WebSocket clients watching each venue.
// All state is owned by a single goroutine that consumes cmdCh, so no locks
// are needed.
type Hub struct {
	cmdCh       chan hubCmd
	done        chan struct{}
	clients     map[string]map[*websocket.Conn]*clientWriter
	maxPerVenue int
	logger      *slog.Logger
}

// NewHub starts the hub goroutine. maxPerVenue bounds the number of
// concurrent clients accepted per venue; zero means unlimited.
func NewHub(maxPerVenue int, logger *slog.Logger) *Hub {
	hub := &Hub{
		cmdCh:       make(chan hubCmd, 256),
		done:        make(chan struct{}),
		clients:     make(map[string]map[*websocket.Conn]*clientWriter),
		maxPerVenue: maxPerVenue,
		logger:      logger,
	}
	go hub.run()
	return hub
}

func (h *Hub) run() {
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdRegister:
			h.handleRegister(c)
		case cmdUnregister:
			h.handleUnregister(c.venueID, c.conn)
		case cmdBroadcast:
			h.handleBroadcast(c)
		case cmdGetClientCount:
			c.replyCh <- len(h.clients[c.venueID])
		case cmdStop:
			h.handleStop()
			return
		}
	}
}

func (h *Hub) handleRegister(c cmdRegister) {
	clients, exists := h.clients[c.venueID]
	if !exists {
		clients = make(map[*websocket.Conn]*clientWriter)
		h.clients[c.venueID] = clients
	}

	if h.maxPerVenue > 0 && len(clients) >= h.maxPerVenue {
		h.logger.Warn("rejecting websocket client, venue is full",
			slog.String("venue_id", c.venueID),
			slog.Int("max_clients", h.maxPerVenue))
		c.conn.Close()
		c.errCh <- fmt.Errorf("max clients per venue (%d) reached", h.maxPerVenue)
		return
	}

	clients[c.conn] = newClientWriter(c.conn)
	metrics.WSClients.Inc()
	h.logger.Debug("websocket client registered",
		slog.String("venue_id", c.venueID),
		slog.Int("total_clients", len(clients)))
	c.errCh <- nil
}

func (h *Hub) handleUnregister(venueID string, conn *websocket.Conn) {
	clients, exists := h.clients[venueID]
	if !exists {
		return
	}

	cw, exists := clients[conn]
	if !exists {
		return
	}

	cw.stop()
	delete(clients, conn)
	metrics.WSClients.Dec()

	if len(clients) == 0 {
		delete(h.clients, venueID)
		h.logger.Debug("last websocket client disconnected", slog.String("venue_id", venueID))
	} else {
		h.logger.Debug("websocket client unregistered",
			slog.String("venue_id", venueID),
			slog.Int("remaining_clients", len(clients)))
	}
}

func (h *Hub) handleBroadcast(c cmdBroadcast) {
	clients, exists := h.clients[c.venueID]
	if !exists {
		return
	}

	var slow []*websocket.Conn
	for conn, cw := range clients {
		select {
		case cw.sendCh <- c.data:
			metrics.WSBroadcastsTotal.Inc()
		default:
			// client is slow, mark for removal
			slow = append(slow, conn)
		}
	}

	for _, conn := range slow {
		h.logger.Warn("disconnecting slow websocket client", slog.String("venue_id", c.venueID))
		h.handleUnregister(c.venueID, conn)
	}
}

func (h *Hub) handleStop() {
	for venueID, clients := range h.clients {
		for _, cw := range clients {
			cw.stop()
			metrics.WSClients.Dec()
		}
		delete(h.clients, venueID)
	}
	close(h.done)
}

// --- Public API ---

// Register adds a client connection for a venue. The connection is closed
// and an error returned when the venue already has the maximum number of
// clients, or when the hub has been stopped.
func (h *Hub) Register(venueID string, conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	select {
	case h.cmdCh <- cmdRegister{venueID: venueID, conn: conn, errCh: errCh}:
	case <-h.done:
		conn.Close()
		return fmt.Errorf("hub is stopped")
	}
	select {
	case err := <-errCh:
		return err
	case <-h.done:
		conn.Close()
		return fmt.Errorf("hub is stopped")
	}
}

// Unregister removes a client connection from a venue.
func (h *Hub) Unregister(venueID string, conn *websocket.Conn) {
	select {
	case h.cmdCh <- cmdUnregister{venueID: venueID, conn: conn}:
	case <-h.done:
	}
}

// BroadcastStatus marshals a venue status and sends it to every client
// watching that venue.
func (h *Hub) BroadcastStatus(status domain.VenueStatus) {
	data, err := json.Marshal(status)
	if err != nil {
		h.logger.Error("failed to marshal status broadcast", slog.Any("error", err))
		return
	}
	select {
	case h.cmdCh <- cmdBroadcast{venueID: status.VenueID, data: data}:
	case <-h.done:
	}
}

// BroadcastRaw sends an already-encoded payload to every client watching a
// venue. Used by the pub/sub listener for payloads published by other
// instances.
func (h *Hub) BroadcastRaw(venueID string, data []byte) {
	select {
	case h.cmdCh <- cmdBroadcast{venueID: venueID, data: data}:
	case <-h.done:
	}
}

// GetClientCount returns the number of connected clients for a venue.
// Returns zero once the hub has been stopped.
func (h *Hub) GetClientCount(venueID string) int {
	replyCh := make(chan int, 1)
	select {
	case h.cmdCh <- cmdGetClientCount{venueID: venueID, replyCh: replyCh}:
	case <-h.done:
		return 0
	}
	select {
	case count := <-replyCh:
		return count
	case <-h.done:
		return 0
	}
}

// Stop shuts down the hub and closes all client connections. Safe to call
// more than once.
func (h *Hub) Stop() {
	select {
	case h.cmdCh <- cmdStop{}:
	case <-h.done:
	}
}
