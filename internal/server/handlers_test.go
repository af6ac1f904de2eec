package server

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/messpulse/internal/app"
	"github.com/pscheid92/messpulse/internal/busyness"
	"github.com/pscheid92/messpulse/internal/config"
	"github.com/pscheid92/messpulse/internal/websocket"
)

// newTestServer wires a Server over in-memory stores at a fixed clock.
// Redis and Postgres are not connected; health checks get mocks injected
// per test.
func newTestServer(t *testing.T, now time.Time) (*Server, *busyness.MemoryStore) {
	return newTestServerWithRate(t, now, 100, 100)
}

func newTestServerWithRate(t *testing.T, now time.Time, ratePerSecond float64, burst int) (*Server, *busyness.MemoryStore) {
	t.Helper()

	clock := clockwork.NewFakeClockAt(now)
	store := busyness.NewMemoryStore(clock)
	engine := busyness.NewEngine(store, store, clock, busyness.WithLocation(time.UTC))
	service := app.NewService(engine, store, nil, clock)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := websocket.NewHub(10, logger)
	t.Cleanup(hub.Stop)

	cfg := &config.Config{
		Port:              "0",
		VoteRatePerSecond: ratePerSecond,
		VoteRateBurst:     burst,
	}

	srv := NewServer(cfg, service, hub, nil, nil)
	return srv, store
}

func doRequest(srv *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}
