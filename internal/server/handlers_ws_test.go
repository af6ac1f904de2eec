package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/messpulse/internal/domain"
)

func TestHandleWebSocket_SendsInitialSnapshot(t *testing.T) {
	srv, _ := newTestServer(t, noon())

	rec := doRequest(srv, http.MethodPost, "/api/votes",
		strings.NewReader(`{"venueId":"mensa-nord","status":"busy"}`))
	require.Equal(t, 200, rec.Code)

	ts := httptest.NewServer(srv.echo)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/venues/mensa-nord"
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var status domain.VenueStatus
	require.NoError(t, json.Unmarshal(msg, &status))
	assert.Equal(t, "mensa-nord", status.VenueID)
	assert.Equal(t, "lunch", status.Period)
	assert.Equal(t, 1, status.VoteCount)
}

func TestHandleWebSocket_ReceivesBroadcasts(t *testing.T) {
	srv, _ := newTestServer(t, noon())

	ts := httptest.NewServer(srv.echo)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/venues/mensa-nord"
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// First frame is the connect snapshot.
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err = conn.ReadMessage()
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return srv.hub.GetClientCount("mensa-nord") == 1
	}, time.Second, 5*time.Millisecond)

	srv.hub.BroadcastStatus(domain.VenueStatus{
		VenueID: "mensa-nord",
		Status:  domain.StatusBusy,
		Score:   2.4,
		Period:  "lunch",
	})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var status domain.VenueStatus
	require.NoError(t, json.Unmarshal(msg, &status))
	assert.Equal(t, domain.StatusBusy, status.Status)
	assert.Equal(t, 2.4, status.Score)
}
