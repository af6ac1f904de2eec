package server

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Health check mocks ---

type mockRedisChecker struct {
	err error
}

func (m *mockRedisChecker) Ping(ctx context.Context) *goredis.StatusCmd {
	cmd := goredis.NewStatusCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
	}
	return cmd
}

type mockPostgresChecker struct {
	err error
}

func (m *mockPostgresChecker) Ping(context.Context) error {
	return m.err
}

func TestHandleLiveness(t *testing.T) {
	srv, _ := newTestServer(t, noon())

	rec := doRequest(srv, http.MethodGet, "/health/live", nil)
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandleReadiness_AllHealthy(t *testing.T) {
	srv, _ := newTestServer(t, noon())
	srv.redis = &mockRedisChecker{}
	srv.db = &mockPostgresChecker{}

	rec := doRequest(srv, http.MethodGet, "/health/ready", nil)
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)
}

func TestHandleReadiness_RedisDown(t *testing.T) {
	srv, _ := newTestServer(t, noon())
	srv.redis = &mockRedisChecker{err: fmt.Errorf("connection refused")}
	srv.db = &mockPostgresChecker{}

	rec := doRequest(srv, http.MethodGet, "/health/ready", nil)
	require.Equal(t, 503, rec.Code)
	assert.Contains(t, rec.Body.String(), `"failed_check":"redis"`)
}

func TestHandleReadiness_PostgresDown(t *testing.T) {
	srv, _ := newTestServer(t, noon())
	srv.redis = &mockRedisChecker{}
	srv.db = &mockPostgresChecker{err: fmt.Errorf("connection refused")}

	rec := doRequest(srv, http.MethodGet, "/health/ready", nil)
	require.Equal(t, 503, rec.Code)
	assert.Contains(t, rec.Body.String(), `"failed_check":"postgres"`)
}

func TestHandleVersion(t *testing.T) {
	srv, _ := newTestServer(t, noon())

	rec := doRequest(srv, http.MethodGet, "/version", nil)
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"dev"`)
}
