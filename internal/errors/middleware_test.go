package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getCounterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return -1
	}
	return m.GetCounter().GetValue()
}

func runHandler(t *testing.T, handlerErr error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Middleware()(func(c echo.Context) error {
		return handlerErr
	})

	require.NoError(t, handler(c))
	return rec
}

func TestMiddlewareWithStructuredError(t *testing.T) {
	HTTPErrorsTotal.Reset()

	rec := runHandler(t, ValidationError("invalid input"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid input", resp.Error)
	assert.Equal(t, TypeValidation, resp.Type)

	assert.Equal(t, 1.0, getCounterValue(HTTPErrorsTotal.WithLabelValues("validation")))
}

func TestMiddlewareWithStandardError(t *testing.T) {
	HTTPErrorsTotal.Reset()

	rec := runHandler(t, fmt.Errorf("something broke"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, TypeInternal, resp.Type)
	// Raw error text never leaks to the client.
	assert.NotContains(t, rec.Body.String(), "something broke")

	assert.Equal(t, 1.0, getCounterValue(HTTPErrorsTotal.WithLabelValues("internal")))
}

func TestMiddlewareWithUnavailableError(t *testing.T) {
	HTTPErrorsTotal.Reset()

	rec := runHandler(t, UnavailableError("failed to record vote", fmt.Errorf("redis down")))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, 1.0, getCounterValue(HTTPErrorsTotal.WithLabelValues("unavailable")))
}

func TestMiddlewareWithNoError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMiddlewarePassesThroughEchoHTTPErrors(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Middleware()(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
	})

	err := handler(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Code)
}

func TestMiddlewareContextFieldsInResponse(t *testing.T) {
	rec := runHandler(t, ValidationError("bad status").WithField("status", "crowded"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "crowded", resp.Context["status"])
}
