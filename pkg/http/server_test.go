package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ping", func(c echo.Context) error { return SuccessResponse(c, "pong") })
	e.GET("/fail", func(c echo.Context) error {
		return AppErrorResponse(c, BadGatewayError("upstream down").WithError(errors.New("dial tcp")))
	})
	e.GET("/boom", func(c echo.Context) error { return AppErrorResponse(c, errors.New("plain")) })
}

func TestServerRoutesAndEnvelope(t *testing.T) {
	s := NewServer(pingHandler{}, WithMetricsPath("/metrics"), WithCORS())

	rr := httptest.NewRecorder()
	s.Echo().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var res APIResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "pong", res.Data)

	rr = httptest.NewRecorder()
	s.Echo().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAppErrorResponseStatus(t *testing.T) {
	s := NewServer(pingHandler{}, WithMetricsPath(""))

	rr := httptest.NewRecorder()
	s.Echo().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "ERR_UPSTREAM")
	assert.NotContains(t, rr.Body.String(), "dial tcp")

	rr = httptest.NewRecorder()
	s.Echo().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	rr = httptest.NewRecorder()
	s.Echo().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := InvalidInputError("RSI", "bad value").WithError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "bad value: cause", err.Error())
}
