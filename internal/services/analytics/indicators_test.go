package analytics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"TradeSim/internal/domain/models"
	drepo "TradeSim/internal/domain/repository"
	"TradeSim/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *config.Config {
	var cfg config.Config
	cfg.Analytics.BaseURL = baseURL
	cfg.Analytics.Token = "secret"
	cfg.Analytics.Timeout = time.Second
	cfg.Analytics.Retries = 2
	return &cfg
}

const indicatorsBody = `{
  "currency_id": "bitcoin",
  "interval": "4h",
  "indicators": {
    "RSI(14)": 42.5,
    "MACD": {"macd": 3.2, "signal_line": 1.0},
    "Williams %R": -85,
    "VOLATILITY": "High Volatility"
  },
  "moving_averages": [
    {"period": 10, "kind": "Simple", "value": 99.5},
    {"period": 10, "kind": "Exponential", "value": 101.5}
  ],
  "current_price": "100.25"
}`

func TestClientGetIndicators(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/indicators", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("currency_id"))
		assert.Equal(t, "4h", r.URL.Query().Get("interval"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(indicatorsBody))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	snap, err := c.GetIndicators(context.Background(), "bitcoin", drepo.Interval4h)
	require.NoError(t, err)

	assert.Equal(t, "bitcoin", snap.CurrencyID)
	assert.Equal(t, "4h", snap.Interval)
	assert.InDelta(t, 100.25, snap.CurrentPrice, 1e-9)
	assert.False(t, snap.Timestamp.IsZero())
	require.Len(t, snap.Indicators, 4)
	require.Len(t, snap.MovingAverages, 2)

	byKind := map[models.IndicatorKind]models.IndicatorValue{}
	for _, r := range snap.Indicators {
		byKind[r.Kind] = r.Value
	}
	assert.Equal(t, models.Scalar(42.5), byKind[models.KindRSI])
	assert.Equal(t, models.MACDPair(3.2, 1.0), byKind[models.KindMACD])
	assert.Equal(t, models.Scalar(-85), byKind[models.KindWilliamsR])
	assert.Equal(t, models.Label("High Volatility"), byKind[models.KindVolatility])
}

func TestClientGetCurrentPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/prices/ethereum", r.URL.Path)
		_, _ = w.Write([]byte(`{"currency_id":"ethereum","price":"2500.10"}`))
	}))
	defer srv.Close()

	price, err := NewClient(testConfig(srv.URL)).GetCurrentPrice(context.Background(), "ethereum")
	require.NoError(t, err)
	assert.InDelta(t, 2500.10, price, 1e-9)
}

func TestClientRejectsNonPositivePrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"price":0}`))
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL)).GetCurrentPrice(context.Background(), "x")
	require.Error(t, err)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"price":1.5}`))
	}))
	defer srv.Close()

	price, err := NewClient(testConfig(srv.URL)).GetCurrentPrice(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 1.5, price)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClientDoesNotRetryNotFound(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL)).GetIndicators(context.Background(), "nope", drepo.Interval1d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownCurrency))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
