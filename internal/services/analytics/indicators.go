package analytics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"TradeSim/internal/domain/models"
	drepo "TradeSim/internal/domain/repository"
	"TradeSim/pkg/config"
	xhttp "TradeSim/pkg/http"

	"github.com/shopspring/decimal"
)

// ErrUnknownCurrency is returned when the backend has no data for a currency.
var ErrUnknownCurrency = drepo.ErrUnknownCurrency

// Client reads indicator snapshots and prices from the analytics backend.
type Client struct {
	*HTTPServiceBase
}

var (
	_ drepo.IndicatorSource = (*Client)(nil)
	_ drepo.PriceSource     = (*Client)(nil)
)

func NewClient(cfg *config.Config) *Client {
	return &Client{HTTPServiceBase: NewHTTPServiceBase(cfg)}
}

// indicatorsResponse is the backend payload: indicator values keyed by name,
// the moving average grid and optionally the price the values were computed at.
type indicatorsResponse struct {
	CurrencyID     string                           `json:"currency_id"`
	Interval       string                           `json:"interval"`
	Indicators     map[string]models.IndicatorValue `json:"indicators"`
	MovingAverages []models.MovingAverageReading    `json:"moving_averages"`
	CurrentPrice   decimal.NullDecimal              `json:"current_price"`
	Timestamp      time.Time                        `json:"timestamp"`
}

type priceResponse struct {
	CurrencyID string          `json:"currency_id"`
	Price      decimal.Decimal `json:"price"`
}

// GetIndicators fetches the indicator snapshot for currencyID at interval.
func (c *Client) GetIndicators(ctx context.Context, currencyID string, interval drepo.Interval) (*models.IndicatorSnapshot, error) {
	var resp indicatorsResponse
	err := c.GetJSONWithRetry(ctx, "/api/v1/indicators", map[string][]string{
		"currency_id": {currencyID},
		"interval":    {string(interval)},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch indicators %s/%s: %w", currencyID, interval, notFound(err))
	}
	return resp.snapshot(currencyID, interval), nil
}

// GetCurrentPrice fetches the latest price for currencyID.
func (c *Client) GetCurrentPrice(ctx context.Context, currencyID string) (float64, error) {
	var resp priceResponse
	if err := c.GetJSONWithRetry(ctx, "/api/v1/prices/"+url.PathEscape(currencyID), nil, &resp); err != nil {
		return 0, fmt.Errorf("fetch price %s: %w", currencyID, notFound(err))
	}
	if !resp.Price.IsPositive() {
		return 0, fmt.Errorf("fetch price %s: non-positive price %s", currencyID, resp.Price)
	}
	return resp.Price.InexactFloat64(), nil
}

func (r *indicatorsResponse) snapshot(currencyID string, interval drepo.Interval) *models.IndicatorSnapshot {
	names := make([]string, 0, len(r.Indicators))
	for name := range r.Indicators {
		names = append(names, name)
	}
	sort.Strings(names)

	readings := make([]models.IndicatorReading, 0, len(names))
	for _, name := range names {
		readings = append(readings, models.IndicatorReading{
			Kind:  models.ParseIndicatorKind(name),
			Value: r.Indicators[name],
		})
	}

	snap := &models.IndicatorSnapshot{
		CurrencyID:     currencyID,
		Interval:       string(interval),
		Indicators:     readings,
		MovingAverages: r.MovingAverages,
		Timestamp:      r.Timestamp,
	}
	if r.CurrentPrice.Valid {
		snap.CurrentPrice = r.CurrentPrice.Decimal.InexactFloat64()
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now().UTC()
	}
	return snap
}

func notFound(err error) error {
	var se *xhttp.StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %v", ErrUnknownCurrency, err)
	}
	return err
}
