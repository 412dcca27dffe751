package repository

import (
	"context"
	"errors"
	"time"

	"TradeSim/internal/domain/models"
)

// ErrUnknownCurrency is returned by sources that have no data for a currency.
var ErrUnknownCurrency = errors.New("unknown currency")

// IndicatorSource returns the latest indicator values for a currency and interval.
type IndicatorSource interface {
	GetIndicators(ctx context.Context, currencyID string, interval Interval) (*models.IndicatorSnapshot, error)
}

// PriceSource returns the current price of a currency.
type PriceSource interface {
	GetCurrentPrice(ctx context.Context, currencyID string) (float64, error)
}

// PriceFeed keeps the last streamed price per currency.
type PriceFeed interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, currencyIDs []string) error
	Run(ctx context.Context) error
	LastPrice(currencyID string) (price float64, at time.Time, ok bool)
	Close() error
	IsConnected() bool
}

// ReportStore persists technical reports.
type ReportStore interface {
	Save(ctx context.Context, r *models.TechnicalReport) error
	History(ctx context.Context, currencyID string, interval Interval, limit int) ([]*models.TechnicalReport, error)
	Health(ctx context.Context) error
}

// ReportPublisher fans reports out to downstream consumers.
// The transport it writes to is owned and closed by the caller.
type ReportPublisher interface {
	Publish(ctx context.Context, r *models.TechnicalReport) error
}

// Metrics records classifier outcomes, source errors and operation latency.
type Metrics interface {
	RecordDecision(kind string, decision string)
	RecordOverall(signal string)
	RecordError(kind string)
	RecordLastPrice(currencyID string, price float64)
	RecordLatency(op string, seconds float64)
}
