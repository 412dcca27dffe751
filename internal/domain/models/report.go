package models

import "time"

// IndicatorSnapshot is everything the backend reports for one (currency, interval) pair.
type IndicatorSnapshot struct {
	CurrencyID     string                 `json:"currency_id"`
	Interval       string                 `json:"interval"`
	Indicators     []IndicatorReading     `json:"indicators"`
	MovingAverages []MovingAverageReading `json:"moving_averages"`
	CurrentPrice   float64                `json:"current_price,omitempty"`
	Timestamp      time.Time              `json:"timestamp"`
}

// TechnicalReport is a stamped TechnicalSummary for one currency and interval.
type TechnicalReport struct {
	ID         string           `json:"id"`
	CurrencyID string           `json:"currency_id"`
	Interval   string           `json:"interval"`
	Timestamp  time.Time        `json:"timestamp"`
	Summary    TechnicalSummary `json:"summary"`
}
