package models

// Requests for the technical analysis HTTP endpoints.

type TechnicalRequest struct {
	CurrencyID string `query:"currency_id" json:"currency_id" validate:"required"`
	Interval   string `query:"interval" json:"interval" default:"1d" validate:"oneof=1h 4h 1d 1w"`
}

type HistoryRequest struct {
	CurrencyID string `query:"currency_id" json:"currency_id" validate:"required"`
	Interval   string `query:"interval" json:"interval" default:"1d" validate:"oneof=1h 4h 1d 1w"`
	Limit      int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
	Since      string `query:"since" json:"since"`
}

type ClassifyRequest struct {
	Indicators     []IndicatorReading     `json:"indicators" yaml:"indicators" validate:"dive"`
	MovingAverages []MovingAverageReading `json:"moving_averages" yaml:"moving_averages" validate:"dive"`
	CurrentPrice   float64                `json:"current_price" yaml:"current_price" validate:"finite,gte=0"`
}

type OverallRequest struct {
	Buy  int `query:"buy" json:"buy" validate:"gte=0"`
	Sell int `query:"sell" json:"sell" validate:"gte=0"`
}
