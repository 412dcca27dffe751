package models

// SignalSummary tallies Buy, Sell and Neutral decisions. Other decisions are not counted.
type SignalSummary struct {
	Buy     int `json:"buy"`
	Sell    int `json:"sell"`
	Neutral int `json:"neutral"`
}

// Total returns the number of counted decisions.
func (s SignalSummary) Total() int { return s.Buy + s.Sell + s.Neutral }

// OverallSignal is a directional recommendation derived from vote counts.
type OverallSignal string

const (
	SignalStrongBuy  OverallSignal = "Strong Buy"
	SignalBuy        OverallSignal = "Buy"
	SignalNeutral    OverallSignal = "Neutral"
	SignalSell       OverallSignal = "Sell"
	SignalStrongSell OverallSignal = "Strong Sell"
)

// MovingAverageSummary is the tally over the moving average grid plus its label.
type MovingAverageSummary struct {
	Decision OverallSignal `json:"decision"`
	Buy      int           `json:"buy"`
	Sell     int           `json:"sell"`
	Neutral  int           `json:"neutral"`
}

// TechnicalSummary is the result of one evaluation pass over oscillators and moving averages.
type TechnicalSummary struct {
	CurrentPrice         float64                   `json:"current_price"`
	Oscillators          []ClassifiedReading       `json:"oscillators"`
	OscillatorSummary    SignalSummary             `json:"oscillator_summary"`
	MovingAverages       []ClassifiedMovingAverage `json:"moving_averages"`
	MovingAverageSummary MovingAverageSummary      `json:"moving_average_summary"`
	Overall              OverallSignal             `json:"overall"`
}
