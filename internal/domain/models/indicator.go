package models

import "strings"

// IndicatorKind names a technical indicator reported by the analytics backend.
type IndicatorKind string

const (
	KindADX           IndicatorKind = "ADX"
	KindBullBearPower IndicatorKind = "BULL_BEAR_POWER"
	KindWilliamsR     IndicatorKind = "WILLIAMS_R"
	KindMACD          IndicatorKind = "MACD"
	KindCCI           IndicatorKind = "CCI"
	KindRSI           IndicatorKind = "RSI"
	KindATR           IndicatorKind = "ATR"
	KindVolatility    IndicatorKind = "VOLATILITY"
	KindSMA           IndicatorKind = "SMA"
	KindEMA           IndicatorKind = "EMA"
)

var kindAliases = map[string]IndicatorKind{
	"ADX":             KindADX,
	"ADX(14)":         KindADX,
	"BULL_BEAR_POWER": KindBullBearPower,
	"BULLBEARPOWER":   KindBullBearPower,
	"BULL/BEAR POWER": KindBullBearPower,
	"WILLIAMS_R":      KindWilliamsR,
	"WILLIAMSR":       KindWilliamsR,
	"WILLIAMS %R":     KindWilliamsR,
	"WILLIAMS%R":      KindWilliamsR,
	"MACD":            KindMACD,
	"CCI":             KindCCI,
	"CCI(20)":         KindCCI,
	"RSI":             KindRSI,
	"RSI(14)":         KindRSI,
	"ATR":             KindATR,
	"ATR(14)":         KindATR,
	"VOLATILITY":      KindVolatility,
	"SMA":             KindSMA,
	"EMA":             KindEMA,
}

// ParseIndicatorKind maps the names used by the backend and the UI onto a kind.
// Unrecognized names are kept verbatim (upper-cased) and classify as Neutral.
func ParseIndicatorKind(s string) IndicatorKind {
	key := strings.ToUpper(strings.TrimSpace(s))
	if k, ok := kindAliases[key]; ok {
		return k
	}
	return IndicatorKind(key)
}

// UnmarshalText normalizes kind names on decode.
func (k *IndicatorKind) UnmarshalText(b []byte) error {
	*k = ParseIndicatorKind(string(b))
	return nil
}

// IsKnown reports whether k is one of the fixed indicator kinds.
func (k IndicatorKind) IsKnown() bool {
	switch k {
	case KindADX, KindBullBearPower, KindWilliamsR, KindMACD, KindCCI,
		KindRSI, KindATR, KindVolatility, KindSMA, KindEMA:
		return true
	default:
		return false
	}
}

// Decision is the categorical outcome of classifying one reading.
type Decision string

const (
	DecisionBuy                Decision = "Buy"
	DecisionSell               Decision = "Sell"
	DecisionNeutral            Decision = "Neutral"
	DecisionOverbought         Decision = "Overbought"
	DecisionOversold           Decision = "Oversold"
	DecisionHighVolatility     Decision = "High Volatility"
	DecisionModerateVolatility Decision = "Moderate Volatility"
	DecisionLowVolatility      Decision = "Low Volatility"
)

// ParseDecision accepts both the display labels ("High Volatility") and their
// compact forms ("HighVolatility"), case-insensitively.
func ParseDecision(s string) (Decision, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	switch key {
	case "buy":
		return DecisionBuy, true
	case "sell":
		return DecisionSell, true
	case "neutral":
		return DecisionNeutral, true
	case "overbought":
		return DecisionOverbought, true
	case "oversold", "oversell":
		return DecisionOversold, true
	case "highvolatility":
		return DecisionHighVolatility, true
	case "moderatevolatility":
		return DecisionModerateVolatility, true
	case "lowvolatility":
		return DecisionLowVolatility, true
	default:
		return "", false
	}
}

// IsDirectional reports whether d takes part in Buy/Sell/Neutral tallies.
func (d Decision) IsDirectional() bool {
	return d == DecisionBuy || d == DecisionSell || d == DecisionNeutral
}

// IndicatorReading is one indicator value as delivered by the analytics backend.
type IndicatorReading struct {
	Kind  IndicatorKind  `json:"kind" yaml:"kind" validate:"required"`
	Value IndicatorValue `json:"value" yaml:"value"`
}

// ReadingContext carries side inputs some kinds need. A zero CurrentPrice means unknown.
type ReadingContext struct {
	CurrentPrice float64
}

// ClassifiedReading pairs a reading with its decision.
type ClassifiedReading struct {
	Kind     IndicatorKind  `json:"kind"`
	Value    IndicatorValue `json:"value"`
	Decision Decision       `json:"decision"`
}

// MAKind is the moving average flavour.
type MAKind string

const (
	MASimple      MAKind = "Simple"
	MAExponential MAKind = "Exponential"
)

// MovingAverageReading is one (period, kind) moving average value.
type MovingAverageReading struct {
	Period int     `json:"period" yaml:"period" validate:"oneof=5 10 20 50 100 200"`
	Kind   MAKind  `json:"kind" yaml:"kind" validate:"oneof=Simple Exponential"`
	Value  float64 `json:"value" yaml:"value" validate:"finite"`
}

// ClassifiedMovingAverage pairs a moving average with its decision against price.
type ClassifiedMovingAverage struct {
	Period   int      `json:"period"`
	Kind     MAKind   `json:"kind"`
	Value    float64  `json:"value"`
	Decision Decision `json:"decision"`
}
