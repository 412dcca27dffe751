package technical

import (
	"math"

	"TradeSim/internal/domain/models"
)

// Threshold constants. Rules are evaluated top-down and the first match wins.
const (
	adxBuyAbove     = 25.0
	adxNeutralAbove = 20.0

	bbpBuyAbove     = 0.0
	bbpNeutralAbove = -0.5

	cciBuyAbove     = 100.0
	cciNeutralAbove = -100.0

	macdBuyAbove     = 1.0
	macdNeutralAbove = -1.0

	rsiOversoldBelow = 30.0
	rsiBuyBelow      = 50.0
	rsiNeutralAtMost = 70.0

	williamsOverboughtAbove = -20.0
	williamsOversoldBelow   = -80.0
	williamsBuyBelow        = -50.0

	atrHighAbove     = 1.75
	atrModerateAbove = 0.75
)

// Classify maps one indicator value to a decision.
//
// Unknown kinds classify as Neutral. ATR without a positive current price is Neutral.
// A value of the wrong shape for a numeric kind (missing, label, NaN, a MACD pair
// for a scalar kind or the reverse) yields an *InvalidInputError.
func Classify(kind models.IndicatorKind, value models.IndicatorValue, rc models.ReadingContext) (models.Decision, error) {
	switch kind {
	case models.KindADX:
		return classifyBands(kind, value, adxBuyAbove, adxNeutralAbove)
	case models.KindBullBearPower:
		return classifyBands(kind, value, bbpBuyAbove, bbpNeutralAbove)
	case models.KindCCI:
		return classifyBands(kind, value, cciBuyAbove, cciNeutralAbove)
	case models.KindMACD:
		return classifyMACD(value)
	case models.KindRSI:
		return classifyRSI(value)
	case models.KindWilliamsR:
		return classifyWilliamsR(value)
	case models.KindATR:
		return classifyATR(value, rc.CurrentPrice)
	case models.KindVolatility:
		return classifyVolatilityLabel(value), nil
	case models.KindSMA, models.KindEMA:
		v, err := scalar(kind, value)
		if err != nil {
			return "", err
		}
		if !validPrice(rc.CurrentPrice) {
			return models.DecisionNeutral, nil
		}
		return ClassifyMovingAverage(v, rc.CurrentPrice), nil
	default:
		return models.DecisionNeutral, nil
	}
}

// classifyBands covers the ADX, Bull/Bear Power and CCI shape: Buy above the
// upper bound, Neutral above the lower bound, Sell otherwise.
func classifyBands(kind models.IndicatorKind, value models.IndicatorValue, buyAbove, neutralAbove float64) (models.Decision, error) {
	v, err := scalar(kind, value)
	if err != nil {
		return "", err
	}
	return bands(v, buyAbove, neutralAbove), nil
}

func bands(v, buyAbove, neutralAbove float64) models.Decision {
	switch {
	case v > buyAbove:
		return models.DecisionBuy
	case v > neutralAbove:
		return models.DecisionNeutral
	default:
		return models.DecisionSell
	}
}

func classifyMACD(value models.IndicatorValue) (models.Decision, error) {
	if value.Type != models.ValueMACD {
		return "", invalid(models.KindMACD, "expected macd/signal pair, got %s", value.Type)
	}
	if !finite(value.MACD.MACD) || !finite(value.MACD.Signal) {
		return "", invalid(models.KindMACD, "macd pair is not finite")
	}
	return bands(value.MACD.MACD-value.MACD.Signal, macdBuyAbove, macdNeutralAbove), nil
}

func classifyRSI(value models.IndicatorValue) (models.Decision, error) {
	v, err := scalar(models.KindRSI, value)
	if err != nil {
		return "", err
	}
	switch {
	case v < rsiOversoldBelow:
		return models.DecisionOversold, nil
	case v < rsiBuyBelow:
		return models.DecisionBuy, nil
	case v <= rsiNeutralAtMost:
		return models.DecisionNeutral, nil
	default:
		return models.DecisionOverbought, nil
	}
}

// Williams %R ranges overlap when tested independently; the order here is significant.
func classifyWilliamsR(value models.IndicatorValue) (models.Decision, error) {
	v, err := scalar(models.KindWilliamsR, value)
	if err != nil {
		return "", err
	}
	switch {
	case v > williamsOverboughtAbove:
		return models.DecisionOverbought, nil
	case v < williamsOversoldBelow:
		return models.DecisionOversold, nil
	case v < williamsBuyBelow:
		return models.DecisionBuy, nil
	default:
		return models.DecisionNeutral, nil
	}
}

func classifyATR(value models.IndicatorValue, price float64) (models.Decision, error) {
	v, err := scalar(models.KindATR, value)
	if err != nil {
		return "", err
	}
	if !validPrice(price) {
		return models.DecisionNeutral, nil
	}
	relative := v * 100 / price
	switch {
	case relative > atrHighAbove:
		return models.DecisionHighVolatility, nil
	case relative > atrModerateAbove:
		return models.DecisionModerateVolatility, nil
	default:
		return models.DecisionLowVolatility, nil
	}
}

func classifyVolatilityLabel(value models.IndicatorValue) models.Decision {
	if value.Type != models.ValueLabel {
		return models.DecisionNeutral
	}
	d, ok := models.ParseDecision(value.Label)
	if !ok {
		return models.DecisionNeutral
	}
	switch d {
	case models.DecisionHighVolatility, models.DecisionModerateVolatility, models.DecisionLowVolatility:
		return d
	default:
		return models.DecisionNeutral
	}
}

func scalar(kind models.IndicatorKind, value models.IndicatorValue) (float64, error) {
	if value.Type != models.ValueScalar {
		return 0, invalid(kind, "expected numeric value, got %s", value.Type)
	}
	if !finite(value.Scalar) {
		return 0, invalid(kind, "value %v is not finite", value.Scalar)
	}
	return value.Scalar, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func validPrice(p float64) bool { return finite(p) && p > 0 }
