package technical

import (
	"fmt"

	"TradeSim/internal/domain/models"
)

var (
	movingAveragePeriods = []int{5, 10, 20, 50, 100, 200}
	movingAverageKinds   = []models.MAKind{models.MASimple, models.MAExponential}
)

// MovingAveragePeriods returns the fixed period set.
func MovingAveragePeriods() []int {
	return append([]int(nil), movingAveragePeriods...)
}

// MovingAverageKinds returns the fixed kind set.
func MovingAverageKinds() []models.MAKind {
	return append([]models.MAKind(nil), movingAverageKinds...)
}

// IsMovingAveragePeriod reports whether p belongs to the fixed period set.
func IsMovingAveragePeriod(p int) bool {
	for _, v := range movingAveragePeriods {
		if v == p {
			return true
		}
	}
	return false
}

// ClassifyMovingAverage compares the current price with a moving average.
func ClassifyMovingAverage(maValue, currentPrice float64) models.Decision {
	switch {
	case currentPrice > maValue:
		return models.DecisionBuy
	case currentPrice < maValue:
		return models.DecisionSell
	default:
		return models.DecisionNeutral
	}
}

// ClassifyMovingAverages classifies each reading against the current price.
// Every period must belong to the fixed set. Without a positive, finite price
// each reading is Neutral, as Classify does for SMA and EMA.
func ClassifyMovingAverages(readings []models.MovingAverageReading, currentPrice float64) ([]models.ClassifiedMovingAverage, error) {
	if len(readings) == 0 {
		return []models.ClassifiedMovingAverage{}, nil
	}
	priced := validPrice(currentPrice)
	out := make([]models.ClassifiedMovingAverage, 0, len(readings))
	for i, r := range readings {
		kind := maIndicatorKind(r.Kind)
		if !IsMovingAveragePeriod(r.Period) {
			return nil, fmt.Errorf("moving average %d: %w", i, invalid(kind, "unsupported period %d", r.Period))
		}
		if !finite(r.Value) {
			return nil, fmt.Errorf("moving average %d: %w", i, invalid(kind, "value %v is not finite", r.Value))
		}
		d := models.DecisionNeutral
		if priced {
			d = ClassifyMovingAverage(r.Value, currentPrice)
		}
		out = append(out, models.ClassifiedMovingAverage{
			Period:   r.Period,
			Kind:     r.Kind,
			Value:    r.Value,
			Decision: d,
		})
	}
	return out, nil
}

// SummarizeMovingAverages counts decisions and labels the majority.
//
// The "strong" label needs the winning side to also outnumber the neutral votes,
// so extra neutral votes can turn "Strong Buy" into "Buy" with unchanged buy/sell counts.
func SummarizeMovingAverages(decisions []models.Decision) models.MovingAverageSummary {
	s := Aggregate(decisions)
	out := models.MovingAverageSummary{Buy: s.Buy, Sell: s.Sell, Neutral: s.Neutral}
	switch {
	case s.Buy > s.Sell:
		if s.Buy > s.Neutral {
			out.Decision = models.SignalStrongBuy
		} else {
			out.Decision = models.SignalBuy
		}
	case s.Sell > s.Buy:
		if s.Sell > s.Neutral {
			out.Decision = models.SignalStrongSell
		} else {
			out.Decision = models.SignalSell
		}
	default:
		out.Decision = models.SignalNeutral
	}
	return out
}

func maIndicatorKind(k models.MAKind) models.IndicatorKind {
	if k == models.MAExponential {
		return models.KindEMA
	}
	return models.KindSMA
}
