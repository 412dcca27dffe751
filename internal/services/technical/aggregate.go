package technical

import (
	"fmt"

	"TradeSim/internal/domain/models"
)

// Aggregate tallies Buy, Sell and Neutral decisions. Overbought, Oversold and the
// volatility decisions are not counted. The result does not depend on input order.
func Aggregate(decisions []models.Decision) models.SignalSummary {
	var s models.SignalSummary
	for _, d := range decisions {
		switch d {
		case models.DecisionBuy:
			s.Buy++
		case models.DecisionSell:
			s.Sell++
		case models.DecisionNeutral:
			s.Neutral++
		}
	}
	return s
}

// ClassifyAll classifies every reading with the same context.
// It stops at the first invalid reading.
func ClassifyAll(readings []models.IndicatorReading, rc models.ReadingContext) ([]models.ClassifiedReading, error) {
	out := make([]models.ClassifiedReading, 0, len(readings))
	for i, r := range readings {
		d, err := Classify(r.Kind, r.Value, rc)
		if err != nil {
			return nil, fmt.Errorf("reading %d: %w", i, err)
		}
		out = append(out, models.ClassifiedReading{Kind: r.Kind, Value: r.Value, Decision: d})
	}
	return out, nil
}

// Decisions extracts the decision column.
func Decisions(readings []models.ClassifiedReading) []models.Decision {
	out := make([]models.Decision, len(readings))
	for i, r := range readings {
		out[i] = r.Decision
	}
	return out
}
