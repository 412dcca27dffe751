package technical

import (
	"TradeSim/internal/domain/models"
	"TradeSim/internal/domain/service"
)

// Evaluate runs one full pass: classify oscillators and moving averages, tally
// both, and derive the overall signal from the summed Buy and Sell counts.
func Evaluate(indicators []models.IndicatorReading, movingAverages []models.MovingAverageReading, currentPrice float64) (models.TechnicalSummary, error) {
	oscillators, err := ClassifyAll(indicators, models.ReadingContext{CurrentPrice: currentPrice})
	if err != nil {
		return models.TechnicalSummary{}, err
	}
	mas, err := ClassifyMovingAverages(movingAverages, currentPrice)
	if err != nil {
		return models.TechnicalSummary{}, err
	}

	oscSummary := Aggregate(Decisions(oscillators))
	maDecisions := make([]models.Decision, len(mas))
	for i, m := range mas {
		maDecisions[i] = m.Decision
	}
	maSummary := SummarizeMovingAverages(maDecisions)

	return models.TechnicalSummary{
		CurrentPrice:         currentPrice,
		Oscillators:          oscillators,
		OscillatorSummary:    oscSummary,
		MovingAverages:       mas,
		MovingAverageSummary: maSummary,
		Overall:              DetermineOverallSignal(oscSummary.Buy+maSummary.Buy, oscSummary.Sell+maSummary.Sell),
	}, nil
}

// Evaluator adapts Evaluate to service.TechnicalEvaluator.
type Evaluator struct{}

var _ service.TechnicalEvaluator = Evaluator{}

func (Evaluator) Evaluate(indicators []models.IndicatorReading, movingAverages []models.MovingAverageReading, currentPrice float64) (models.TechnicalSummary, error) {
	return Evaluate(indicators, movingAverages, currentPrice)
}
