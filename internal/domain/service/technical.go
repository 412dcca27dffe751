package service

import "TradeSim/internal/domain/models"

// TechnicalEvaluator turns indicator and moving average readings into a TechnicalSummary.
type TechnicalEvaluator interface {
	Evaluate(indicators []models.IndicatorReading, movingAverages []models.MovingAverageReading, currentPrice float64) (models.TechnicalSummary, error)
}
