package usecase

import (
	"fmt"

	"TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"
	domsvc "TradeSim/internal/domain/service"
	"TradeSim/internal/services/technical"
)

// ClassifyUseCase evaluates readings supplied by the caller without touching the backend.
type ClassifyUseCase struct {
	evaluator domsvc.TechnicalEvaluator
	metrics   domrepo.Metrics
}

func NewClassifyUseCase(evaluator domsvc.TechnicalEvaluator, metrics domrepo.Metrics) *ClassifyUseCase {
	return &ClassifyUseCase{evaluator: evaluator, metrics: metrics}
}

// Classify returns the full summary for the posted readings.
func (uc *ClassifyUseCase) Classify(req models.ClassifyRequest) (models.TechnicalSummary, error) {
	summary, err := uc.evaluator.Evaluate(req.Indicators, req.MovingAverages, req.CurrentPrice)
	if err != nil {
		uc.metrics.RecordError("classify")
		return models.TechnicalSummary{}, fmt.Errorf("classify: %w", err)
	}
	for _, o := range summary.Oscillators {
		uc.metrics.RecordDecision(string(o.Kind), string(o.Decision))
	}
	return summary, nil
}

// Overall maps two vote counts onto an overall signal.
func (uc *ClassifyUseCase) Overall(buy, sell int) (models.OverallSignal, error) {
	if buy < 0 || sell < 0 {
		return "", fmt.Errorf("%w: counts must be non-negative", ErrInvalidParams)
	}
	return technical.DetermineOverallSignal(buy, sell), nil
}
