package usecase

import (
	"testing"

	"TradeSim/internal/domain/models"
	"TradeSim/internal/services/technical"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyUseCase(t *testing.T) {
	m := newFakeMetrics()
	uc := NewClassifyUseCase(technical.Evaluator{}, m)

	summary, err := uc.Classify(models.ClassifyRequest{
		Indicators: []models.IndicatorReading{
			{Kind: models.KindRSI, Value: models.Scalar(75)},
			{Kind: models.KindADX, Value: models.Scalar(10)},
			{Kind: models.KindATR, Value: models.Scalar(2)},
		},
		CurrentPrice: 100,
	})
	require.NoError(t, err)

	// Overbought and volatility decisions are listed but not tallied.
	assert.Equal(t, models.SignalSummary{Sell: 1}, summary.OscillatorSummary)
	require.Len(t, summary.Oscillators, 3)
	assert.Equal(t, models.DecisionOverbought, summary.Oscillators[0].Decision)
	assert.Equal(t, models.DecisionHighVolatility, summary.Oscillators[2].Decision)
	assert.Equal(t, models.SignalNeutral, summary.Overall)
	assert.Equal(t, 1, m.decisions["ADX=Sell"])
}

func TestClassifyUseCaseInvalidInput(t *testing.T) {
	m := newFakeMetrics()
	uc := NewClassifyUseCase(technical.Evaluator{}, m)

	_, err := uc.Classify(models.ClassifyRequest{
		Indicators: []models.IndicatorReading{{Kind: models.KindMACD, Value: models.Scalar(1)}},
	})
	require.ErrorIs(t, err, technical.ErrInvalidInput)
	assert.Equal(t, 1, m.errors["classify"])
}

func TestClassifyUseCaseOverall(t *testing.T) {
	uc := NewClassifyUseCase(technical.Evaluator{}, newFakeMetrics())

	got, err := uc.Overall(12, 2)
	require.NoError(t, err)
	assert.Equal(t, models.SignalStrongBuy, got)

	_, err = uc.Overall(-1, 0)
	assert.ErrorIs(t, err, ErrInvalidParams)
}
