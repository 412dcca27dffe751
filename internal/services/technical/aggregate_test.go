package technical

import (
	"errors"
	"math/rand"
	"testing"

	"TradeSim/internal/domain/models"
)

func TestAggregateExcludesNonDirectional(t *testing.T) {
	got := Aggregate([]models.Decision{
		models.DecisionBuy,
		models.DecisionBuy,
		models.DecisionSell,
		models.DecisionNeutral,
		models.DecisionOverbought,
	})
	want := models.SignalSummary{Buy: 2, Sell: 1, Neutral: 1}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil); got != (models.SignalSummary{}) {
		t.Fatalf("expected zero summary, got %+v", got)
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	decisions := []models.Decision{
		models.DecisionBuy, models.DecisionSell, models.DecisionNeutral,
		models.DecisionOversold, models.DecisionHighVolatility, models.DecisionBuy,
		models.DecisionLowVolatility, models.DecisionSell, models.DecisionBuy,
	}
	want := Aggregate(decisions)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		shuffled := append([]models.Decision(nil), decisions...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := Aggregate(shuffled); got != want {
			t.Fatalf("permutation %v: got %+v want %+v", shuffled, got, want)
		}
	}
	if want.Total() != 6 {
		t.Fatalf("expected 6 counted decisions, got %d", want.Total())
	}
}

func TestClassifyAllStopsOnInvalid(t *testing.T) {
	readings := []models.IndicatorReading{
		{Kind: models.KindRSI, Value: models.Scalar(40)},
		{Kind: models.KindMACD, Value: models.Scalar(1)},
	}
	_, err := ClassifyAll(readings, models.ReadingContext{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestEvaluate(t *testing.T) {
	indicators := []models.IndicatorReading{
		{Kind: models.KindRSI, Value: models.Scalar(45)},             // Buy
		{Kind: models.KindADX, Value: models.Scalar(30)},             // Buy
		{Kind: models.KindMACD, Value: models.MACDPair(5, 3)},        // Buy
		{Kind: models.KindCCI, Value: models.Scalar(-150)},           // Sell
		{Kind: models.KindWilliamsR, Value: models.Scalar(-10)},      // Overbought
		{Kind: models.KindATR, Value: models.Scalar(2)},              // High Volatility
		{Kind: models.KindBullBearPower, Value: models.Scalar(-0.1)}, // Neutral
	}
	var mas []models.MovingAverageReading
	for _, p := range MovingAveragePeriods() {
		for _, k := range MovingAverageKinds() {
			mas = append(mas, models.MovingAverageReading{Period: p, Kind: k, Value: 90})
		}
	}

	got, err := Evaluate(indicators, mas, 100)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got.OscillatorSummary != (models.SignalSummary{Buy: 3, Sell: 1, Neutral: 1}) {
		t.Fatalf("oscillator summary %+v", got.OscillatorSummary)
	}
	if got.MovingAverageSummary.Buy != 12 || got.MovingAverageSummary.Decision != models.SignalStrongBuy {
		t.Fatalf("moving average summary %+v", got.MovingAverageSummary)
	}
	if got.Overall != models.SignalStrongBuy {
		t.Fatalf("overall %s", got.Overall)
	}
	if len(got.Oscillators) != len(indicators) || got.Oscillators[5].Decision != models.DecisionHighVolatility {
		t.Fatalf("oscillators %+v", got.Oscillators)
	}
}

func TestEvaluateMovingAveragesNeedPrice(t *testing.T) {
	mas := []models.MovingAverageReading{{Period: 20, Kind: models.MAExponential, Value: 10}}
	_, err := Evaluate(nil, mas, 0)
	var ie *InvalidInputError
	if !errors.As(err, &ie) || ie.Kind != models.KindEMA {
		t.Fatalf("expected EMA invalid input, got %v", err)
	}
}

func TestEvaluateEmpty(t *testing.T) {
	got, err := Evaluate(nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got.Overall != models.SignalNeutral || got.MovingAverageSummary.Decision != models.SignalNeutral {
		t.Fatalf("expected neutral, got %+v", got)
	}
}
