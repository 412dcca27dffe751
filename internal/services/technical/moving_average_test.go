package technical

import (
	"errors"
	"math"
	"testing"

	"TradeSim/internal/domain/models"
)

func TestClassifyMovingAverage(t *testing.T) {
	if got := ClassifyMovingAverage(99, 100); got != models.DecisionBuy {
		t.Errorf("price above ma: got %s", got)
	}
	if got := ClassifyMovingAverage(101, 100); got != models.DecisionSell {
		t.Errorf("price below ma: got %s", got)
	}
	if got := ClassifyMovingAverage(100, 100); got != models.DecisionNeutral {
		t.Errorf("price at ma: got %s", got)
	}
}

func repeat(d models.Decision, n int) []models.Decision {
	out := make([]models.Decision, n)
	for i := range out {
		out[i] = d
	}
	return out
}

func votes(buy, sell, neutral int) []models.Decision {
	out := repeat(models.DecisionBuy, buy)
	out = append(out, repeat(models.DecisionSell, sell)...)
	return append(out, repeat(models.DecisionNeutral, neutral)...)
}

func TestSummarizeMovingAverages(t *testing.T) {
	tests := []struct {
		name               string
		buy, sell, neutral int
		want               models.OverallSignal
	}{
		{"strong buy", 8, 2, 2, models.SignalStrongBuy},
		{"buy when neutral dominates", 5, 2, 6, models.SignalBuy},
		{"buy when buy equals neutral", 5, 2, 5, models.SignalBuy},
		{"strong sell", 1, 9, 2, models.SignalStrongSell},
		{"sell when neutral dominates", 1, 4, 7, models.SignalSell},
		{"tie", 4, 4, 4, models.SignalNeutral},
		{"empty", 0, 0, 0, models.SignalNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SummarizeMovingAverages(votes(tt.buy, tt.sell, tt.neutral))
			if got.Decision != tt.want {
				t.Fatalf("got %s want %s", got.Decision, tt.want)
			}
			if got.Buy != tt.buy || got.Sell != tt.sell || got.Neutral != tt.neutral {
				t.Fatalf("counts %+v", got)
			}
		})
	}
}

func TestSummarizeMovingAveragesIgnoresOtherDecisions(t *testing.T) {
	in := append(votes(3, 1, 1), models.DecisionOverbought, models.DecisionLowVolatility)
	got := SummarizeMovingAverages(in)
	if got.Buy != 3 || got.Sell != 1 || got.Neutral != 1 || got.Decision != models.SignalStrongBuy {
		t.Fatalf("got %+v", got)
	}
}

func TestClassifyMovingAveragesGrid(t *testing.T) {
	var readings []models.MovingAverageReading
	for _, p := range MovingAveragePeriods() {
		for _, k := range MovingAverageKinds() {
			readings = append(readings, models.MovingAverageReading{Period: p, Kind: k, Value: float64(p)})
		}
	}
	got, err := ClassifyMovingAverages(readings, 50)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(got) != 12 {
		t.Fatalf("expected 12 decisions, got %d", len(got))
	}
	// 5,10,20 below price -> Buy; 50 equal -> Neutral; 100,200 above -> Sell
	summary := Aggregate(func() []models.Decision {
		ds := make([]models.Decision, len(got))
		for i, m := range got {
			ds[i] = m.Decision
		}
		return ds
	}())
	if summary != (models.SignalSummary{Buy: 6, Sell: 4, Neutral: 2}) {
		t.Fatalf("summary %+v", summary)
	}
}

func TestClassifyMovingAveragesRejectsUnknownPeriod(t *testing.T) {
	_, err := ClassifyMovingAverages([]models.MovingAverageReading{{Period: 7, Kind: models.MASimple, Value: 1}}, 10)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestMovingAveragesWithoutPriceAreNeutral(t *testing.T) {
	readings := []models.MovingAverageReading{
		{Period: 20, Kind: models.MASimple, Value: 90},
		{Period: 50, Kind: models.MAExponential, Value: 110},
	}
	for _, price := range []float64{0, -1, math.NaN()} {
		got, err := ClassifyMovingAverages(readings, price)
		if err != nil {
			t.Fatalf("price %v: unexpected error %v", price, err)
		}
		for i, m := range got {
			if m.Decision != models.DecisionNeutral {
				t.Fatalf("price %v reading %d: got %s, want Neutral", price, i, m.Decision)
			}
			d, err := Classify(maIndicatorKind(m.Kind), models.Scalar(m.Value), models.ReadingContext{CurrentPrice: price})
			if err != nil || d != m.Decision {
				t.Fatalf("price %v reading %d: Classify gave %s, %v", price, i, d, err)
			}
		}
	}
}

func TestMovingAveragePeriodsIsACopy(t *testing.T) {
	p := MovingAveragePeriods()
	p[0] = 999
	if MovingAveragePeriods()[0] != 5 {
		t.Fatalf("period set was mutated")
	}
}
