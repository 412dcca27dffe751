package technical

import (
	"testing"

	"TradeSim/internal/domain/models"
)

func TestDetermineOverallSignal(t *testing.T) {
	tests := []struct {
		buy, sell int
		want      models.OverallSignal
	}{
		{12, 3, models.SignalStrongBuy},
		{6, 5, models.SignalNeutral},
		{5, 6, models.SignalNeutral},
		{0, 0, models.SignalNeutral},
		{7, 5, models.SignalBuy},
		{10, 2, models.SignalStrongBuy},
		{9, 2, models.SignalBuy},
		{3, 11, models.SignalStrongSell},
		{3, 9, models.SignalSell},
		{10, 11, models.SignalNeutral},
	}
	for _, tt := range tests {
		if got := DetermineOverallSignal(tt.buy, tt.sell); got != tt.want {
			t.Errorf("DetermineOverallSignal(%d, %d) = %s, want %s", tt.buy, tt.sell, got, tt.want)
		}
	}
}
