package technical

import "TradeSim/internal/domain/models"

const strongSignalVotes = 10

// DetermineOverallSignal combines the Buy and Sell counts of the oscillator and
// moving average summaries. A margin of one vote or less is Neutral.
func DetermineOverallSignal(totalBuy, totalSell int) models.OverallSignal {
	diff := totalBuy - totalSell
	if diff >= -1 && diff <= 1 {
		return models.SignalNeutral
	}
	if totalBuy > totalSell {
		if totalBuy >= strongSignalVotes {
			return models.SignalStrongBuy
		}
		return models.SignalBuy
	}
	if totalSell >= strongSignalVotes {
		return models.SignalStrongSell
	}
	return models.SignalSell
}
