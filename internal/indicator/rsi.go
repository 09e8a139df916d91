package indicator

// RSI computes the Relative Strength Index over the last period deltas
// using simple (non-smoothed) average gain/loss.
//
// Needs at least period+1 prices. When the average loss is zero the value
// saturates: 100 if there was any gain, 0 otherwise. Rounded to 2 decimals.
func RSI(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period+1 {
		return 0, false
	}

	deltas := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		deltas = append(deltas, prices[i]-prices[i-1])
	}

	var gainSum, lossSum float64
	for _, d := range deltas[len(deltas)-period:] {
		if d > 0 {
			gainSum += d
		} else if d < 0 {
			lossSum -= d
		}
	}

	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)

	if avgLoss == 0 {
		if avgGain > 0 {
			return 100, true
		}
		return 0, true
	}

	rs := avgGain / avgLoss
	return Round2(100 - 100/(1+rs)), true
}
