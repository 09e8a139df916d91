package indicator

import "stockwatch/internal/model"

// Standard Bollinger parameters.
const (
	BollPeriod     = 20
	BollMultiplier = 2.0
)

// Bollinger computes Bollinger bands over the last period prices.
//
// Middle is the window mean; the band width is stdMultiplier times the
// population standard deviation of the same window. Needs at least period
// prices.
func Bollinger(prices []float64, period int, stdMultiplier float64) (model.Bollinger, bool) {
	if period <= 0 || len(prices) < period {
		return model.Bollinger{}, false
	}

	window := prices[len(prices)-period:]
	mid := mean(window)
	band := stdMultiplier * stddev(window, mid)

	return model.Bollinger{
		Upper:  mid + band,
		Middle: mid,
		Lower:  mid - band,
	}, true
}
