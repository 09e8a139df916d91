package indicator

import "stockwatch/internal/model"

// Standard MACD parameters.
const (
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

// MACD computes the latest DIF/DEA/histogram values.
//
// DIF is the fast EMA minus the slow EMA per point, DEA the signal-period
// EMA of DIF, and the histogram 2×(DIF−DEA) at the latest point. Needs at
// least slow+signal prices.
func MACD(prices []float64, fast, slow, signal int) (model.MACD, bool) {
	if len(prices) < slow+signal {
		return model.MACD{}, false
	}

	emaFast := EMA(prices, fast)
	emaSlow := EMA(prices, slow)

	// Align by trimming to the shorter length from the tail. With
	// full-length EMA sequences this is a no-op; kept as a guard for
	// pre-trimmed inputs.
	n := len(emaFast)
	if len(emaSlow) < n {
		n = len(emaSlow)
	}
	emaFast = emaFast[len(emaFast)-n:]
	emaSlow = emaSlow[len(emaSlow)-n:]

	dif := make([]float64, n)
	for i := 0; i < n; i++ {
		dif[i] = emaFast[i] - emaSlow[i]
	}

	dea := EMA(dif, signal)

	lastDIF := dif[n-1]
	lastDEA := dea[len(dea)-1]
	return model.MACD{
		DIF:  lastDIF,
		DEA:  lastDEA,
		Hist: 2 * (lastDIF - lastDEA),
	}, true
}
