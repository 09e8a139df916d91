package indicator

// EMA computes an Exponential Moving Average sequence the same length as
// the input. The first element seeds to the first price (no warm-up blank);
// subsequent elements use multiplier 2/(period+1).
func EMA(prices []float64, period int) []float64 {
	if len(prices) == 0 || period <= 0 {
		return nil
	}

	k := 2.0 / float64(period+1)
	out := make([]float64, len(prices))
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = prices[i]*k + out[i-1]*(1-k)
	}
	return out
}
