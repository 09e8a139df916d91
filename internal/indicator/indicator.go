// Package indicator provides technical indicator calculations over ordered
// price/volume sequences.
//
// All functions are pure and side-effect-free. Each fails closed: when the
// input window has too few samples the second return value is false and the
// result must be ignored. Inputs are oldest-first.
package indicator

import "math"

// Round2 rounds to 2 decimal places, the reporting precision used
// throughout the monitor.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// stddev is the population standard deviation (divide by n, not n-1).
func stddev(vals []float64, m float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)))
}
