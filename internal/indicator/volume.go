package indicator

// VolumeRatio compares the latest volume with the mean of all preceding
// volumes: last / mean(all-but-last), rounded to 2 decimals.
//
// Needs at least 2 samples; fails closed when the preceding mean is zero.
func VolumeRatio(volumes []float64) (float64, bool) {
	if len(volumes) < 2 {
		return 0, false
	}

	avg := mean(volumes[:len(volumes)-1])
	if avg == 0 {
		return 0, false
	}
	return Round2(volumes[len(volumes)-1] / avg), true
}
