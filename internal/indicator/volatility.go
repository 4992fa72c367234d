package indicator

import "math"

// Bollinger computes Bollinger bands: the middle band is an SMA, the upper
// and lower bands sit numStd sample standard deviations away from it.
func Bollinger(prices []float64, window int, numStd float64) (middle, upper, lower []float64) {
	n := len(prices)
	middle = SMA(prices, window)
	upper = nanSlice(n)
	lower = nanSlice(n)
	if window <= 1 || n < window {
		return middle, upper, lower
	}

	for i := window - 1; i < n; i++ {
		mean := middle[i]
		var variance float64
		for j := i - window + 1; j <= i; j++ {
			d := prices[j] - mean
			variance += d * d
		}
		std := math.Sqrt(variance / float64(window-1))
		upper[i] = mean + std*numStd
		lower[i] = mean - std*numStd
	}
	return middle, upper, lower
}
