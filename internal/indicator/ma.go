package indicator

import "math"

// All indicator functions return slices aligned 1:1 with the input. Entries
// for which the lookback window is not yet filled are NaN; strategies must
// exclude them from signal generation.

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA computes a simple moving average over the given window.
func SMA(prices []float64, window int) []float64 {
	out := nanSlice(len(prices))
	if window <= 0 || len(prices) < window {
		return out
	}

	var sum float64
	for i := 0; i < window; i++ {
		sum += prices[i]
	}
	out[window-1] = sum / float64(window)

	for i := window; i < len(prices); i++ {
		sum += prices[i] - prices[i-window]
		out[i] = sum / float64(window)
	}
	return out
}

// EMA computes an exponential moving average, seeded with the SMA of the
// first window values.
func EMA(prices []float64, window int) []float64 {
	out := nanSlice(len(prices))
	if window <= 0 || len(prices) < window {
		return out
	}

	var sum float64
	for i := 0; i < window; i++ {
		sum += prices[i]
	}
	ema := sum / float64(window)
	out[window-1] = ema

	multiplier := 2.0 / float64(window+1)
	for i := window; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
		out[i] = ema
	}
	return out
}

// WMA computes a linearly weighted moving average where the most recent
// price carries the highest weight.
func WMA(prices []float64, window int) []float64 {
	out := nanSlice(len(prices))
	if window <= 0 || len(prices) < window {
		return out
	}

	denom := float64(window*(window+1)) / 2
	for i := window - 1; i < len(prices); i++ {
		var weighted float64
		for j := 0; j < window; j++ {
			weighted += prices[i-window+1+j] * float64(j+1)
		}
		out[i] = weighted / denom
	}
	return out
}
