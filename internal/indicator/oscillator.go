package indicator

import "math"

// rsiDenomFloor guards the average-loss denominator so an all-gain window
// yields RSI approaching 100 instead of a division by zero.
const rsiDenomFloor = 1e-12

// RSI computes the relative strength index with Wilder smoothing: the first
// average gain/loss is a simple mean over the window, every later value is
// the smoothed continuation.
func RSI(prices []float64, window int) []float64 {
	out := nanSlice(len(prices))
	if window <= 0 || len(prices) <= window {
		return out
	}

	var gain, loss float64
	for i := 1; i <= window; i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	avgGain := gain / float64(window)
	avgLoss := loss / float64(window)
	out[window] = rsiValue(avgGain, avgLoss)

	for i := window + 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		var g, l float64
		if delta > 0 {
			g = delta
		} else {
			l = -delta
		}
		avgGain = (avgGain*float64(window-1) + g) / float64(window)
		avgLoss = (avgLoss*float64(window-1) + l) / float64(window)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgGain < rsiDenomFloor && avgLoss < rsiDenomFloor {
		return 50 // flat window carries no information
	}
	rs := avgGain / math.Max(avgLoss, rsiDenomFloor)
	return 100 - 100/(1+rs)
}

// MACD computes the moving average convergence/divergence line, its signal
// line and the histogram (macd - signal).
func MACD(prices []float64, fast, slow, signal int) (macd, signalLine, histogram []float64) {
	n := len(prices)
	macd = nanSlice(n)
	signalLine = nanSlice(n)
	histogram = nanSlice(n)

	fastEMA := EMA(prices, fast)
	slowEMA := EMA(prices, slow)
	for i := 0; i < n; i++ {
		if !math.IsNaN(fastEMA[i]) && !math.IsNaN(slowEMA[i]) {
			macd[i] = fastEMA[i] - slowEMA[i]
		}
	}

	// The signal line is an EMA over the valid region of the MACD line.
	start := -1
	for i, v := range macd {
		if !math.IsNaN(v) {
			start = i
			break
		}
	}
	if start < 0 || n-start < signal {
		return macd, signalLine, histogram
	}
	sig := EMA(macd[start:], signal)
	for i, v := range sig {
		signalLine[start+i] = v
		if !math.IsNaN(v) {
			histogram[start+i] = macd[start+i] - v
		}
	}
	return macd, signalLine, histogram
}

// Stochastic computes the stochastic oscillator: %K smoothed over kSmooth
// bars and %D as a moving average of %K.
func Stochastic(high, low, closeP []float64, kPeriod, kSmooth, dPeriod int) (k, d []float64) {
	n := len(closeP)
	rawK := nanSlice(n)
	if kPeriod <= 0 || n < kPeriod {
		return nanSlice(n), nanSlice(n)
	}

	for i := kPeriod - 1; i < n; i++ {
		hh := math.Inf(-1)
		ll := math.Inf(1)
		for j := i - kPeriod + 1; j <= i; j++ {
			hh = math.Max(hh, high[j])
			ll = math.Min(ll, low[j])
		}
		if hh == ll {
			rawK[i] = 50 // flat window carries no information
			continue
		}
		rawK[i] = (closeP[i] - ll) / (hh - ll) * 100
	}

	k = smaOverValid(rawK, kSmooth)
	d = smaOverValid(k, dPeriod)
	return k, d
}

// smaOverValid applies SMA to the valid (non-NaN) suffix of a series,
// keeping the output aligned with the input.
func smaOverValid(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	start := -1
	for i, v := range values {
		if !math.IsNaN(v) {
			start = i
			break
		}
	}
	if start < 0 || len(values)-start < window {
		return out
	}
	smoothed := SMA(values[start:], window)
	for i, v := range smoothed {
		out[start+i] = v
	}
	return out
}
