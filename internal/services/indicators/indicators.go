// Package indicators holds the stateless technical-signal functions the
// feature engineer is built on. Every function is pure over an ordered
// series; warm-up ranges follow the conventions below instead of emitting
// synthetic lookback.
package indicators

import "math"

// Returns computes simple daily returns. Index 0 is always 0; a zero
// previous close also yields 0 instead of dividing by zero.
func Returns(prices []float64) []float64 {
	out := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			out[i] = 0
			continue
		}
		out[i] = (prices[i] - prices[i-1]) / prices[i-1]
	}
	return out
}

// SMA computes the simple moving average. Indices before period-1 carry the
// raw value unchanged; from period-1 on, the arithmetic mean of the trailing
// period values.
func SMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if period <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i < period-1 {
			out[i] = v
			continue
		}
		if i >= period {
			sum -= values[i-period]
		}
		out[i] = sum / float64(period)
	}
	return out
}

// RSI computes the relative strength index with Wilder smoothing.
// Index 0 seeds at 50; the warm-up range divides cumulative average
// gain/loss by period. avgLoss of zero pins RSI at 100.
func RSI(prices []float64, period int) []float64 {
	if period <= 0 {
		period = 14
	}
	out := make([]float64, len(prices))
	if len(prices) == 0 {
		return out
	}
	out[0] = 50

	var avgGain, avgLoss float64
	var cumGain, cumLoss float64
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		if i <= period {
			cumGain += gain
			cumLoss += loss
			avgGain = cumGain / float64(period)
			avgLoss = cumLoss / float64(period)
			if i < period {
				out[i] = 50
				continue
			}
		} else {
			avgGain = (avgGain*float64(period-1) + gain) / float64(period)
			avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		}

		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// VolumeSMA is the moving average of volume with the same warm-up
// convention as SMA.
func VolumeSMA(volumes []float64, period int) []float64 {
	return SMA(volumes, period)
}

// VolumeRatio divides current volume by its trailing average (default
// 20-day). A zero average yields 1 rather than blowing up.
func VolumeRatio(volumes []float64, period int) []float64 {
	avg := VolumeSMA(volumes, period)
	out := make([]float64, len(volumes))
	for i, v := range volumes {
		if avg[i] == 0 {
			out[i] = 1
			continue
		}
		out[i] = v / avg[i]
	}
	return out
}

// OBV computes on-balance volume: cumulative, seeded at 0, adding volume on
// up days, subtracting on down days, unchanged on flat days.
func OBV(prices, volumes []float64) []float64 {
	out := make([]float64, len(prices))
	for i := 1; i < len(prices) && i < len(volumes); i++ {
		switch {
		case prices[i] > prices[i-1]:
			out[i] = out[i-1] + volumes[i]
		case prices[i] < prices[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// Volatility is the sample standard deviation of the trailing window of
// returns ending at the last index. Fewer observations than window yields 0.
func Volatility(returns []float64, window int) float64 {
	if window <= 1 || len(returns) < window {
		return 0
	}
	sum, sum2 := 0.0, 0.0
	for i := len(returns) - window; i < len(returns); i++ {
		sum += returns[i]
		sum2 += returns[i] * returns[i]
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}
