// Package ta computes technical indicators over full price columns. Every
// function returns a new slice aligned with its input; positions without
// enough history are NaN, never zero.
package ta

import "math"

// SMA is the trailing mean over n values. A window holding a NaN is NaN.
func SMA(vals []float64, n int) []float64 {
	out := nans(len(vals))
	if n <= 0 {
		return out
	}
	sum, valid := 0.0, 0
	for i, v := range vals {
		if !math.IsNaN(v) {
			sum += v
			valid++
		}
		if i >= n {
			if old := vals[i-n]; !math.IsNaN(old) {
				sum -= old
				valid--
			}
		}
		if i >= n-1 && valid == n {
			out[i] = sum / float64(n)
		}
	}
	return out
}

// StdDev is the trailing population standard deviation (divide by n).
func StdDev(vals []float64, n int) []float64 {
	out := nans(len(vals))
	if n <= 0 {
		return out
	}
	for i := n - 1; i < len(vals); i++ {
		window := vals[i-n+1 : i+1]
		mean, ok := meanOf(window)
		if !ok {
			continue
		}
		ss := 0.0
		for _, v := range window {
			d := v - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(n))
	}
	return out
}

// EMA is the recursive exponential mean with alpha = 2/(span+1), seeded with
// the first valid value.
func EMA(vals []float64, span int) []float64 {
	return EWM(vals, 2.0/(float64(span)+1.0))
}

// EWM is a recursive exponentially weighted mean. Leading NaNs stay NaN. A
// NaN inside the series repeats the previous mean and the weight of that mean
// keeps decaying, so the next valid value is blended with (1-alpha)^gap.
func EWM(vals []float64, alpha float64) []float64 {
	out := nans(len(vals))
	mean := math.NaN()
	oldWeight := 1.0
	for i, v := range vals {
		switch {
		case math.IsNaN(mean) && math.IsNaN(v):
		case math.IsNaN(mean):
			mean = v
			oldWeight = 1.0
		case math.IsNaN(v):
			oldWeight *= 1 - alpha
		default:
			oldWeight *= 1 - alpha
			mean = (oldWeight*mean + alpha*v) / (oldWeight + alpha)
			oldWeight = 1.0
		}
		out[i] = mean
	}
	return out
}

// RSI uses Wilder smoothing (alpha = 1/period) of gains and losses. The
// first period positions are NaN.
func RSI(closes []float64, period int) []float64 {
	n := len(closes)
	if period <= 0 {
		return nans(n)
	}
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		d := closes[i] - closes[i-1]
		switch {
		case d > 0:
			gains[i] = d
		case d < 0:
			losses[i] = -d
		}
	}
	alpha := 1.0 / float64(period)
	avgGain := EWM(gains, alpha)
	avgLoss := EWM(losses, alpha)

	out := make([]float64, n)
	for i := range out {
		if i < period {
			out[i] = math.NaN()
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// MACD returns the fast-slow EMA spread, its signal EMA and the histogram.
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist []float64) {
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	line = make([]float64, len(closes))
	for i := range line {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig = EMA(line, signal)
	hist = make([]float64, len(closes))
	for i := range hist {
		hist[i] = line[i] - sig[i]
	}
	return line, sig, hist
}

// Bollinger returns SMA(n) and the bands k population deviations away.
func Bollinger(closes []float64, n int, k float64) (mid, up, low []float64) {
	mid = SMA(closes, n)
	sd := StdDev(closes, n)
	up = make([]float64, len(closes))
	low = make([]float64, len(closes))
	for i := range closes {
		up[i] = mid[i] + k*sd[i]
		low[i] = mid[i] - k*sd[i]
	}
	return mid, up, low
}

func meanOf(window []float64) (float64, bool) {
	sum := 0.0
	for _, v := range window {
		if math.IsNaN(v) {
			return 0, false
		}
		sum += v
	}
	return sum / float64(len(window)), true
}

func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
