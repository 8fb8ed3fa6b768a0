// Package metrics reduces a price and indicator series to a small digest.
package metrics

import (
	"math"

	"equity-analyst/internal/ta"
	"equity-analyst/internal/timeframe"
	"equity-analyst/internal/types"
)

// TradingDays annualizes daily volatility.
const TradingDays = 252

// nearBand is the fraction of band width that counts as "near" a band.
const nearBand = 0.1

// Summarize builds the digest for one ticker. It never fails: incomplete
// inputs produce a digest whose Note says why.
func Summarize(s *types.Series, interval types.Interval) types.Digest {
	if s.Empty() {
		return types.Digest{Note: types.NoteNoData}
	}

	start := s.Date(0).Format(timeframe.DateLayout)
	end := s.Date(s.Len() - 1).Format(timeframe.DateLayout)
	d := types.Digest{PeriodStart: &start, PeriodEnd: &end}

	if !s.Has(types.ColClose) {
		d.Note = types.NoteMissingClose
		return d
	}
	closes := validCloses(s)
	if s.Len() < 2 || len(closes) < 2 {
		d.Note = types.NoteInsufficient
		return d
	}

	d.PeriodReturn = closes[len(closes)-1]/closes[0] - 1
	if interval == types.Daily {
		d.AnnualizedVol = annualizedVol(closes)
	}
	d.MaxDrawdown = maxDrawdown(closes)
	d.TrendSlope = slope(closes)
	d.RSILast = lastValid(s, ta.RSI14)
	d.MACDState = MACDState(s)
	d.BBPosition = BBPosition(s)
	return d
}

// MACDState classifies the last two rows where both MACD and its signal are
// defined.
func MACDState(s *types.Series) string {
	if !s.Has(ta.ColMACD) || !s.Has(ta.ColMACDSignal) {
		return types.MACDUnknown
	}
	var diffs []float64
	for i := s.Len() - 1; i >= 0 && len(diffs) < 2; i-- {
		m, sig := s.Value(ta.ColMACD, i), s.Value(ta.ColMACDSignal, i)
		if math.IsNaN(m) || math.IsNaN(sig) {
			continue
		}
		diffs = append(diffs, m-sig)
	}
	if len(diffs) < 2 {
		return types.MACDUnknown
	}
	curr, prev := diffs[0], diffs[1]
	switch {
	case prev <= 0 && curr > 0:
		return types.MACDCrossUp
	case prev > 0 && curr <= 0:
		return types.MACDCrossDown
	case curr > 0:
		return types.MACDAbove
	case curr < 0:
		return types.MACDBelow
	default:
		return types.MACDFlat
	}
}

// BBPosition places the latest close relative to the Bollinger bands. It is
// nil when the latest row lacks the close or either band.
func BBPosition(s *types.Series) *string {
	if s.Empty() || !s.Has(ta.ColBBHigh) || !s.Has(ta.ColBBLow) || !s.Has(types.ColClose) {
		return nil
	}
	last := s.Len() - 1
	c := s.Value(types.ColClose, last)
	high := s.Value(ta.ColBBHigh, last)
	low := s.Value(ta.ColBBLow, last)
	if math.IsNaN(c) || math.IsNaN(high) || math.IsNaN(low) {
		return nil
	}

	pos := types.BBInside
	switch {
	case c > high:
		pos = types.BBAboveUpper
	case c < low:
		pos = types.BBBelowLower
	default:
		width := high - low
		if width == 0 {
			break
		}
		if (high-c)/width < nearBand {
			pos = types.BBNearUpper
		} else if (c-low)/width < nearBand {
			pos = types.BBNearLower
		}
	}
	return &pos
}

// annualizedVol is the sample deviation of simple returns scaled by
// sqrt(252). Fewer than two returns leave it undefined.
func annualizedVol(closes []float64) *float64 {
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	if len(returns) < 2 {
		return nil
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	ss := 0.0
	for _, r := range returns {
		ss += (r - mean) * (r - mean)
	}
	vol := math.Sqrt(ss/float64(len(returns)-1)) * math.Sqrt(TradingDays)
	return &vol
}

func maxDrawdown(closes []float64) float64 {
	peak := closes[0]
	worst := 0.0
	for _, c := range closes {
		if c > peak {
			peak = c
		}
		if dd := c/peak - 1; dd < worst {
			worst = dd
		}
	}
	return worst
}

// slope is the least-squares slope of closes against 0..n-1.
func slope(closes []float64) *float64 {
	n := float64(len(closes))
	if n < 2 {
		return nil
	}
	xMean := (n - 1) / 2
	yMean := 0.0
	for _, c := range closes {
		yMean += c
	}
	yMean /= n
	num, den := 0.0, 0.0
	for i, c := range closes {
		dx := float64(i) - xMean
		num += dx * (c - yMean)
		den += dx * dx
	}
	b := num / den
	return &b
}

// validCloses drops missing, non-positive and infinite closes so returns and
// drawdowns stay finite.
func validCloses(s *types.Series) []float64 {
	vals, _ := s.Column(types.ColClose)
	out := vals[:0]
	for _, v := range vals {
		if v > 0 && !math.IsInf(v, 1) {
			out = append(out, v)
		}
	}
	return out
}

func lastValid(s *types.Series, col string) *float64 {
	if !s.Has(col) {
		return nil
	}
	for i := s.Len() - 1; i >= 0; i-- {
		if v := s.Value(col, i); !math.IsNaN(v) {
			return &v
		}
	}
	return nil
}
