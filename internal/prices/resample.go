package prices

import (
	"math"
	"sort"
	"time"

	"equity-analyst/internal/types"
)

// Resample folds daily bars into weekly (ISO week) or monthly buckets. A
// bucket is dated by its last bar: open is the first open, high and low are
// extremes, close and adjusted close are the last values, volume is summed.
// Daily input is returned sorted and otherwise untouched.
func Resample(bars []types.Bar, interval types.Interval) []types.Bar {
	sorted := append([]types.Bar(nil), bars...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	if interval != types.Weekly && interval != types.Monthly {
		return sorted
	}

	key := func(t time.Time) [2]int {
		if interval == types.Weekly {
			y, w := t.ISOWeek()
			return [2]int{y, w}
		}
		return [2]int{t.Year(), int(t.Month())}
	}

	var out []types.Bar
	var cur types.Bar
	var curKey [2]int
	open := false
	for _, b := range sorted {
		k := key(b.Date)
		if !open || k != curKey {
			if open {
				out = append(out, cur)
			}
			cur, curKey, open = b, k, true
			continue
		}
		cur.Date = b.Date
		if math.IsNaN(cur.Open) {
			cur.Open = b.Open
		}
		cur.High = nanMax(cur.High, b.High)
		cur.Low = nanMin(cur.Low, b.Low)
		if !math.IsNaN(b.Close) {
			cur.Close = b.Close
		}
		if !math.IsNaN(b.AdjClose) {
			cur.AdjClose = b.AdjClose
		}
		cur.Volume = nanSum(cur.Volume, b.Volume)
	}
	if open {
		out = append(out, cur)
	}
	return out
}

func nanMax(a, b float64) float64 {
	if math.IsNaN(a) {
		return b
	}
	if math.IsNaN(b) {
		return a
	}
	return math.Max(a, b)
}

func nanMin(a, b float64) float64 {
	if math.IsNaN(a) {
		return b
	}
	if math.IsNaN(b) {
		return a
	}
	return math.Min(a, b)
}

func nanSum(a, b float64) float64 {
	if math.IsNaN(a) {
		return b
	}
	if math.IsNaN(b) {
		return a
	}
	return a + b
}
