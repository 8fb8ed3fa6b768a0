package types

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Canonical price columns carried by every series, empty or not.
const (
	ColOpen     = "Open"
	ColHigh     = "High"
	ColLow      = "Low"
	ColClose    = "Close"
	ColAdjClose = "Adj Close"
	ColVolume   = "Volume"
)

// PriceColumns lists the canonical columns in frame order.
var PriceColumns = []string{ColOpen, ColHigh, ColLow, ColClose, ColAdjClose, ColVolume}

// Bar is a single OHLCV row. Missing values are NaN.
type Bar struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// Series is a date-indexed frame of float columns. The index is strictly
// increasing and timezone-naive (UTC midnight for daily data).
type Series struct {
	dates   []time.Time
	names   []string
	columns map[string][]float64
}

// NewSeries returns a frame over the given index with no columns.
func NewSeries(dates []time.Time) *Series {
	d := make([]time.Time, len(dates))
	copy(d, dates)
	return &Series{dates: d, columns: make(map[string][]float64)}
}

// EmptySeries returns a zero-row frame with the canonical price columns.
func EmptySeries() *Series {
	s := NewSeries(nil)
	for _, name := range PriceColumns {
		s.names = append(s.names, name)
		s.columns[name] = []float64{}
	}
	return s
}

// FromBars builds a canonical price frame. Bars are sorted ascending, a
// repeated date keeps the last bar, and rows with every OHLCV value missing
// are dropped.
func FromBars(bars []Bar) *Series {
	sorted := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if allNaN(b.Open, b.High, b.Low, b.Close, b.Volume) {
			continue
		}
		b.Date = naive(b.Date)
		sorted = append(sorted, b)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	dedup := sorted[:0]
	for _, b := range sorted {
		if n := len(dedup); n > 0 && dedup[n-1].Date.Equal(b.Date) {
			dedup[n-1] = b
			continue
		}
		dedup = append(dedup, b)
	}

	s := EmptySeries()
	for _, b := range dedup {
		s.dates = append(s.dates, b.Date)
		s.columns[ColOpen] = append(s.columns[ColOpen], b.Open)
		s.columns[ColHigh] = append(s.columns[ColHigh], b.High)
		s.columns[ColLow] = append(s.columns[ColLow], b.Low)
		s.columns[ColClose] = append(s.columns[ColClose], b.Close)
		s.columns[ColAdjClose] = append(s.columns[ColAdjClose], b.AdjClose)
		s.columns[ColVolume] = append(s.columns[ColVolume], b.Volume)
	}
	return s
}

// Len returns the number of rows.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.dates)
}

// Empty reports whether the series has no rows.
func (s *Series) Empty() bool { return s.Len() == 0 }

// Dates returns a copy of the index.
func (s *Series) Dates() []time.Time {
	out := make([]time.Time, len(s.dates))
	copy(out, s.dates)
	return out
}

// Date returns the i-th index value.
func (s *Series) Date(i int) time.Time { return s.dates[i] }

// Columns returns column names in insertion order.
func (s *Series) Columns() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Has reports whether the named column exists.
func (s *Series) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.columns[name]
	return ok
}

// Column returns a copy of the named column.
func (s *Series) Column(name string) ([]float64, bool) {
	col, ok := s.columns[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, true
}

// Value returns the named column at row i, NaN when the column is absent.
func (s *Series) Value(name string, i int) float64 {
	col, ok := s.columns[name]
	if !ok || i < 0 || i >= len(col) {
		return math.NaN()
	}
	return col[i]
}

// SetColumn adds or replaces a column. The length must match the index.
func (s *Series) SetColumn(name string, values []float64) error {
	if len(values) != len(s.dates) {
		return fmt.Errorf("column %q has %d values, index has %d", name, len(values), len(s.dates))
	}
	if _, ok := s.columns[name]; !ok {
		s.names = append(s.names, name)
	}
	col := make([]float64, len(values))
	copy(col, values)
	s.columns[name] = col
	return nil
}

// Without returns a copy of the series lacking the named column.
func (s *Series) Without(name string) *Series {
	out := s.Clone()
	if _, ok := out.columns[name]; !ok {
		return out
	}
	delete(out.columns, name)
	names := out.names[:0]
	for _, n := range out.names {
		if n != name {
			names = append(names, n)
		}
	}
	out.names = names
	return out
}

// Clone deep-copies the series.
func (s *Series) Clone() *Series {
	if s == nil {
		return EmptySeries()
	}
	out := NewSeries(s.dates)
	out.names = append([]string(nil), s.names...)
	for name, col := range s.columns {
		c := make([]float64, len(col))
		copy(c, col)
		out.columns[name] = c
	}
	return out
}

// Bars returns the canonical price columns as rows.
func (s *Series) Bars() []Bar {
	bars := make([]Bar, s.Len())
	for i := range bars {
		bars[i] = Bar{
			Date:     s.dates[i],
			Open:     s.Value(ColOpen, i),
			High:     s.Value(ColHigh, i),
			Low:      s.Value(ColLow, i),
			Close:    s.Value(ColClose, i),
			AdjClose: s.Value(ColAdjClose, i),
			Volume:   s.Value(ColVolume, i),
		}
	}
	return bars
}

func naive(t time.Time) time.Time {
	y, m, d := t.Date()
	h, mi, sec := t.Clock()
	return time.Date(y, m, d, h, mi, sec, t.Nanosecond(), time.UTC)
}

func allNaN(vals ...float64) bool {
	for _, v := range vals {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}
