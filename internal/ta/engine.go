package ta

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"equity-analyst/internal/types"
)

// Indicator names accepted by Compute.
const (
	SMA20  = "sma20"
	SMA50  = "sma50"
	EMA20  = "ema20"
	RSI14  = "rsi14"
	MACDId = "macd"
	BBands = "bbands"
)

// Output columns appended by Compute.
const (
	ColMACD       = "macd"
	ColMACDSignal = "macd_signal"
	ColMACDHist   = "macd_hist"
	ColBBMid      = "bb_mid"
	ColBBHigh     = "bb_high"
	ColBBLow      = "bb_low"
)

// Supported lists every indicator in computation order.
var Supported = []string{SMA20, SMA50, EMA20, RSI14, MACDId, BBands}

// ErrMissingClose is returned for a series without a Close column.
var ErrMissingClose = errors.New("series must contain a Close column for indicator computation")

// UnsupportedIndicatorError names indicators outside Supported.
type UnsupportedIndicatorError struct {
	Names []string
}

func (e *UnsupportedIndicatorError) Error() string {
	return fmt.Sprintf("unsupported indicator(s): [%s]; supported: [%s]",
		strings.Join(e.Names, ", "), strings.Join(Supported, ", "))
}

// Compute returns a copy of s with the named indicator columns appended.
// With no names every supported indicator is computed. The input is never
// modified.
func Compute(s *types.Series, names ...string) (*types.Series, error) {
	if s == nil || !s.Has(types.ColClose) {
		return nil, ErrMissingClose
	}
	if len(names) == 0 {
		names = Supported
	}
	if err := checkNames(names); err != nil {
		return nil, err
	}

	out := s.Clone()
	closes, _ := out.Column(types.ColClose)
	for _, name := range names {
		cols := columnsFor(name, closes)
		for _, c := range cols {
			if err := out.SetColumn(c.name, c.values); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

type column struct {
	name   string
	values []float64
}

func columnsFor(name string, closes []float64) []column {
	switch name {
	case SMA20:
		return []column{{SMA20, SMA(closes, 20)}}
	case SMA50:
		return []column{{SMA50, SMA(closes, 50)}}
	case EMA20:
		return []column{{EMA20, EMA(closes, 20)}}
	case RSI14:
		return []column{{RSI14, RSI(closes, 14)}}
	case MACDId:
		line, sig, hist := MACD(closes, 12, 26, 9)
		return []column{{ColMACD, line}, {ColMACDSignal, sig}, {ColMACDHist, hist}}
	case BBands:
		mid, up, low := Bollinger(closes, 20, 2)
		return []column{{ColBBMid, mid}, {ColBBHigh, up}, {ColBBLow, low}}
	}
	return nil
}

func checkNames(names []string) error {
	known := make(map[string]bool, len(Supported))
	for _, n := range Supported {
		known[n] = true
	}
	var bad []string
	for _, n := range names {
		if !known[n] {
			bad = append(bad, n)
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return &UnsupportedIndicatorError{Names: bad}
	}
	return nil
}
