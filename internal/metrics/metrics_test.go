package metrics

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-analyst/internal/ta"
	"equity-analyst/internal/types"
)

var nan = math.NaN()

func closeSeries(closes ...float64) *types.Series {
	bars := make([]types.Bar, len(closes))
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = types.Bar{Date: day.AddDate(0, 0, i), Open: 1, High: 1, Low: 1, Close: c, AdjClose: c, Volume: 1}
	}
	return types.FromBars(bars)
}

func withColumns(t *testing.T, s *types.Series, cols map[string][]float64) *types.Series {
	t.Helper()
	out := s.Clone()
	for name, vals := range cols {
		require.NoError(t, out.SetColumn(name, vals))
	}
	return out
}

func TestSummarizeEdgeCases(t *testing.T) {
	d := Summarize(types.EmptySeries(), types.Daily)
	assert.Equal(t, types.NoteNoData, d.Note)
	assert.Nil(t, d.PeriodStart)
	assert.Nil(t, d.PeriodEnd)

	d = Summarize(closeSeries(1, 2, 3).Without(types.ColClose), types.Daily)
	assert.Equal(t, types.NoteMissingClose, d.Note)
	assert.Equal(t, "2024-03-01", *d.PeriodStart)
	assert.Equal(t, "2024-03-03", *d.PeriodEnd)

	d = Summarize(closeSeries(42), types.Daily)
	assert.Equal(t, types.NoteInsufficient, d.Note)
	assert.Equal(t, "2024-03-01", *d.PeriodStart)
	assert.False(t, d.Complete())

	d = Summarize(closeSeries(42, nan), types.Daily)
	assert.Equal(t, types.NoteInsufficient, d.Note)
}

func TestSummarizeNumbers(t *testing.T) {
	d := Summarize(closeSeries(100, 110, 99, 121), types.Daily)
	require.True(t, d.Complete())

	assert.InDelta(t, 0.21, d.PeriodReturn, 1e-12)
	assert.InDelta(t, -0.1, d.MaxDrawdown, 1e-12)
	require.NotNil(t, d.TrendSlope)
	assert.InDelta(t, 5.2, *d.TrendSlope, 1e-12)

	returns := []float64{0.1, 99.0/110 - 1, 121.0/99 - 1}
	mean := (returns[0] + returns[1] + returns[2]) / 3
	ss := 0.0
	for _, r := range returns {
		ss += (r - mean) * (r - mean)
	}
	require.NotNil(t, d.AnnualizedVol)
	assert.InDelta(t, math.Sqrt(ss/2)*math.Sqrt(252), *d.AnnualizedVol, 1e-12)

	assert.Nil(t, d.RSILast)
	assert.Equal(t, types.MACDUnknown, d.MACDState)
	assert.Nil(t, d.BBPosition)
}

func TestSummarizeVolatilityOnlyDaily(t *testing.T) {
	assert.Nil(t, Summarize(closeSeries(100, 110, 99, 121), types.Weekly).AnnualizedVol)
	assert.Nil(t, Summarize(closeSeries(100, 110), types.Daily).AnnualizedVol, "one return has no sample deviation")
}

func TestSummarizeSkipsMissingCloses(t *testing.T) {
	d := Summarize(closeSeries(nan, 100, nan, 120), types.Daily)
	require.True(t, d.Complete())
	assert.InDelta(t, 0.2, d.PeriodReturn, 1e-12)
	assert.Equal(t, "2024-03-01", *d.PeriodStart)
}

func TestSummarizeSkipsNonPositiveCloses(t *testing.T) {
	d := Summarize(closeSeries(0, 100, -5, 110, math.Inf(1), 121), types.Daily)
	require.True(t, d.Complete())
	assert.InDelta(t, 0.21, d.PeriodReturn, 1e-12)
	require.NotNil(t, d.AnnualizedVol)
	assert.False(t, math.IsInf(*d.AnnualizedVol, 0) || math.IsNaN(*d.AnnualizedVol))

	_, err := json.Marshal(d)
	require.NoError(t, err)

	d = Summarize(closeSeries(0, 0, 0), types.Daily)
	assert.Equal(t, types.NoteInsufficient, d.Note)
}

func TestSummarizeMonotonic(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 50 + float64(i)*float64(i)*0.1
	}
	s, err := ta.Compute(closeSeries(closes...))
	require.NoError(t, err)

	d := Summarize(s, types.Daily)
	assert.Equal(t, 0.0, d.MaxDrawdown)
	require.NotNil(t, d.TrendSlope)
	assert.Greater(t, *d.TrendSlope, 0.0)
	require.NotNil(t, d.RSILast)
	assert.InDelta(t, 100, *d.RSILast, 1e-9)
}

func TestMACDState(t *testing.T) {
	base := closeSeries(1, 2, 3, 4)
	tests := []struct {
		name   string
		macd   []float64
		signal []float64
		want   string
	}{
		{"cross up", []float64{0, 0, -1, 1}, []float64{0, 0, 0, 0}, types.MACDCrossUp},
		{"cross up from zero", []float64{0, 0, 0, 1}, []float64{0, 0, 0, 0}, types.MACDCrossUp},
		{"cross down", []float64{0, 0, 2, 1}, []float64{0, 0, 1, 1}, types.MACDCrossDown},
		{"above", []float64{0, 0, 2, 3}, []float64{0, 0, 1, 1}, types.MACDAbove},
		{"below", []float64{0, 0, -2, -3}, []float64{0, 0, 0, 0}, types.MACDBelow},
		{"flat", []float64{0, 0, -1, 0}, []float64{0, 0, 0, 0}, types.MACDFlat},
		{"aligned pairs skip gaps", []float64{1, nan, -1, 2}, []float64{0, 0, nan, 1}, types.MACDAbove},
		{"one aligned pair", []float64{nan, nan, nan, 2}, []float64{0, 0, 0, 1}, types.MACDUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := withColumns(t, base, map[string][]float64{ta.ColMACD: tt.macd, ta.ColMACDSignal: tt.signal})
			assert.Equal(t, tt.want, MACDState(s))
		})
	}

	assert.Equal(t, types.MACDUnknown, MACDState(base))
}

func TestBBPosition(t *testing.T) {
	tests := []struct {
		name  string
		close float64
		low   float64
		high  float64
		want  string
	}{
		{"above upper", 11, 0, 10, types.BBAboveUpper},
		{"below lower", -1, 0, 10, types.BBBelowLower},
		{"near upper", 9.5, 0, 10, types.BBNearUpper},
		{"near lower", 0.5, 0, 10, types.BBNearLower},
		{"inside", 5, 0, 10, types.BBInside},
		{"on the upper band", 10, 0, 10, types.BBNearUpper},
		{"zero width", 5, 5, 5, types.BBInside},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := withColumns(t, closeSeries(1, tt.close), map[string][]float64{
				ta.ColBBLow:  {nan, tt.low},
				ta.ColBBHigh: {nan, tt.high},
			})
			got := BBPosition(s)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}

	s := withColumns(t, closeSeries(1, 2), map[string][]float64{
		ta.ColBBLow:  {0, nan},
		ta.ColBBHigh: {10, nan},
	})
	assert.Nil(t, BBPosition(s), "latest row without bands")
	assert.Nil(t, BBPosition(closeSeries(1, 2)))
}

func TestRSILastSkipsTrailingGaps(t *testing.T) {
	s := withColumns(t, closeSeries(1, 2, 3), map[string][]float64{ta.RSI14: {nan, 40, nan}})
	d := Summarize(s, types.Daily)
	require.NotNil(t, d.RSILast)
	assert.Equal(t, 40.0, *d.RSILast)
}

func TestDigestJSON(t *testing.T) {
	b, err := json.Marshal(Summarize(closeSeries(42), types.Daily))
	require.NoError(t, err)
	assert.JSONEq(t, `{"period_start":"2024-03-01","period_end":"2024-03-01","note":"insufficient data"}`, string(b))

	b, err = json.Marshal(Summarize(closeSeries(100, 110, 121), types.Weekly))
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Contains(t, got, "annualized_vol")
	assert.Nil(t, got["annualized_vol"])
	assert.Equal(t, "unknown", got["macd_state"])
	assert.NotContains(t, got, "note")
}
