package ta

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-analyst/internal/types"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f)", label, got, want, tol)
	}
}

func assertSeries(t *testing.T, label string, got, want []float64) {
	t.Helper()
	require.Len(t, got, len(want), label)
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.True(t, math.IsNaN(got[i]), "%s[%d]: want NaN, got %v", label, i, got[i])
			continue
		}
		assertClose(t, label, got[i], want[i], 1e-9)
	}
}

var nan = math.NaN()

func TestSMA(t *testing.T) {
	assertSeries(t, "sma3", SMA([]float64{1, 2, 3, 4, 5}, 3), []float64{nan, nan, 2, 3, 4})
	assertSeries(t, "sma2 gap", SMA([]float64{1, nan, 3, 4, 5, 6}, 2), []float64{nan, nan, nan, 3.5, 4.5, 5.5})
	assertSeries(t, "short input", SMA([]float64{1, 2}, 5), []float64{nan, nan})
}

func TestStdDevIsPopulation(t *testing.T) {
	got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 8)
	assertClose(t, "pop std", got[7], 2.0, 1e-12)
	assert.True(t, math.IsNaN(got[6]))
}

func TestEWM(t *testing.T) {
	assertSeries(t, "ema span 3", EMA([]float64{1, 2, 3}, 3), []float64{1, 1.5, 2.25})
	assertSeries(t, "leading nan", EWM([]float64{nan, 2, 4}, 0.5), []float64{nan, 2, 3})
	assertSeries(t, "inner nan decays", EWM([]float64{1, nan, 3}, 0.5), []float64{1, 1, 1.75 / 0.75})
}

func TestRSI(t *testing.T) {
	up := make([]float64, 30)
	down := make([]float64, 30)
	flat := make([]float64, 30)
	for i := range up {
		up[i] = 100 + float64(i)
		down[i] = 100 - float64(i)
		flat[i] = 50
	}

	r := RSI(up, 14)
	for i := 0; i < 14; i++ {
		assert.True(t, math.IsNaN(r[i]), "warm-up position %d", i)
	}
	assertClose(t, "all gains", r[14], 100, 1e-9)
	assertClose(t, "all losses", RSI(down, 14)[29], 0, 1e-9)
	assert.True(t, math.IsNaN(RSI(flat, 14)[29]), "no movement is undefined")

	mixed := []float64{44, 44.5, 44.1, 44.6, 45.2, 45.1, 45.6, 46, 45.9, 46.2, 46.5, 46.1, 46.6, 46.8, 46.4, 46.9}
	m := RSI(mixed, 14)
	assert.True(t, m[14] > 50 && m[14] < 100, "mostly rising series, got %v", m[14])
}

func TestMACDHistogramIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		closes := randomWalk(rng, 40+rng.Intn(200))
		line, sig, hist := MACD(closes, 12, 26, 9)
		for i := range closes {
			assertClose(t, "hist", hist[i], line[i]-sig[i], 1e-12)
		}
	}
}

func TestBollingerConstantSeries(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 10
	}
	mid, up, low := Bollinger(closes, 20, 2)
	assert.True(t, math.IsNaN(mid[18]))
	assertClose(t, "mid", mid[24], 10, 1e-12)
	assertClose(t, "up", up[24], 10, 1e-12)
	assertClose(t, "low", low[24], 10, 1e-12)
}

func TestCompute(t *testing.T) {
	s := series(randomWalk(rand.New(rand.NewSource(1)), 60))
	before := s.Columns()

	out, err := Compute(s)
	require.NoError(t, err)
	assert.Equal(t, before, s.Columns(), "input must not gain columns")

	for _, c := range []string{SMA20, SMA50, EMA20, RSI14, ColMACD, ColMACDSignal, ColMACDHist, ColBBMid, ColBBHigh, ColBBLow} {
		assert.True(t, out.Has(c), c)
	}

	warmup := map[string]int{SMA20: 19, SMA50: 49, RSI14: 14, ColBBMid: 19, EMA20: 0, ColMACD: 0}
	for col, n := range warmup {
		vals, _ := out.Column(col)
		for i := 0; i < n; i++ {
			assert.True(t, math.IsNaN(vals[i]), "%s[%d] should be warm-up NaN", col, i)
		}
		assert.False(t, math.IsNaN(vals[n]), "%s[%d] should be defined", col, n)
	}
}

func TestComputeSubset(t *testing.T) {
	s := series(randomWalk(rand.New(rand.NewSource(3)), 30))
	out, err := Compute(s, MACDId)
	require.NoError(t, err)
	assert.True(t, out.Has(ColMACDHist))
	assert.False(t, out.Has(SMA20))

	line, _ := out.Column(ColMACD)
	sig, _ := out.Column(ColMACDSignal)
	hist, _ := out.Column(ColMACDHist)
	for i := range hist {
		assertClose(t, "hist", hist[i], line[i]-sig[i], 1e-12)
	}
}

func TestComputeErrors(t *testing.T) {
	s := series([]float64{1, 2, 3})

	_, err := Compute(s.Without(types.ColClose))
	assert.ErrorIs(t, err, ErrMissingClose)

	_, err = Compute(s, SMA20, "vwap", "obv")
	var unsupported *UnsupportedIndicatorError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, []string{"obv", "vwap"}, unsupported.Names)

	out, err := Compute(types.EmptySeries())
	require.NoError(t, err)
	assert.True(t, out.Empty())
	assert.True(t, out.Has(RSI14))
}

func randomWalk(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	p := 100.0
	for i := range out {
		p *= 1 + (rng.Float64()-0.5)*0.04
		out[i] = p
	}
	return out
}

func series(closes []float64) *types.Series {
	bars := make([]types.Bar, len(closes))
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = types.Bar{Date: day.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, AdjClose: c, Volume: 1000}
	}
	return types.FromBars(bars)
}
