package prices

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-analyst/internal/types"
)

type call struct {
	ticker, start, end string
	interval           types.Interval
}

type fakeSource struct {
	calls []call
	fail  map[string]bool
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Bars(ctx context.Context, ticker, start, end string, interval types.Interval) ([]types.Bar, error) {
	f.calls = append(f.calls, call{ticker, start, end, interval})
	if f.fail[ticker] {
		return nil, errors.New("boom")
	}
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return []types.Bar{
		{Date: day.AddDate(0, 0, 1), Open: 2, High: 2, Low: 2, Close: 2, AdjClose: 2, Volume: 1},
		{Date: day, Open: 1, High: 1, Low: 1, Close: 1, AdjClose: 1, Volume: 1},
	}, nil
}

func fixedClock() time.Time { return time.Date(2024, 6, 15, 13, 0, 0, 0, time.UTC) }

func TestNormalize(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "MSFT"}, Normalize([]string{"aapl", " MSFT ", "AAPL", ""}))
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, Normalize([]string{"a", "b", "c", "d", "e", "f", "g"}))
	assert.Empty(t, Normalize(nil))
}

func TestWindow(t *testing.T) {
	today := fixedClock()
	tests := []struct {
		start, end         string
		wantStart, wantEnd string
	}{
		{"", "", "2023-12-15", "2024-06-15"},
		{"2024-01-01", "", "2024-01-01", "2024-06-15"},
		{"", "2024-03-31", "2023-09-30", "2024-03-31"},
		{"2024-01-01", "2024-02-01", "2024-01-01", "2024-02-01"},
	}
	for _, tt := range tests {
		s, e, err := Window(tt.start, tt.end, today)
		require.NoError(t, err)
		assert.Equal(t, tt.wantStart, s)
		assert.Equal(t, tt.wantEnd, e)
	}

	_, _, err := Window("Jan 1", "", today)
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	src := &fakeSource{fail: map[string]bool{"BAD": true}}
	f := New(src, WithClock(fixedClock), WithRateLimit(1000, 5))

	out := f.Fetch(context.Background(), []string{"aapl", "bad", "AAPL"}, "", "", types.Weekly)
	require.Len(t, out, 2)
	require.Len(t, src.calls, 2)
	assert.Equal(t, call{"AAPL", "2023-12-15", "2024-06-15", types.Weekly}, src.calls[0])

	aapl := out["AAPL"]
	require.Equal(t, 2, aapl.Len())
	assert.Equal(t, 1.0, aapl.Value(types.ColClose, 0), "sorted ascending")
	assert.True(t, out["BAD"].Empty())
}

func TestFetchEdgeCases(t *testing.T) {
	src := &fakeSource{}
	f := New(src, WithClock(fixedClock))

	assert.Empty(t, f.Fetch(context.Background(), nil, "", "", types.Daily))

	out := f.Fetch(context.Background(), []string{"X"}, "garbage", "", types.Daily)
	assert.True(t, out["X"].Empty())
	assert.Empty(t, src.calls)

	f.Fetch(context.Background(), []string{"X"}, "", "", types.Interval("hourly"))
	require.Len(t, src.calls, 1)
	assert.Equal(t, types.Daily, src.calls[0].interval)
}

func TestFetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &fakeSource{}
	out := New(src, WithRateLimit(0.001, 1), WithClock(fixedClock)).Fetch(ctx, []string{"A", "B"}, "", "", types.Daily)
	assert.Len(t, out, 2)
	assert.True(t, out["B"].Empty())
}

func TestResample(t *testing.T) {
	nan := math.NaN()
	d := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	bars := []types.Bar{
		{Date: d(31), Open: 7, High: 8, Low: 6, Close: 7.5, AdjClose: 7.5, Volume: 5},
		{Date: d(2), Open: 1, High: 3, Low: 1, Close: 2, AdjClose: 2, Volume: 10},
		{Date: d(3), Open: 2, High: 5, Low: nan, Close: nan, AdjClose: nan, Volume: nan},
		{Date: d(9), Open: 4, High: 4, Low: 3, Close: 3.5, AdjClose: 3.5, Volume: 1},
	}

	weekly := Resample(bars, types.Weekly)
	require.Len(t, weekly, 3)
	assert.Equal(t, d(3), weekly[0].Date)
	assert.Equal(t, 1.0, weekly[0].Open)
	assert.Equal(t, 5.0, weekly[0].High)
	assert.Equal(t, 1.0, weekly[0].Low)
	assert.Equal(t, 2.0, weekly[0].Close, "missing close keeps the last valid one")
	assert.Equal(t, 10.0, weekly[0].Volume)

	monthly := Resample(bars, types.Monthly)
	require.Len(t, monthly, 1)
	assert.Equal(t, d(31), monthly[0].Date)
	assert.Equal(t, 7.5, monthly[0].Close)
	assert.Equal(t, 8.0, monthly[0].High)
	assert.Equal(t, 16.0, monthly[0].Volume)

	daily := Resample(bars, types.Daily)
	assert.Equal(t, d(2), daily[0].Date)
	assert.Len(t, daily, 4)
}
