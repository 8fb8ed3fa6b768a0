// Package prices turns a bar source into the never-failing batch fetcher the
// tools step consumes.
package prices

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"equity-analyst/internal/interfaces"
	"equity-analyst/internal/logger"
	"equity-analyst/internal/plan"
	"equity-analyst/internal/timeframe"
	"equity-analyst/internal/types"
)

// FetchError records a ticker that could not be loaded.
type FetchError struct {
	Ticker string
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s from %s: %v", e.Ticker, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher loads tickers one after another from a single source.
type Fetcher struct {
	source  interfaces.PriceSource
	limiter *rate.Limiter
	now     func() time.Time
}

var _ interfaces.PriceFetcher = (*Fetcher)(nil)

type Option func(*Fetcher)

// WithRateLimit spaces out calls to the source.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(f *Fetcher) {
		if perSecond > 0 {
			f.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
		}
	}
}

// WithClock overrides the date used when no window is given.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

func New(source interfaces.PriceSource, opts ...Option) *Fetcher {
	f := &Fetcher{source: source, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Normalize uppercases and dedupes tickers in order of first appearance and
// keeps at most plan.MaxTickersPerCall of them.
func Normalize(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == plan.MaxTickersPerCall {
			break
		}
	}
	return out
}

// Window fills a missing side of [start, end]. With neither side the window
// is the last six months up to today; a missing end is today; a missing
// start is six months before end.
func Window(start, end string, today time.Time) (string, string, error) {
	if end == "" {
		end = today.Format(timeframe.DateLayout)
	}
	endDate, err := time.Parse(timeframe.DateLayout, end)
	if err != nil {
		return "", "", fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if start == "" {
		start = timeframe.AddMonths(endDate, -timeframe.DefaultMonths).Format(timeframe.DateLayout)
	}
	if _, err := time.Parse(timeframe.DateLayout, start); err != nil {
		return "", "", fmt.Errorf("invalid start date %q: %w", start, err)
	}
	return start, end, nil
}

// Fetch returns exactly one series per normalized ticker. Failures are logged
// and replaced by an empty series.
func (f *Fetcher) Fetch(ctx context.Context, tickers []string, start, end string, interval types.Interval) map[string]*types.Series {
	tickers = Normalize(tickers)
	out := make(map[string]*types.Series, len(tickers))
	if len(tickers) == 0 {
		return out
	}
	if !interval.Valid() {
		interval = types.Daily
	}

	start, end, err := Window(start, end, f.now())
	if err != nil {
		for _, t := range tickers {
			f.fail(ctx, t, err)
			out[t] = types.EmptySeries()
		}
		return out
	}

	for _, t := range tickers {
		out[t] = f.fetchOne(ctx, t, start, end, interval)
	}
	return out
}

func (f *Fetcher) fetchOne(ctx context.Context, ticker, start, end string, interval types.Interval) *types.Series {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			f.fail(ctx, ticker, err)
			return types.EmptySeries()
		}
	}
	bars, err := f.source.Bars(ctx, ticker, start, end, interval)
	if err != nil {
		f.fail(ctx, ticker, err)
		return types.EmptySeries()
	}
	return types.FromBars(bars)
}

func (f *Fetcher) fail(ctx context.Context, ticker string, err error) {
	fe := &FetchError{Ticker: ticker, Source: f.source.Name(), Err: err}
	logger.Warn(ctx, "Price fetch failed, using empty series", "ticker", ticker, "error", fe)
}
