package pricesobs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"equity-analyst/internal/interfaces"
	"equity-analyst/internal/logger"
	"equity-analyst/internal/trace"
	"equity-analyst/internal/types"
)

// observableFetcher wraps a PriceFetcher with observability (logging & tracing)
type observableFetcher struct {
	fetcher interfaces.PriceFetcher
	source  string
}

var _ interfaces.PriceFetcher = (*observableFetcher)(nil)

// Wrap wraps a fetcher with observability middleware
func Wrap(fetcher interfaces.PriceFetcher, source string) interfaces.PriceFetcher {
	return &observableFetcher{fetcher: fetcher, source: source}
}

func (of *observableFetcher) Fetch(ctx context.Context, tickers []string, start, end string, interval types.Interval) map[string]*types.Series {
	ctx, span := trace.StartSpan(ctx, "prices.Fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("prices.source", of.source),
		attribute.StringSlice("prices.tickers", tickers),
		attribute.String("prices.interval", string(interval)),
	)

	logger.DebugSkip(ctx, 1, "Fetching prices",
		"source", of.source,
		"tickers", tickers,
		"start", start,
		"end", end,
		"interval", interval,
	)

	began := time.Now()
	out := of.fetcher.Fetch(ctx, tickers, start, end, interval)

	rows, empty := 0, 0
	for _, s := range out {
		if s.Empty() {
			empty++
		}
		rows += s.Len()
	}
	span.SetAttributes(
		attribute.Int("prices.rows", rows),
		attribute.Int("prices.empty", empty),
	)
	if empty > 0 {
		trace.AddEvent(ctx, "prices.empty_series", attribute.Int("count", empty))
	}

	logger.InfoSkip(ctx, 1, "Prices fetched",
		"source", of.source,
		"series", len(out),
		"empty", empty,
		"rows", rows,
		"latency_ms", time.Since(began).Milliseconds(),
	)
	return out
}
