package interfaces

import (
	"context"

	"equity-analyst/internal/types"
)

// PriceFetcher returns one series per requested ticker. It never fails:
// tickers that could not be loaded come back as empty series.
type PriceFetcher interface {
	Fetch(ctx context.Context, tickers []string, start, end string, interval types.Interval) map[string]*types.Series
}

// PriceSource loads bars for a single ticker. Fetchers are built on top of
// sources and absorb their errors.
type PriceSource interface {
	Name() string
	Bars(ctx context.Context, ticker string, start, end string, interval types.Interval) ([]types.Bar, error)
}
