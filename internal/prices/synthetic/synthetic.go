package synthetic

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"time"

	"equity-analyst/internal/interfaces"
	"equity-analyst/internal/prices"
	"equity-analyst/internal/timeframe"
	"equity-analyst/internal/types"
)

// Source generates a reproducible random walk per ticker for offline runs.
// The same seed, ticker and window always produce the same bars.
type Source struct {
	seed uint64
}

var _ interfaces.PriceSource = (*Source)(nil)

func New(seed int64) *Source {
	return &Source{seed: uint64(seed)}
}

func (s *Source) Name() string { return "synthetic" }

func (s *Source) Bars(ctx context.Context, ticker, start, end string, interval types.Interval) ([]types.Bar, error) {
	from, err := time.Parse(timeframe.DateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("synthetic: bad start: %w", err)
	}
	to, err := time.Parse(timeframe.DateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("synthetic: bad end: %w", err)
	}

	h := fnv.New64a()
	h.Write([]byte(ticker))
	rng := rand.New(rand.NewPCG(s.seed, h.Sum64()))

	// base price and drift vary by ticker
	price := 20 + rng.Float64()*280
	drift := (rng.Float64() - 0.45) * 0.002
	vol := 0.01 + rng.Float64()*0.02

	var bars []types.Bar
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		open := price
		price *= math.Exp(drift + vol*rng.NormFloat64())
		spread := price * vol * rng.Float64()
		bars = append(bars, types.Bar{
			Date:     d,
			Open:     open,
			High:     math.Max(open, price) + spread,
			Low:      math.Min(open, price) - spread,
			Close:    price,
			AdjClose: price,
			Volume:   float64(100_000 + rng.IntN(900_000)),
		})
	}
	return prices.Resample(bars, interval), nil
}
