// Package feed builds the configured price fetcher.
package feed

import (
	"fmt"

	"equity-analyst/internal/interfaces"
	"equity-analyst/internal/prices"
	"equity-analyst/internal/prices/kite"
	"equity-analyst/internal/prices/pricesobs"
	"equity-analyst/internal/prices/synthetic"
	"equity-analyst/internal/prices/yahoo"
	"equity-analyst/internal/store"
)

// NewSource creates the bar source named by cfg.Provider.
func NewSource(cfg store.PricesConfig) (interfaces.PriceSource, error) {
	switch cfg.Provider {
	case "", store.PricesYahoo:
		return yahoo.New(yahoo.Params{
			BaseURL:    cfg.BaseURL,
			Timeout:    cfg.Timeout(),
			MaxRetries: cfg.MaxRetries,
		}), nil
	case store.PricesKite:
		if cfg.Kite.APIKey == "" || cfg.Kite.AccessToken == "" {
			return nil, fmt.Errorf("kite price source needs api_key and access_token")
		}
		return kite.New(kite.Params{
			APIKey:      cfg.Kite.APIKey,
			AccessToken: cfg.Kite.AccessToken,
			Exchange:    cfg.Kite.Exchange,
		}), nil
	case store.PricesSynthetic:
		return synthetic.New(cfg.Seed), nil
	default:
		return nil, fmt.Errorf("unknown price provider: %s (valid options: yahoo, kite, synthetic)", cfg.Provider)
	}
}

// New returns a rate-limited, observed fetcher over the configured source.
func New(cfg store.PricesConfig, opts ...prices.Option) (interfaces.PriceFetcher, error) {
	src, err := NewSource(cfg)
	if err != nil {
		return nil, err
	}
	opts = append([]prices.Option{prices.WithRateLimit(cfg.RatePerSecond, cfg.Burst)}, opts...)
	return pricesobs.Wrap(prices.New(src, opts...), src.Name()), nil
}
