package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-analyst/internal/prices"
	"equity-analyst/internal/store"
	"equity-analyst/internal/types"
)

func TestNewSource(t *testing.T) {
	tests := []struct {
		name    string
		cfg     store.PricesConfig
		want    string
		wantErr string
	}{
		{name: "default is yahoo", cfg: store.PricesConfig{}, want: "yahoo"},
		{name: "synthetic", cfg: store.PricesConfig{Provider: store.PricesSynthetic}, want: "synthetic"},
		{name: "kite", cfg: store.PricesConfig{Provider: store.PricesKite, Kite: store.KiteConfig{APIKey: "k", AccessToken: "t"}}, want: "kite"},
		{name: "kite without keys", cfg: store.PricesConfig{Provider: store.PricesKite}, wantErr: "api_key"},
		{name: "unknown", cfg: store.PricesConfig{Provider: "bloomberg"}, wantErr: "unknown price provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(tt.cfg)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, src.Name())
		})
	}
}

func TestNewSyntheticFetcher(t *testing.T) {
	cfg := store.PricesConfig{Provider: store.PricesSynthetic, Seed: 7, RatePerSecond: 100, Burst: 5}
	clock := func() time.Time { return time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC) }
	f, err := New(cfg, prices.WithClock(clock))
	require.NoError(t, err)

	out := f.Fetch(context.Background(), []string{"aapl", "msft"}, "", "", types.Weekly)
	require.Len(t, out, 2)
	assert.False(t, out["AAPL"].Empty())
	assert.Equal(t, "2024-06-28", out["MSFT"].Date(out["MSFT"].Len()-1).Format("2006-01-02"))
}
