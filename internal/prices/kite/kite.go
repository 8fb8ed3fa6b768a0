package kite

import (
	"context"
	"fmt"
	"sync"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"equity-analyst/internal/interfaces"
	"equity-analyst/internal/logger"
	"equity-analyst/internal/prices"
	"equity-analyst/internal/timeframe"
	"equity-analyst/internal/types"
)

// historyClient is the part of the Kite Connect client this source uses.
type historyClient interface {
	GetInstrumentsByExchange(exchange string) (kiteconnect.Instruments, error)
	GetHistoricalData(instrumentToken int, interval string, fromDate time.Time, toDate time.Time, continuous bool, OI bool) ([]kiteconnect.HistoricalData, error)
}

type Params struct {
	APIKey      string
	AccessToken string
	Exchange    string
}

// Source reads day candles from Kite Connect and resamples them for weekly
// and monthly requests.
type Source struct {
	kc       historyClient
	exchange string
	mapper   *instrumentMapper
	loadMu   sync.Mutex
}

var _ interfaces.PriceSource = (*Source)(nil)

func New(p Params) *Source {
	kc := kiteconnect.New(p.APIKey)
	kc.SetAccessToken(p.AccessToken)
	return newSource(kc, p.Exchange)
}

func newSource(kc historyClient, exchange string) *Source {
	if exchange == "" {
		exchange = "NSE"
	}
	return &Source{kc: kc, exchange: exchange, mapper: newInstrumentMapper()}
}

func (s *Source) Name() string { return "kite" }

func (s *Source) Bars(ctx context.Context, ticker, start, end string, interval types.Interval) ([]types.Bar, error) {
	from, err := time.Parse(timeframe.DateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("kite: bad start: %w", err)
	}
	to, err := time.Parse(timeframe.DateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("kite: bad end: %w", err)
	}

	token, err := s.token(ctx, ticker)
	if err != nil {
		return nil, err
	}

	candles, err := s.kc.GetHistoricalData(token, "day", from, to.Add(24*time.Hour-time.Second), false, false)
	if err != nil {
		return nil, fmt.Errorf("kite historical %s: %w", ticker, err)
	}

	bars := make([]types.Bar, 0, len(candles))
	for _, c := range candles {
		y, m, d := c.Date.Time.Date()
		bars = append(bars, types.Bar{
			Date:     time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			Open:     c.Open,
			High:     c.High,
			Low:      c.Low,
			Close:    c.Close,
			AdjClose: c.Close,
			Volume:   float64(c.Volume),
		})
	}
	return prices.Resample(bars, interval), nil
}

// token resolves a symbol, loading the instrument list on first use.
func (s *Source) token(ctx context.Context, symbol string) (int, error) {
	if !s.mapper.isLoaded() {
		s.loadMu.Lock()
		if !s.mapper.isLoaded() {
			instruments, err := s.kc.GetInstrumentsByExchange(s.exchange)
			if err != nil {
				s.loadMu.Unlock()
				return 0, fmt.Errorf("kite instruments %s: %w", s.exchange, err)
			}
			s.mapper.load(instruments)
			logger.Debug(ctx, "Loaded Kite instruments", "exchange", s.exchange, "count", len(instruments))
		}
		s.loadMu.Unlock()
	}

	token, ok := s.mapper.getToken(symbol)
	if !ok {
		return 0, fmt.Errorf("kite: unknown symbol %s on %s", symbol, s.exchange)
	}
	return token, nil
}
