package yahoo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"time"

	"equity-analyst/internal/api"
	"equity-analyst/internal/interfaces"
	"equity-analyst/internal/timeframe"
	"equity-analyst/internal/types"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// ErrNoData is returned when the chart has no timestamps.
var ErrNoData = errors.New("yahoo: no data returned")

type Params struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Source reads daily, weekly or monthly bars from the Yahoo chart API.
// Prices are split and dividend adjusted.
type Source struct {
	client *api.Client
	retry  *api.RetryConfig
}

var _ interfaces.PriceSource = (*Source)(nil)

func New(p Params) *Source {
	if p.BaseURL == "" {
		p.BaseURL = DefaultBaseURL
	}
	opts := []api.ClientOption{
		api.WithBaseURL(p.BaseURL),
		api.WithHeaders(api.YahooFinanceHeaders()),
		api.WithLogging(true),
	}
	if p.Timeout > 0 {
		opts = append(opts, api.WithTimeout(p.Timeout))
	}
	return &Source{
		client: api.NewClient(opts...),
		retry:  api.RetriesConfig(p.MaxRetries),
	}
}

func (s *Source) Name() string { return "yahoo" }

// IntervalCode maps an interval to the chart API's spelling.
func IntervalCode(iv types.Interval) string {
	switch iv {
	case types.Weekly:
		return "1wk"
	case types.Monthly:
		return "1mo"
	default:
		return "1d"
	}
}

// chartResponse is the response structure from the chart API. Missing
// values arrive as JSON null.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset int `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Bars fetches [start, end] inclusive.
func (s *Source) Bars(ctx context.Context, ticker, start, end string, interval types.Interval) ([]types.Bar, error) {
	from, err := time.Parse(timeframe.DateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("yahoo: bad start: %w", err)
	}
	to, err := time.Parse(timeframe.DateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("yahoo: bad end: %w", err)
	}

	q := url.Values{}
	q.Set("interval", IntervalCode(interval))
	q.Set("period1", fmt.Sprint(from.Unix()))
	q.Set("period2", fmt.Sprint(to.AddDate(0, 0, 1).Unix()))
	q.Set("includeAdjustedClose", "true")
	path := "/v8/finance/chart/" + url.PathEscape(ticker) + "?" + q.Encode()

	req := api.NewRequest("GET", path).WithContext(ctx)
	resp, err := s.client.DoWithRetry(req, s.retry)
	if err != nil {
		return nil, err
	}

	var chart chartResponse
	if err := resp.ParseJSON(&chart); err != nil {
		return nil, err
	}
	return decode(chart)
}

func decode(chart chartResponse) ([]types.Bar, error) {
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, ErrNoData
	}
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, ErrNoData
	}
	quote := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}
	loc := time.FixedZone("exchange", result.Meta.GMTOffset)

	bars := make([]types.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		local := time.Unix(ts, 0).In(loc)
		y, m, d := local.Date()
		b := types.Bar{
			Date:     time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			Open:     at(quote.Open, i),
			High:     at(quote.High, i),
			Low:      at(quote.Low, i),
			Close:    at(quote.Close, i),
			AdjClose: at(adj, i),
			Volume:   at(quote.Volume, i),
		}
		// scale OHLC so Close equals the adjusted close
		if !math.IsNaN(b.AdjClose) && !math.IsNaN(b.Close) && b.Close != 0 {
			ratio := b.AdjClose / b.Close
			b.Open *= ratio
			b.High *= ratio
			b.Low *= ratio
			b.Close = b.AdjClose
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func at(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return math.NaN()
	}
	return *vals[i]
}
