package intent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-analyst/internal/timeframe"
	"equity-analyst/internal/types"
)

func TestExtractTickers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"single", "How is AAPL doing?", []string{"AAPL"}},
		{"keeps order and dedups", "NVDA vs AMD, and NVDA again", []string{"NVDA", "AMD"}},
		{"jargon is ignored", "What is the RSI and MACD of TSLA?", []string{"TSLA"}},
		{"lowercase words are not tickers", "how has nvda done lately", []string{}},
		{"dollar prefix in any case", "thoughts on $nvda and $Msft", []string{"NVDA", "MSFT"}},
		{"short symbols need a dollar", "Is GE better than F?", []string{}},
		{"short symbol with dollar", "Is $GE better than $F?", []string{"GE", "F"}},
		{"dollar form elsewhere enables bare short", "GE chart, I mean $GE", []string{"GE"}},
		{"dedup is case-insensitive", "$aapl then AAPL", []string{"AAPL"}},
		{"possessive", "AAPL's trend since 2024-01-01", []string{"AAPL"}},
		{"long words skipped", "GOOGLE or AMAZON", []string{}},
		{"stopword with dollar still skipped", "$AI names like PLTR", []string{"PLTR"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTickers(tt.text))
		})
	}
}

func TestExtractTickersIdempotent(t *testing.T) {
	questions := []string{
		"Compare AAPL vs MSFT over the last 3 months",
		"$nvda, AMD and $tsla ytd",
		"TSLA TSLA TSLA",
		"nothing here",
	}
	for _, q := range questions {
		first := ExtractTickers(q)
		again := ExtractTickers(strings.Join(first, " "))
		assert.Equal(t, first, again, q)

		seen := map[string]bool{}
		for _, s := range first {
			require.False(t, seen[s], "duplicate %s in %v", s, first)
			seen[s] = true
		}
	}
}

func TestExtractTickersShortSymbolsRoundTripWithDollar(t *testing.T) {
	first := ExtractTickers("$nvda, AMD and $GE ytd")
	require.Equal(t, []string{"NVDA", "AMD", "GE"}, first)

	assert.Equal(t, []string{"NVDA", "AMD"}, ExtractTickers(strings.Join(first, " ")),
		"a bare two letter symbol is not a ticker")

	dollared := make([]string, len(first))
	for i, s := range first {
		dollared[i] = "$" + s
	}
	assert.Equal(t, first, ExtractTickers(strings.Join(dollared, " ")))
}

func TestDetectCompare(t *testing.T) {
	assert.True(t, DetectCompare("AAPL and MSFT", []string{"AAPL", "MSFT"}))
	assert.True(t, DetectCompare("AAPL vs the market", []string{"AAPL"}))
	assert.True(t, DetectCompare("AAPL VERSUS peers", []string{"AAPL"}))
	assert.True(t, DetectCompare("please Compare this", nil))
	assert.False(t, DetectCompare("canvas of AAPL", []string{"AAPL"}))
	assert.False(t, DetectCompare("compare", nil))
	assert.False(t, DetectCompare("", []string{"AAPL", "MSFT"}))
}

func TestParse(t *testing.T) {
	anchor, err := timeframe.ParseAnchor("2024-04-15")
	require.NoError(t, err)

	p := Parse("Compare AAPL vs MSFT over the last 3 months", anchor)
	assert.Equal(t, types.ParsedIntent{
		Tickers:  []string{"AAPL", "MSFT"},
		Compare:  true,
		Start:    "2024-01-15",
		End:      "2024-04-15",
		Interval: types.Daily,
	}, p)

	p = Parse("", anchor)
	assert.Empty(t, p.Tickers)
	assert.False(t, p.Compare)
	assert.Equal(t, "2023-10-15", p.Start)
}
