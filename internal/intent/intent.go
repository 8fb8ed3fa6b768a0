// Package intent extracts ticker symbols and comparison intent from a
// question.
package intent

import (
	"regexp"
	"strings"
	"time"

	"equity-analyst/internal/timeframe"
	"equity-analyst/internal/types"
)

var (
	tokenRe   = regexp.MustCompile(`(\$?)\b([A-Za-z]{1,5})\b`)
	compareRe = regexp.MustCompile(`(?i) vs | versus | compare `)
)

// stopwords are uppercase words that look like tickers but never are:
// indicator and finance jargon plus common English.
var stopwords = toSet(
	"RSI", "MACD", "EMA", "SMA", "BB", "BBANDS", "VWAP", "YTD",
	"USD", "EPS", "PE", "ETF", "IPO", "EV", "EBITDA", "AI",
	"AND", "OR", "VS", "V", "THE", "A", "AN", "I",
	"HOW", "WHAT", "WHEN", "WHERE", "WHO", "WHY", "WHICH", "THAT",
	"THIS", "THESE", "THOSE", "ARE", "IS", "WAS", "WERE", "BE", "BEEN",
	"HAVE", "HAS", "HAD", "DO", "DOES", "DID", "WILL", "WOULD", "COULD",
	"SHOULD", "MAY", "MIGHT", "CAN", "MUST", "SHALL",
	"IN", "ON", "AT", "BY", "FOR", "WITH", "FROM", "TO", "OF", "AS",
	"BUT", "IF", "SO", "UP", "OUT", "ALL", "ANY", "SOME", "NO", "NOT",
	"LAST", "PAST", "RECENT", "NOW", "TODAY", "LATE", "EARLY", "NEW", "OLD",
	"GOOD", "BAD", "BIG", "SMALL", "HIGH", "LOW", "LONG", "SHORT",
	"STOCK", "SHARE", "PRICE", "TREND", "RALLY", "CRASH",
	"LIKE", "ABOUT", "OVER", "UNDER", "BEST", "WORST", "TOP", "SHOW",
	"CHECK", "LOOK", "SEE", "GET", "TAKE", "MAKE", "GIVE", "TELL",
	"MUCH", "MANY", "MORE", "MOST", "LESS", "LEAST", "VERY", "QUITE",
	"JUST", "ONLY", "ALSO", "EVEN", "STILL", "BACK", "DOWN", "AWAY",
	"SINCE", "UNTIL", "WEEK", "MONTH", "YEAR", "YEARS", "DAYS", "DAY",
	"DATE", "NYSE",
)

// Intent is the ticker part of a parsed question.
type Intent struct {
	Tickers []string `json:"tickers"`
	Compare bool     `json:"compare"`
}

// ExtractTickers returns candidate symbols in order of first appearance.
// A token counts when it is written in capitals or carries a "$" prefix.
// One and two letter symbols need the "$" form somewhere in the text.
func ExtractTickers(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	dollared := make(map[string]bool)
	matches := tokenRe.FindAllStringSubmatch(text, -1)
	for _, m := range matches {
		if m[1] == "$" {
			dollared[strings.ToUpper(m[2])] = true
		}
	}

	seen := make(map[string]bool)
	tickers := []string{}
	for _, m := range matches {
		raw, symbol := m[2], strings.ToUpper(m[2])
		if seen[symbol] || stopwords[symbol] {
			continue
		}
		if m[1] != "$" && raw != symbol {
			continue
		}
		if len(symbol) <= 2 && !dollared[symbol] {
			continue
		}
		seen[symbol] = true
		tickers = append(tickers, symbol)
	}
	return tickers
}

// DetectCompare reports comparison intent: two or more tickers, or a
// space-delimited "vs", "versus" or "compare".
func DetectCompare(text string, tickers []string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if len(tickers) >= 2 {
		return true
	}
	return compareRe.MatchString(text)
}

// Extract runs ticker and comparison detection.
func Extract(text string) Intent {
	tickers := ExtractTickers(text)
	return Intent{Tickers: tickers, Compare: DetectCompare(text, tickers)}
}

// Parse reads tickers and the time window from a question.
func Parse(question string, anchor time.Time) types.ParsedIntent {
	in := Extract(question)
	w := timeframe.Resolve(question, anchor)
	return types.ParsedIntent{
		Tickers:  in.Tickers,
		Compare:  in.Compare,
		Start:    w.StartString(),
		End:      w.EndString(),
		Interval: w.Interval,
	}
}

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
