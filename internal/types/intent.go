package types

// Interval is the bar spacing of a price series.
type Interval string

const (
	Daily   Interval = "daily"
	Weekly  Interval = "weekly"
	Monthly Interval = "monthly"
)

// Intervals lists every accepted interval.
var Intervals = []Interval{Daily, Weekly, Monthly}

// Valid reports whether i is one of the known intervals.
func (i Interval) Valid() bool {
	switch i {
	case Daily, Weekly, Monthly:
		return true
	}
	return false
}

// ParsedIntent is the deterministic reading of a question. Dates use
// YYYY-MM-DD and are empty when unknown.
type ParsedIntent struct {
	Tickers  []string `json:"tickers"`
	Compare  bool     `json:"compare"`
	Start    string   `json:"start,omitempty"`
	End      string   `json:"end,omitempty"`
	Interval Interval `json:"interval"`
}
