package types

import "encoding/json"

// MACD states.
const (
	MACDAbove     = "above"
	MACDBelow     = "below"
	MACDCrossUp   = "cross_up"
	MACDCrossDown = "cross_down"
	MACDFlat      = "flat"
	MACDUnknown   = "unknown"
)

// Bollinger positions.
const (
	BBBelowLower = "below_lower"
	BBNearLower  = "near_lower"
	BBInside     = "inside"
	BBNearUpper  = "near_upper"
	BBAboveUpper = "above_upper"
)

// Digest notes.
const (
	NoteNoData       = "no data"
	NoteMissingClose = "missing Close column"
	NoteInsufficient = "insufficient data"
)

// Digest is the compact per-ticker summary handed to the explainer.
// A digest with a Note carries only the period dates.
type Digest struct {
	PeriodStart   *string  `json:"period_start"`
	PeriodEnd     *string  `json:"period_end"`
	PeriodReturn  float64  `json:"period_return"`
	AnnualizedVol *float64 `json:"annualized_vol"`
	MaxDrawdown   float64  `json:"max_drawdown"`
	TrendSlope    *float64 `json:"trend_slope"`
	RSILast       *float64 `json:"rsi_last"`
	MACDState     string   `json:"macd_state"`
	BBPosition    *string  `json:"bb_position"`
	Note          string   `json:"note,omitempty"`
}

// Complete reports whether the numeric fields were computed.
func (d Digest) Complete() bool { return d.Note == "" }

// MarshalJSON drops the numeric fields from noted digests.
func (d Digest) MarshalJSON() ([]byte, error) {
	if d.Note != "" {
		return json.Marshal(struct {
			PeriodStart *string `json:"period_start"`
			PeriodEnd   *string `json:"period_end"`
			Note        string  `json:"note"`
		}{d.PeriodStart, d.PeriodEnd, d.Note})
	}
	type full Digest
	return json.Marshal(full(d))
}
