// Package prompts holds the instructions given to the planner and the
// explainer models.
package prompts

import (
	"fmt"
	"sort"
	"strings"

	"equity-analyst/internal/plan"
	"equity-analyst/internal/types"
)

const system = `You are a financial analysis explainer. You use the available tools to
fetch market data and compute technical indicators, then explain the findings
clearly and factually.

Key principles:
- Report concrete numbers and ISO dates
- Be concise and factual; do not draw charts or tables
- Do not give investment advice or predict future performance
- Stay with historical data and current indicator readings
- Use plain language when a technical concept needs explaining`

const explainer = `You are the Explainer. Use the metrics provided to write a concise
4-7 sentence explanation of the findings.

Your response must include:
- The time window with its start and end dates
- The period return as a percentage
- The trend, based on the slope direction and price movement
- One or two indicator readings (RSI value, MACD state or Bollinger position)
- Volatility and maximum drawdown

For several tickers, call out how their performance differs.

If data is missing or an indicator could not be computed, say so in one
short sentence.

Format:
- Express returns and volatility as percentages where natural
- Prefer specific numbers over vague descriptions
- Keep a professional, factual tone
- No recommendations or forward-looking statements`

// System is shared by both model roles.
func System() string { return system }

// Explainer introduces the context JSON handed to the finalizing model.
func Explainer() string { return explainer }

// Planner describes the plan format, built from the plan vocabulary so the
// two cannot drift apart.
func Planner() string {
	intervals := make([]string, len(types.Intervals))
	for i, iv := range types.Intervals {
		intervals[i] = string(iv)
	}
	indicators := append([]string(nil), plan.Indicators...)
	sort.Strings(indicators)

	example := fmt.Sprintf(`{"next_action": %q, "tool_calls": [`+
		`{"name": %q, "args": {"tickers": ["AAPL"], "start": "2024-01-01", "end": "2024-03-31", "interval": %q}}, `+
		`{"name": %q, "args": {"indicators": ["sma20", "rsi14", "macd"]}}, `+
		`{"name": %q, "args": {}}]}`,
		plan.CallTools, plan.FetchPrices, types.Daily, plan.ComputeIndicators, plan.SummarizeMetrics)

	var b strings.Builder
	b.WriteString(`You are the Planner. Read the "question" and "parsed" inputs (tickers, start,
end, interval, compare) and the list of tickers that already have metrics, then
output a plan as strict JSON.

The plan is an object with:
- "next_action": "CALL_TOOLS" or "FINALIZE"
- "tool_calls": the tools to run, required when next_action is CALL_TOOLS

`)
	fmt.Fprintf(&b, "Available tools: %s\n", strings.Join(plan.ToolNames, ", "))
	fmt.Fprintf(&b, "Allowed intervals: %s\n", strings.Join(intervals, ", "))
	fmt.Fprintf(&b, "Allowed indicators: %s\n", strings.Join(indicators, ", "))
	fmt.Fprintf(&b, "Ticker limit: %d per call\n\n", plan.MaxTickersPerCall)
	b.WriteString(`Planning strategy:
- If price data is missing, include "fetch_prices"
- If trend or momentum is implied or unspecified, add "compute_indicators" with a
  small subset such as ["sma20", "rsi14", "macd"] unless specific indicators are named
- Always end with "summarize_metrics" to produce the metrics digest
- Skip tool calls for tickers that already have metrics

Example three-step plan:
`)
	b.WriteString(example)
	b.WriteString("\n\nOutput JSON only. No text outside the JSON, no backticks, no markdown.")
	return b.String()
}
