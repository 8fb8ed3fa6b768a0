package agent

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"equity-analyst/internal/logger"
	"equity-analyst/internal/metrics"
	"equity-analyst/internal/plan"
	"equity-analyst/internal/ta"
	"equity-analyst/internal/trace"
	"equity-analyst/internal/types"
)

// ToolError is a failure of one tool call for one ticker. It is logged and
// the ticker is left as it was.
type ToolError struct {
	Tool   string
	Ticker string
	Err    error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Tool, e.Ticker, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// workspace is the private copy a tools batch mutates.
type workspace struct {
	series  map[string]*types.Series
	metrics map[string]types.Digest
	parsed  types.ParsedIntent
	trace   []types.TraceEntry
}

// runTools is the do step. Calls run in order against copies of the maps;
// existing tickers are never dropped.
func (a *Analyst) runTools(ctx context.Context, st State) Diff {
	ctx, span := trace.StartSpan(ctx, "agent.tools")
	defer span.End()

	ws := &workspace{
		series:  maps.Clone(st.Series),
		metrics: maps.Clone(st.Metrics),
		parsed:  st.Parsed,
	}
	if st.Plan != nil {
		for _, call := range st.Plan.ToolCalls {
			switch call.Name {
			case plan.FetchPrices:
				a.fetchPrices(ctx, ws, call.Args)
			case plan.ComputeIndicators:
				a.computeIndicators(ctx, ws, call.Args)
			case plan.SummarizeMetrics:
				a.summarizeMetrics(ctx, ws, call.Args)
			default:
				logger.Warn(ctx, "Skipping unknown tool", "tool", call.Name)
			}
		}
	}
	return Diff{Series: ws.series, Metrics: ws.metrics, Trace: ws.trace}
}

func (a *Analyst) fetchPrices(ctx context.Context, ws *workspace, args map[string]any) {
	tickers, _ := plan.Tickers(args)
	if len(tickers) == 0 {
		ws.record(plan.FetchPrices, "no tickers requested")
		return
	}

	interval := types.Interval(plan.OptionalString(args, "interval"))
	if !interval.Valid() {
		interval = ws.parsed.Interval
	}
	fetched := a.prices.Fetch(ctx, tickers, plan.OptionalString(args, "start"), plan.OptionalString(args, "end"), interval)

	var loaded, empty []string
	for t, s := range fetched {
		if !s.Empty() {
			ws.series[t] = s
			loaded = append(loaded, t)
			continue
		}
		empty = append(empty, t)
		if _, ok := ws.series[t]; !ok {
			ws.series[t] = s
		}
	}

	logger.ToolCall(ctx, plan.FetchPrices, tickers, len(loaded), "empty", empty)
	ws.record(plan.FetchPrices, fmt.Sprintf("loaded %d of %d tickers", len(loaded), len(fetched)))
}

func (a *Analyst) computeIndicators(ctx context.Context, ws *workspace, args map[string]any) {
	names, listed := plan.StringList(args, "indicators")
	targets := ws.targets(args)
	if listed && len(names) == 0 {
		logger.ToolCall(ctx, plan.ComputeIndicators, targets, 0, "indicators", names)
		ws.record(plan.ComputeIndicators, "no indicators requested")
		return
	}

	updated := 0
	for _, t := range targets {
		s, ok := ws.series[t]
		if !ok || s.Empty() {
			continue
		}
		out, err := ta.Compute(s, names...)
		if err != nil {
			logger.Warn(ctx, "Indicator computation failed", "error", &ToolError{Tool: plan.ComputeIndicators, Ticker: t, Err: err})
			continue
		}
		ws.series[t] = out
		updated++
	}

	logger.ToolCall(ctx, plan.ComputeIndicators, targets, updated, "indicators", names)
	ws.record(plan.ComputeIndicators, fmt.Sprintf("updated %d of %d tickers", updated, len(targets)))
}

func (a *Analyst) summarizeMetrics(ctx context.Context, ws *workspace, args map[string]any) {
	interval := types.Interval(plan.OptionalString(args, "interval"))
	if !interval.Valid() {
		interval = ws.parsed.Interval
	}
	targets := ws.targets(args)

	var done []string
	for _, t := range targets {
		s, ok := ws.series[t]
		if !ok || s.Empty() {
			continue
		}
		ws.metrics[t] = metrics.Summarize(s, interval)
		done = append(done, t)
	}

	logger.ToolCall(ctx, plan.SummarizeMetrics, targets, len(done), "interval", interval)
	ws.record(plan.SummarizeMetrics, "summarized "+strings.Join(done, ", "))
}

// targets is the explicit tickers argument, or every ticker with data.
func (ws *workspace) targets(args map[string]any) []string {
	if tickers, ok := plan.Tickers(args); ok {
		return tickers
	}
	return tickersWithData(ws.series)
}

func (ws *workspace) record(tool, content string) {
	ws.trace = append(ws.trace, types.TraceEntry{Role: "tool", Name: tool, Content: content})
}
