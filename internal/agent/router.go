package agent

import (
	"context"
	"encoding/json"

	"equity-analyst/internal/logger"
	"equity-analyst/internal/plan"
	"equity-analyst/internal/prompts"
	"equity-analyst/internal/trace"
	"equity-analyst/internal/types"
)

// fallbackIndicators is the conservative subset requested when the planner
// cannot be used.
var fallbackIndicators = []string{"sma20", "rsi14", "macd"}

type plannerInput struct {
	Question       string             `json:"question"`
	Parsed         types.ParsedIntent `json:"parsed"`
	HaveMetricsFor []string           `json:"have_metrics_for"`
}

// route is the decide step. It bumps the iteration counter and produces the
// next plan, forcing FINALIZE once the cap is reached.
func (a *Analyst) route(ctx context.Context, st State) Diff {
	ctx, span := trace.StartSpan(ctx, "agent.route")
	defer span.End()

	iteration := st.Iterations + 1
	if iteration >= MaxIterations {
		p := plan.FinalizePlan()
		logger.Plan(ctx, iteration, string(p.NextAction), "cap", 0)
		return Diff{Iterations: iteration, Plan: &p, Trace: []types.TraceEntry{planEntry("cap", p)}}
	}

	p, err := a.askPlanner(ctx, st)
	source := "planner"
	if err != nil {
		logger.Warn(ctx, "Planner unusable, using fallback plan", "iteration", iteration, "error", err)
		p = a.fallbackPlan(st)
		source = "fallback"
	}

	logger.Plan(ctx, iteration, string(p.NextAction), source, len(p.ToolCalls),
		"have_metrics_for", st.HaveMetricsFor(),
	)
	return Diff{
		Iterations: iteration,
		Plan:       &p,
		Fallback:   source == "fallback",
		Trace:      []types.TraceEntry{planEntry(source, p)},
	}
}

func (a *Analyst) askPlanner(ctx context.Context, st State) (plan.Plan, error) {
	payload, err := json.Marshal(plannerInput{
		Question:       st.Question,
		Parsed:         st.Parsed,
		HaveMetricsFor: st.HaveMetricsFor(),
	})
	if err != nil {
		return plan.Plan{}, err
	}

	text, err := a.planner.Complete(ctx, prompts.System()+"\n\n"+prompts.Planner(), string(payload))
	if err != nil {
		return plan.Plan{}, err
	}
	return plan.Decode(text)
}

// fallbackPlan fetches, computes and summarizes the requested tickers while
// any of them lacks metrics, and finalizes otherwise.
func (a *Analyst) fallbackPlan(st State) plan.Plan {
	requested := st.Parsed.Tickers
	missing := len(st.Metrics) == 0
	for _, t := range requested {
		if _, ok := st.Metrics[t]; !ok {
			missing = true
			break
		}
	}
	if !missing {
		return plan.FinalizePlan()
	}

	tickers := requested
	if len(tickers) == 0 {
		tickers = []string{a.defaultTicker}
	}
	if len(tickers) > plan.MaxTickersPerCall {
		tickers = tickers[:plan.MaxTickersPerCall]
	}

	interval := st.Parsed.Interval
	if !interval.Valid() {
		interval = types.Daily
	}
	fetchArgs := map[string]any{
		"tickers":  toAny(tickers),
		"interval": string(interval),
	}
	if st.Parsed.Start != "" {
		fetchArgs["start"] = st.Parsed.Start
	}
	if st.Parsed.End != "" {
		fetchArgs["end"] = st.Parsed.End
	}

	return plan.Plan{
		NextAction: plan.CallTools,
		ToolCalls: []plan.ToolCall{
			{Name: plan.FetchPrices, Args: fetchArgs},
			{Name: plan.ComputeIndicators, Args: map[string]any{"indicators": toAny(fallbackIndicators)}},
			{Name: plan.SummarizeMetrics, Args: map[string]any{}},
		},
	}
}

func planEntry(source string, p plan.Plan) types.TraceEntry {
	return types.TraceEntry{Role: "router", Name: source, Content: p.JSON()}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
