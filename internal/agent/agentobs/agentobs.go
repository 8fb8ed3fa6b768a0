package agentobs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"equity-analyst/internal/interfaces"
	"equity-analyst/internal/logger"
	"equity-analyst/internal/trace"
	"equity-analyst/internal/types"
)

type observableAnalyst struct {
	analyst interfaces.Analyst
}

var _ interfaces.Analyst = (*observableAnalyst)(nil)

func Wrap(analyst interfaces.Analyst) interfaces.Analyst {
	return &observableAnalyst{analyst: analyst}
}

func (oa *observableAnalyst) Run(ctx context.Context, question string, parsed types.ParsedIntent) (types.Analysis, error) {
	ctx, span := trace.StartSpan(ctx, "agent.Run")
	defer span.End()
	span.SetAttributes(
		attribute.StringSlice("agent.tickers", parsed.Tickers),
		attribute.String("agent.interval", string(parsed.Interval)),
	)

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting analysis",
		"tickers", parsed.Tickers,
		"start", parsed.Start,
		"end", parsed.End,
		"interval", parsed.Interval,
		"compare", parsed.Compare,
	)

	res, err := oa.analyst.Run(ctx, question, parsed)
	if err != nil {
		trace.RecordError(ctx, err)
		logger.ErrorWithErrSkip(ctx, 1, "Analysis failed", err,
			"iterations", res.Iterations,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return res, err
	}

	span.SetAttributes(
		attribute.Int("agent.iterations", res.Iterations),
		attribute.Int("agent.fallbacks", res.Fallbacks),
		attribute.Bool("agent.answered", res.Answered),
	)
	logger.InfoSkip(ctx, 1, "Analysis completed",
		"iterations", res.Iterations,
		"fallbacks", res.Fallbacks,
		"answered", res.Answered,
		"metrics_for", len(res.Metrics),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
