// Package agent drives one question through the decide, do and tell steps
// until an answer is produced.
package agent

import (
	"context"
	"fmt"
	"strings"

	"equity-analyst/internal/interfaces"
	"equity-analyst/internal/logger"
	"equity-analyst/internal/plan"
	"equity-analyst/internal/types"
)

const (
	// MaxIterations bounds routing per question; reaching it forces FINALIZE,
	// so the planner is consulted at most MaxIterations-1 times.
	MaxIterations = 3
	DefaultTicker = "AAPL"
)

// Deps are the collaborators of an Analyst.
type Deps struct {
	Planner       interfaces.Completer
	Explainer     interfaces.Completer
	Prices        interfaces.PriceFetcher
	DefaultTicker string
}

type Analyst struct {
	planner       interfaces.Completer
	explainer     interfaces.Completer
	prices        interfaces.PriceFetcher
	defaultTicker string
}

var _ interfaces.Analyst = (*Analyst)(nil)

func New(d Deps) *Analyst {
	a := &Analyst{
		planner:       d.Planner,
		explainer:     d.Explainer,
		prices:        d.Prices,
		defaultTicker: strings.ToUpper(d.DefaultTicker),
	}
	if a.defaultTicker == "" {
		a.defaultTicker = DefaultTicker
	}
	return a
}

// Run answers one question. Routing alternates with tool batches until a
// plan other than CALL_TOOLS comes back; the iteration cap guarantees that
// happens. An error is returned only when ctx ends first.
func (a *Analyst) Run(ctx context.Context, question string, parsed types.ParsedIntent) (types.Analysis, error) {
	st := newState(question, parsed)

	for {
		if err := ctx.Err(); err != nil {
			return st.analysis(), fmt.Errorf("analysis aborted after %d iterations: %w", st.Iterations, err)
		}
		st.merge(a.route(ctx, st))
		if st.Plan.NextAction != plan.CallTools {
			break
		}
		st.merge(a.runTools(ctx, st))
	}

	st.merge(a.finalize(ctx, st))
	logger.Debug(ctx, "Analysis finished",
		"iterations", st.Iterations,
		"fallbacks", st.Fallbacks,
		"answered", st.Answered,
	)
	return st.analysis(), nil
}
