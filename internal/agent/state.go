package agent

import (
	"maps"
	"slices"

	"equity-analyst/internal/plan"
	"equity-analyst/internal/types"
)

// State is the blackboard for one question. Steps receive it by value and
// must not write through its maps; they report changes as a Diff.
type State struct {
	Question   string
	Parsed     types.ParsedIntent
	Series     map[string]*types.Series
	Metrics    map[string]types.Digest
	Plan       *plan.Plan
	Iterations int
	Fallbacks  int
	Answer     *string
	Answered   bool
	Trace      []types.TraceEntry
}

// Diff holds the fields a step changed. Nil maps and pointers mean
// unchanged; Trace entries are appended.
type Diff struct {
	Series     map[string]*types.Series
	Metrics    map[string]types.Digest
	Plan       *plan.Plan
	Iterations int
	Fallback   bool
	Answer     *string
	Answered   bool
	Trace      []types.TraceEntry
}

func newState(question string, parsed types.ParsedIntent) State {
	return State{
		Question: question,
		Parsed:   parsed,
		Series:   map[string]*types.Series{},
		Metrics:  map[string]types.Digest{},
	}
}

// merge folds d into s. Only the loop driver calls it.
func (s *State) merge(d Diff) {
	if d.Series != nil {
		s.Series = d.Series
	}
	if d.Metrics != nil {
		s.Metrics = d.Metrics
	}
	if d.Plan != nil {
		s.Plan = d.Plan
	}
	if d.Iterations > s.Iterations {
		s.Iterations = d.Iterations
	}
	if d.Fallback {
		s.Fallbacks++
	}
	if d.Answer != nil {
		s.Answer = d.Answer
		s.Answered = d.Answered
	}
	s.Trace = append(s.Trace, d.Trace...)
}

// HaveMetricsFor lists tickers with a digest, sorted.
func (s State) HaveMetricsFor() []string {
	out := slices.Sorted(maps.Keys(s.Metrics))
	if out == nil {
		out = []string{}
	}
	return out
}

// tickersWithData lists tickers holding a non-empty series, sorted.
func tickersWithData(series map[string]*types.Series) []string {
	var out []string
	for t, ser := range series {
		if !ser.Empty() {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return out
}

func (s State) analysis() types.Analysis {
	a := types.Analysis{
		Question:   s.Question,
		Parsed:     s.Parsed,
		Answer:     types.NoAnswer,
		Answered:   s.Answered,
		Metrics:    maps.Clone(s.Metrics),
		Iterations: s.Iterations,
		Fallbacks:  s.Fallbacks,
		Trace:      s.Trace,
	}
	if s.Answer != nil {
		a.Answer = *s.Answer
	}
	return a
}
