package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"equity-analyst/internal/logger"
	"equity-analyst/internal/prompts"
	"equity-analyst/internal/trace"
	"equity-analyst/internal/types"
)

// ErrNoAnswer means the explainer returned no usable text.
var ErrNoAnswer = errors.New("explainer produced no answer")

type explainerInput struct {
	Question string                  `json:"question"`
	Parsed   types.ParsedIntent      `json:"parsed"`
	Metrics  map[string]types.Digest `json:"metrics"`
}

// finalize is the tell step. It never fails: a missing answer becomes
// types.NoAnswer with Answered unset.
func (a *Analyst) finalize(ctx context.Context, st State) Diff {
	ctx, span := trace.StartSpan(ctx, "agent.finalize")
	defer span.End()

	answer, err := a.explain(ctx, st)
	if err != nil {
		trace.RecordError(ctx, err)
		logger.ErrorWithErr(ctx, "Finalizer produced no answer", err, "tickers", st.HaveMetricsFor())
		none := types.NoAnswer
		return Diff{
			Answer: &none,
			Trace:  []types.TraceEntry{{Role: "finalizer", Content: err.Error()}},
		}
	}
	return Diff{
		Answer:   &answer,
		Answered: true,
		Trace:    []types.TraceEntry{{Role: "finalizer", Content: answer}},
	}
}

func (a *Analyst) explain(ctx context.Context, st State) (string, error) {
	payload, err := json.MarshalIndent(explainerInput{
		Question: st.Question,
		Parsed:   st.Parsed,
		Metrics:  st.Metrics,
	}, "", "  ")
	if err != nil {
		return "", err
	}

	text, err := a.explainer.Complete(ctx, prompts.System(), prompts.Explainer()+"\n\n"+string(payload))
	if err != nil {
		return "", errors.Join(ErrNoAnswer, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoAnswer
	}
	return text, nil
}
