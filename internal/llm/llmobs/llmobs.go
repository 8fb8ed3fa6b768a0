package llmobs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"equity-analyst/internal/interfaces"
	"equity-analyst/internal/logger"
	"equity-analyst/internal/trace"
)

// observableCompleter wraps a Completer with observability (logging & tracing)
type observableCompleter struct {
	completer interfaces.Completer
	role      string
	provider  string
}

// Compile-time interface check
var _ interfaces.Completer = (*observableCompleter)(nil)

// Wrap wraps a completer with observability middleware
func Wrap(completer interfaces.Completer, role, provider string) interfaces.Completer {
	return &observableCompleter{
		completer: completer,
		role:      role,
		provider:  provider,
	}
}

// Complete calls the underlying completer with observability
func (oc *observableCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.role", oc.role),
		attribute.String("llm.provider", oc.provider),
	)

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting completion",
		"role", oc.role,
		"provider", oc.provider,
		"prompt_chars", len(system)+len(user),
	)

	start := time.Now()
	out, err := oc.completer.Complete(ctx, system, user)
	latency := time.Since(start)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Completion failed", err,
			"role", oc.role,
			"provider", oc.provider,
			"latency_ms", latency.Milliseconds(),
		)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Completion received",
		"role", oc.role,
		"provider", oc.provider,
		"response_chars", len(out),
		"latency_ms", latency.Milliseconds(),
	)
	return out, nil
}
