package noop

import (
	"context"
	"errors"

	"equity-analyst/internal/logger"
)

// ErrNotConfigured is what every call returns. The planner then falls back
// to its deterministic plan and the finalizer reports that no answer exists.
var ErrNotConfigured = errors.New("no language model configured")

// Completer is used when no model provider is configured.
type Completer struct {
	role string
}

func New(role string) *Completer {
	return &Completer{role: role}
}

func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	logger.Debug(ctx, "Noop completer called", "role", c.role)
	return "", ErrNotConfigured
}
