// Package llm builds the language model completers used by the planner and
// the explainer.
package llm

import (
	"context"
	"fmt"
	"time"

	"equity-analyst/internal/api"
	"equity-analyst/internal/interfaces"
	"equity-analyst/internal/llm/claude"
	"equity-analyst/internal/llm/gemini"
	"equity-analyst/internal/llm/llmobs"
	"equity-analyst/internal/llm/noop"
	"equity-analyst/internal/llm/openai"
	"equity-analyst/internal/logger"
	"equity-analyst/internal/store"
)

// Role names.
const (
	RoleRouter    = "router"
	RoleFinalizer = "finalizer"
)

// New builds the completer for one role. A provider without an API key
// degrades to the noop completer.
func New(ctx context.Context, role string, cfg store.LLMRole) (interfaces.Completer, error) {
	provider := cfg.Provider
	if provider != store.ProviderNoop && cfg.APIKey == "" {
		logger.Warn(ctx, "No API key for LLM provider - using Noop completer",
			"role", role,
			"provider", provider,
			"env", store.APIKeyEnv(provider),
		)
		provider = store.ProviderNoop
	}

	var c interfaces.Completer
	switch provider {
	case store.ProviderGroq, store.ProviderOpenAI:
		baseURL := cfg.BaseURL
		if baseURL == "" && provider == store.ProviderGroq {
			baseURL = store.GroqBaseURL
		}
		c = openai.New(openai.Params{
			APIKey:      cfg.APIKey,
			BaseURL:     baseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout(),
		})
	case store.ProviderClaude:
		c = claude.New(claude.Params{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout(),
		})
	case store.ProviderGemini:
		g, err := gemini.New(ctx, gemini.Params{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("%s completer: %w", role, err)
		}
		c = g
	case store.ProviderNoop:
		return llmobs.Wrap(noop.New(role), role, provider), nil
	default:
		return nil, fmt.Errorf("%s completer: unknown provider %q", role, provider)
	}

	if cfg.MaxRetries > 0 {
		c = WithRetry(c, api.RetriesConfig(cfg.MaxRetries))
	}
	return llmobs.Wrap(c, role, provider), nil
}

// retrying repeats failed completions with exponential backoff.
type retrying struct {
	next   interfaces.Completer
	config *api.RetryConfig
}

var _ interfaces.Completer = (*retrying)(nil)

// WithRetry wraps c so transient failures are retried per config.
func WithRetry(c interfaces.Completer, config *api.RetryConfig) interfaces.Completer {
	if config == nil {
		config = &api.RetryConfig{MaxAttempts: 2, InitialWait: 500 * time.Millisecond, MaxWait: 2 * time.Second}
	}
	return &retrying{next: c, config: config}
}

func (r *retrying) Complete(ctx context.Context, system, user string) (string, error) {
	return api.Retry(ctx, r.config, func(ctx context.Context) (string, error) {
		return r.next.Complete(ctx, system, user)
	})
}
