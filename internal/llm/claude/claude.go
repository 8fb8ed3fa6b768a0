package claude

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"equity-analyst/internal/logger"
	"equity-analyst/internal/trace"
)

// ErrNoText is returned when a reply holds no text blocks.
var ErrNoText = errors.New("claude: response has no text content")

type Params struct {
	APIKey      string
	BaseURL     string // proxy or gateway in front of the Messages API
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Completer calls the Anthropic Messages API.
type Completer struct {
	client anthropic.Client
	params Params
}

func New(p Params) *Completer {
	opts := []option.RequestOption{
		option.WithAPIKey(p.APIKey),
		// retries are handled by the caller
		option.WithMaxRetries(0),
	}
	if p.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(p.BaseURL))
	}
	return &Completer{client: anthropic.NewClient(opts...), params: p}
}

func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()

	if c.params.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.params.Timeout)
		defer cancel()
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.params.Model),
		MaxTokens: int64(c.params.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	params.Temperature = anthropic.Float(float64(c.params.Temperature))

	start := time.Now()
	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude messages: %w", err)
	}
	logger.Debug(ctx, "Received response from Claude",
		"model", c.params.Model,
		"stop_reason", msg.StopReason,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", ErrNoText
	}
	return strings.TrimSpace(strings.Join(parts, "")), nil
}
