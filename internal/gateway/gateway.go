// Package gateway provides the uniform interface the pipeline uses to reach
// external answer-generation and reasoning services. All calls pass through
// a shared rate limiter so aggregate upstream QPS stays bounded no matter
// how many workers are running.
package gateway

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/geo-cli/internal/config"
	"github.com/sells-group/geo-cli/pkg/anthropic"
)

// CompletionRequest is one structured prompt for the reasoning model.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature *float64
	MaxTokens   int64
}

// Completer sends a structured prompt to the reasoning model and returns the
// response text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// NewLimiter builds the shared token-bucket limiter from config.
func NewLimiter(requestsPerSecond float64) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
}

type anthropicCompleter struct {
	client  anthropic.Client
	cfg     config.AnthropicConfig
	limiter *rate.Limiter
}

// NewCompleter wraps an Anthropic client as the pipeline's reasoning model.
func NewCompleter(client anthropic.Client, cfg config.AnthropicConfig, limiter *rate.Limiter) Completer {
	return &anthropicCompleter{client: client, cfg: cfg, limiter: limiter}
}

func (c *anthropicCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "gateway: rate limit wait")
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.cfg.MaxTokens
	}

	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       c.cfg.Model,
		MaxTokens:   maxTokens,
		System:      req.System,
		Messages:    []anthropic.Message{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", eris.Wrap(err, "gateway: complete")
	}
	return resp.Text(), nil
}

type timeoutCompleter struct {
	inner   Completer
	timeout time.Duration
}

// WithTimeout bounds every Complete call with its own deadline so a hung
// upstream cannot stall the pipeline. A non-positive timeout returns the
// completer unchanged.
func WithTimeout(c Completer, timeout time.Duration) Completer {
	if timeout <= 0 {
		return c
	}
	return &timeoutCompleter{inner: c, timeout: timeout}
}

func (c *timeoutCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.inner.Complete(ctx, req)
}
