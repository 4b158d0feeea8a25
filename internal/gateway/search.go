package gateway

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/geo-cli/internal/config"
	"github.com/sells-group/geo-cli/internal/model"
	"github.com/sells-group/geo-cli/pkg/openai"
	"github.com/sells-group/geo-cli/pkg/perplexity"
)

// Answer is one platform's response to a query, with whatever ranked
// citation list the platform exposes.
type Answer struct {
	Text      string
	Citations []string
}

// Searcher asks one answer platform a query.
type Searcher interface {
	Search(ctx context.Context, query string) (*Answer, error)
}

// Registry maps platform names to their searchers.
type Registry map[model.Platform]Searcher

// Lookup returns the searcher for a platform.
func (r Registry) Lookup(p model.Platform) (Searcher, error) {
	s, ok := r[p]
	if !ok {
		return nil, eris.Errorf("gateway: no searcher registered for platform %q", p)
	}
	return s, nil
}

const searchSystemPrompt = "You are a helpful assistant that provides comprehensive answers " +
	"about products, tools, and services. When answering, mention specific brands, " +
	"websites, and tools that are relevant. Include URLs when possible."

type openaiSearcher struct {
	client  openai.Client
	model   string
	limiter *rate.Limiter
}

// NewOpenAISearcher returns the ChatGPT searcher. When client is nil (no API
// key configured) it answers from the simulated catalogue so the pipeline
// stays runnable in demos and tests.
func NewOpenAISearcher(client openai.Client, cfg config.OpenAIConfig, limiter *rate.Limiter) Searcher {
	if client == nil {
		return simulatedSearcher{platform: model.PlatformChatGPT}
	}
	return &openaiSearcher{client: client, model: cfg.Model, limiter: limiter}
}

func (s *openaiSearcher) Search(ctx context.Context, query string) (*Answer, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "gateway: rate limit wait")
	}

	resp, err := s.client.ChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		System:      searchSystemPrompt,
		Prompt:      query,
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "gateway: chatgpt search %q", query)
	}
	return &Answer{Text: resp.Content}, nil
}

type perplexitySearcher struct {
	client  perplexity.Client
	model   string
	limiter *rate.Limiter
}

// NewPerplexitySearcher returns the Perplexity searcher. With a nil client it
// serves the simulated catalogue; with a real client it still falls back to
// the catalogue when the API errors, so one flaky upstream does not sink a
// whole run.
func NewPerplexitySearcher(client perplexity.Client, cfg config.PerplexityConfig, limiter *rate.Limiter) Searcher {
	if client == nil {
		return simulatedSearcher{platform: model.PlatformPerplexity}
	}
	return &perplexitySearcher{client: client, model: cfg.Model, limiter: limiter}
}

func (s *perplexitySearcher) Search(ctx context.Context, query string) (*Answer, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "gateway: rate limit wait")
	}

	resp, err := s.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Model: s.model,
		Messages: []perplexity.Message{
			{Role: "system", Content: "You are a helpful search assistant. Provide accurate information with sources."},
			{Role: "user", Content: query},
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "gateway: perplexity search")
		}
		zap.L().Warn("perplexity search failed, serving simulated answer",
			zap.String("query", query),
			zap.Error(err))
		return simulatedAnswer(query), nil
	}
	return &Answer{Text: resp.Content(), Citations: resp.Citations}, nil
}

// simulatedSearcher answers every query from the built-in catalogue.
type simulatedSearcher struct {
	platform model.Platform
}

func (s simulatedSearcher) Search(ctx context.Context, query string) (*Answer, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "gateway: simulated search")
	}
	zap.L().Debug("serving simulated answer",
		zap.String("platform", string(s.platform)),
		zap.String("query", query))
	return simulatedAnswer(query), nil
}
