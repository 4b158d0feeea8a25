package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geo-cli/internal/gateway"
	"github.com/sells-group/geo-cli/internal/model"
	"github.com/sells-group/geo-cli/internal/orchestrator"
	"github.com/sells-group/geo-cli/internal/store"
	anthropicpkg "github.com/sells-group/geo-cli/pkg/anthropic"
	openaipkg "github.com/sells-group/geo-cli/pkg/openai"
	perplexitypkg "github.com/sells-group/geo-cli/pkg/perplexity"
)

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// buildOrchestrator wires the reasoning model and the answer platform
// searchers from config. Platforms without an API key run against the
// simulated catalogue.
func buildOrchestrator() *orchestrator.Orchestrator {
	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)
	completer := gateway.NewCompleter(anthropicClient, cfg.Anthropic, gateway.NewLimiter(cfg.Pipeline.RequestsPerSecond))

	var openaiClient openaipkg.Client
	if cfg.OpenAI.Key != "" {
		openaiClient = openaipkg.NewClient(cfg.OpenAI.Key, openaipkg.WithModel(cfg.OpenAI.Model))
	}
	var perplexityClient perplexitypkg.Client
	if cfg.Perplexity.Key != "" {
		perplexityClient = perplexitypkg.NewClient(cfg.Perplexity.Key,
			perplexitypkg.WithBaseURL(cfg.Perplexity.BaseURL),
			perplexitypkg.WithModel(cfg.Perplexity.Model),
		)
	}

	searchers := gateway.Registry{
		model.PlatformChatGPT:    gateway.NewOpenAISearcher(openaiClient, cfg.OpenAI, gateway.NewLimiter(cfg.Pipeline.RequestsPerSecond)),
		model.PlatformPerplexity: gateway.NewPerplexitySearcher(perplexityClient, cfg.Perplexity, gateway.NewLimiter(cfg.Pipeline.RequestsPerSecond)),
	}

	return orchestrator.New(completer, searchers, cfg.Pipeline)
}

// saveHistory persists a completed run on a best-effort basis. A history
// write failure is logged, never surfaced to the caller.
func saveHistory(st store.Store, result *model.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := st.SaveResult(ctx, result); err != nil {
		zap.L().Warn("history save failed",
			zap.String("run_id", result.ID),
			zap.Error(err),
		)
	}
}
