package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sells-group/geo-cli/internal/gateway"
)

// scriptedCompleter routes each prompt kind to a canned response. Safe for
// concurrent use: it holds no state.
type scriptedCompleter struct {
	planErr       error
	hypothesisErr error
}

const (
	scriptedHypotheses = `[{"title": "Weak Authority", "explanation": "The brand lacks authoritative citations.", "confidence": 0.8, "supporting_evidence": ["low mention rate"]}]`

	scriptedRecommendations = `[{"title": "Publish Comparisons", "description": "Create comparison content.", "priority": "high", "impact_score": 8, "effort_score": 4, "action_items": ["write pages"], "expected_outcome": "more citations"}]`

	scriptedCritique = `{"overall_score": 0.9, "critique": "solid", "suggestions": [], "should_regenerate": false}`
)

func (c *scriptedCompleter) Complete(ctx context.Context, req gateway.CompletionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch {
	case strings.Contains(req.System, "strategic planner"):
		if c.planErr != nil {
			return "", c.planErr
		}
		return "Query the major answer platforms with semantic variations.", nil
	case strings.Contains(req.System, "GEO analyst"):
		if c.hypothesisErr != nil {
			return "", c.hypothesisErr
		}
		return scriptedHypotheses, nil
	case strings.Contains(req.System, "optimization strategist"):
		return scriptedRecommendations, nil
	case strings.Contains(req.System, "critical evaluator"):
		return scriptedCritique, nil
	}
	return "", errors.New("unexpected prompt")
}

// hungFirstCallCompleter blocks its first call until that call's context
// expires, then answers from the script.
type hungFirstCallCompleter struct {
	mu     sync.Mutex
	called bool
	inner  scriptedCompleter
}

func (c *hungFirstCallCompleter) Complete(ctx context.Context, req gateway.CompletionRequest) (string, error) {
	c.mu.Lock()
	first := !c.called
	c.called = true
	c.mu.Unlock()

	if first {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return c.inner.Complete(ctx, req)
}

// stubSearcher returns a fixed answer or error for every query.
type stubSearcher struct {
	text      string
	citations []string
	err       error
}

func (s stubSearcher) Search(ctx context.Context, query string) (*gateway.Answer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return &gateway.Answer{Text: s.text, Citations: s.citations}, nil
}
