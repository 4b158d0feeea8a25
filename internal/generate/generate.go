// Package generate turns analysis output into hypotheses and recommendations
// via the reasoning model, with deterministic rule-based fallbacks so a run
// always produces artifacts even when the model is unreachable or returns
// garbage.
package generate

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/geo-cli/internal/analyze"
	"github.com/sells-group/geo-cli/internal/gateway"
	"github.com/sells-group/geo-cli/internal/model"
)

// Generator produces the two artifact kinds.
type Generator struct {
	completer gateway.Completer
}

// NewGenerator returns a Generator backed by the given reasoning model.
func NewGenerator(completer gateway.Completer) *Generator {
	return &Generator{completer: completer}
}

// Hypotheses generates hypotheses for the comparison. Model failure or
// unparseable output falls back to the rule-based set; the returned list is
// never empty. The bool reports whether the fallback was used.
func (g *Generator) Hypotheses(ctx context.Context, query string, cmp model.Comparison, patterns analyze.Patterns) ([]model.Hypothesis, bool) {
	text, err := g.completer.Complete(ctx, BuildHypothesisRequest(query, cmp, patterns))
	if err != nil {
		zap.L().Warn("hypothesis generation failed, using fallback", zap.Error(err))
		return FallbackHypotheses(cmp, patterns), true
	}

	hyps, err := ParseHypotheses(text)
	if err != nil {
		zap.L().Warn("hypothesis response unparseable, using fallback", zap.Error(err))
		return FallbackHypotheses(cmp, patterns), true
	}
	return hyps, false
}

// Recommendations generates recommendations, sorted by impact/effort ratio
// descending. Same fallback contract as Hypotheses.
func (g *Generator) Recommendations(ctx context.Context, query string, cmp model.Comparison, hypotheses []model.Hypothesis, patterns analyze.Patterns) ([]model.Recommendation, bool) {
	text, err := g.completer.Complete(ctx, BuildRecommendationRequest(query, cmp, hypotheses, patterns))
	if err != nil {
		zap.L().Warn("recommendation generation failed, using fallback", zap.Error(err))
		return FallbackRecommendations(cmp), true
	}

	recs, err := ParseRecommendations(text)
	if err != nil {
		zap.L().Warn("recommendation response unparseable, using fallback", zap.Error(err))
		return FallbackRecommendations(cmp), true
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].ROI() > recs[j].ROI()
	})
	return recs, false
}

// PlanNarrative asks the reasoning model for the advisory strategy narrative.
// Failure is tolerated; callers note it in the trace and continue.
func (g *Generator) PlanNarrative(ctx context.Context, req model.AnalysisRequest) (string, error) {
	return g.completer.Complete(ctx, BuildPlanRequest(req))
}
