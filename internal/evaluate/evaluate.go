// Package evaluate implements the quality gate: every generated artifact is
// critiqued by the reasoning model, weak hypotheses are regenerated once with
// the critique embedded, and the whole pass is summarized for the trace.
package evaluate

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/geo-cli/internal/gateway"
	"github.com/sells-group/geo-cli/internal/generate"
	"github.com/sells-group/geo-cli/internal/model"
)

// neutralScore is assumed when a critique cannot be obtained or parsed. It
// passes the default threshold, so unevaluable artifacts are kept as-is.
const neutralScore = 0.8

// Evaluator runs the critique-and-regenerate loop.
type Evaluator struct {
	completer gateway.Completer
	threshold float64
}

// NewEvaluator returns an Evaluator with the given quality threshold.
func NewEvaluator(completer gateway.Completer, threshold float64) *Evaluator {
	return &Evaluator{completer: completer, threshold: threshold}
}

// Hypotheses critiques every hypothesis, regenerates the weak ones, and
// returns the validated list plus the evaluation summary. The returned slice
// is index-stable: hypothesis i is either the original or its improved
// replacement, never reordered. AverageScore is computed from the
// pre-improvement critique scores.
func (e *Evaluator) Hypotheses(ctx context.Context, hypotheses []model.Hypothesis, observations []model.Observation, brandVisibility float64) ([]model.Hypothesis, model.HypothesisEvaluation) {
	eval := model.HypothesisEvaluation{
		TotalEvaluated: len(hypotheses),
		Threshold:      e.threshold,
	}
	if len(hypotheses) == 0 {
		eval.AllPassed = true
		return hypotheses, eval
	}

	validated := make([]model.Hypothesis, len(hypotheses))
	copy(validated, hypotheses)

	var scoreSum float64
	var weak []int

	for i, h := range hypotheses {
		rec := e.critiqueHypothesis(ctx, h, observations, brandVisibility)
		rec.Index = i
		rec.Title = h.Title
		eval.Records = append(eval.Records, rec)
		scoreSum += rec.Score

		if rec.Score < e.threshold || rec.Regenerate {
			weak = append(weak, i)
		}
	}
	eval.AverageScore = scoreSum / float64(len(hypotheses))

	for _, i := range weak {
		rec := eval.Records[i]
		improved, err := e.regenerate(ctx, hypotheses[i], rec.Critique, observations, brandVisibility)
		if err != nil {
			zap.L().Warn("hypothesis regeneration failed, keeping original",
				zap.String("title", hypotheses[i].Title),
				zap.Error(err))
			continue
		}
		validated[i] = *improved
		eval.ImprovementsMade++
		zap.L().Info("hypothesis improved",
			zap.Int("index", i),
			zap.String("title", improved.Title))
	}

	eval.AllPassed = len(weak) == 0
	return validated, eval
}

func (e *Evaluator) critiqueHypothesis(ctx context.Context, h model.Hypothesis, observations []model.Observation, brandVisibility float64) model.EvaluationRecord {
	text, err := e.completer.Complete(ctx, generate.BuildHypothesisCritiqueRequest(h, observations, brandVisibility))
	if err != nil {
		zap.L().Warn("hypothesis critique failed", zap.String("title", h.Title), zap.Error(err))
		return model.EvaluationRecord{Score: neutralScore, Critique: "evaluation failed"}
	}

	rec, err := generate.ParseEvaluation(text)
	if err != nil {
		zap.L().Warn("hypothesis critique unparseable", zap.String("title", h.Title), zap.Error(err))
		return model.EvaluationRecord{Score: neutralScore, Critique: "evaluation failed"}
	}
	return *rec
}

func (e *Evaluator) regenerate(ctx context.Context, h model.Hypothesis, critique string, observations []model.Observation, brandVisibility float64) (*model.Hypothesis, error) {
	text, err := e.completer.Complete(ctx, generate.BuildRegenerateRequest(h, critique, observations, brandVisibility))
	if err != nil {
		return nil, err
	}
	return generate.ParseHypothesis(text)
}

// Recommendations critiques every recommendation. Score only: weak
// recommendations are reported, never replaced.
func (e *Evaluator) Recommendations(ctx context.Context, recommendations []model.Recommendation) model.RecommendationEvaluation {
	eval := model.RecommendationEvaluation{
		TotalEvaluated: len(recommendations),
		AllActionable:  true,
	}
	if len(recommendations) == 0 {
		return eval
	}

	var scoreSum float64
	for i, r := range recommendations {
		rec := e.critiqueRecommendation(ctx, r)
		rec.Index = i
		rec.Title = r.Title
		eval.Records = append(eval.Records, rec)
		scoreSum += rec.Score

		if rec.Score < e.threshold {
			eval.AllActionable = false
		}
	}
	eval.AverageScore = scoreSum / float64(len(recommendations))
	return eval
}

func (e *Evaluator) critiqueRecommendation(ctx context.Context, r model.Recommendation) model.EvaluationRecord {
	text, err := e.completer.Complete(ctx, generate.BuildRecommendationCritiqueRequest(r))
	if err != nil {
		zap.L().Warn("recommendation critique failed", zap.String("title", r.Title), zap.Error(err))
		return model.EvaluationRecord{Score: neutralScore, Critique: "evaluation failed"}
	}

	rec, err := generate.ParseEvaluation(text)
	if err != nil {
		zap.L().Warn("recommendation critique unparseable", zap.String("title", r.Title), zap.Error(err))
		return model.EvaluationRecord{Score: neutralScore, Critique: "evaluation failed"}
	}
	return *rec
}
