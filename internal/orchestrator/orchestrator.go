// Package orchestrator drives the six-stage analysis run: plan, collect,
// analyze, generate, evaluate, synthesize. It owns the run state and the
// transparency trace; all domain logic lives in the stage packages.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/geo-cli/internal/analyze"
	"github.com/sells-group/geo-cli/internal/config"
	"github.com/sells-group/geo-cli/internal/evaluate"
	"github.com/sells-group/geo-cli/internal/gateway"
	"github.com/sells-group/geo-cli/internal/generate"
	"github.com/sells-group/geo-cli/internal/model"
)

// Stage names. Each is a trace step and a timing key; "total" is added by
// synthesis.
const (
	stepPlan       = "planning"
	stepCollect    = "data_collection"
	stepAnalyze    = "analysis"
	stepGenerate   = "generation"
	stepEvaluate   = "evaluation"
	stepSynthesize = "synthesis"
)

// ErrInvalidRequest marks structural validation failures. Callers match it
// with errors.Is to distinguish bad input from pipeline failures.
var ErrInvalidRequest = eris.New("orchestrator: invalid request")

// Orchestrator executes analysis runs.
type Orchestrator struct {
	generator *generate.Generator
	evaluator *evaluate.Evaluator
	searchers gateway.Registry
	cfg       config.PipelineConfig
}

// New wires an Orchestrator from the gateway pieces and pipeline config.
// Reasoning-model calls are deadline-bounded so a hung upstream degrades the
// affected stage instead of stalling the run.
func New(completer gateway.Completer, searchers gateway.Registry, cfg config.PipelineConfig) *Orchestrator {
	completer = gateway.WithTimeout(completer, time.Duration(cfg.CompletionTimeoutSecs)*time.Second)
	return &Orchestrator{
		generator: generate.NewGenerator(completer),
		evaluator: evaluate.NewEvaluator(completer, cfg.QualityThreshold),
		searchers: searchers,
		cfg:       cfg,
	}
}

// Execute runs one full analysis. It returns an error only for structural
// validation failures or caller cancellation; degraded runs still produce a
// Result with Status partial_failure and a populated error list.
func (o *Orchestrator) Execute(ctx context.Context, req model.AnalysisRequest) (*model.Result, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, eris.Wrapf(ErrInvalidRequest, "%v", err)
	}

	state := newRunState(req)
	start := time.Now()

	log := zap.L().With(
		zap.String("run_id", state.result.ID),
		zap.String("query", req.Query),
		zap.String("brand", req.BrandDomain))
	log.Info("orchestrator: starting analysis",
		zap.Int("competitors", len(req.Competitors)),
		zap.Int("platforms", len(req.Platforms)))

	// trackStep times one stage, appends its trace entry, and records the
	// timing key. fn fills in the step's Input/Output/Status.
	trackStep := func(name, agent, process string, fn func(step *model.TraceStep)) {
		step := model.TraceStep{
			Step:      name,
			Agent:     agent,
			Timestamp: time.Now().UTC(),
			Process:   process,
			Status:    model.StepStatusCompleted,
		}
		stepStart := time.Now()
		fn(&step)
		step.Duration = time.Since(stepStart).Seconds()

		state.mergeTrace(step)
		state.mergeTiming(name, step.Duration)
		log.Info("orchestrator: stage complete",
			zap.String("stage", name),
			zap.Float64("duration_s", step.Duration),
			zap.String("status", string(step.Status)))
	}

	// Stage 1: Plan.
	var p plan
	trackStep(stepPlan, "Planner", "Analyzing query intent and creating execution strategy", func(step *model.TraceStep) {
		p.variations = queryVariations(req.Query)
		if req.NumQueries < len(p.variations) {
			p.variations = p.variations[:req.NumQueries]
		}
		p.platforms = req.Platforms

		step.Input = map[string]any{
			"query":       req.Query,
			"brand":       req.BrandDomain,
			"competitors": req.Competitors,
		}

		narrative, err := o.generator.PlanNarrative(ctx, req)
		if err != nil {
			// Advisory only; the deterministic expansion stands alone.
			step.Status = model.StepStatusDegraded
			log.Warn("orchestrator: plan narrative unavailable", zap.Error(err))
		} else {
			p.narrative = narrative
		}

		step.Output = map[string]any{
			"query_variations": len(p.variations),
			"platforms":        platformNames(p.platforms),
			"narrative":        p.narrative,
		}
	})
	state.mergeFlow(
		model.DataFlow{From: "User Input", To: "Planner", Data: "Query, Brand, Competitors"},
		model.DataFlow{From: "Planner", To: "Data Collection", Data: fmt.Sprintf("%d query variations", len(p.variations))},
	)

	// Stage 2: Collect.
	var outcome collectOutcome
	trackStep(stepCollect, "DataCollector", "Bounded parallel execution of queries across all platforms", func(step *model.TraceStep) {
		outcome = o.collect(ctx, p, req)

		step.Input = map[string]any{
			"query_variations": p.variations,
			"platforms":        platformNames(p.platforms),
			"max_concurrent":   o.cfg.MaxConcurrent,
		}
		step.Output = map[string]any{
			"total_queries": outcome.total,
			"successful":    len(outcome.observations),
			"failed":        len(outcome.errors),
		}
		if len(outcome.errors) > 0 {
			step.Status = model.StepStatusPartialFailure
			state.degrade()
		}
	})
	state.mergeObservations(outcome.observations)
	state.mergeErrors(outcome.errors...)
	state.mergeFlow(model.DataFlow{
		From: "Data Collection",
		To:   "Analysis",
		Data: fmt.Sprintf("%d observations", len(outcome.observations)),
	})

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "orchestrator: cancelled")
	}

	// Stage 3: Analyze.
	var cmp model.Comparison
	var patterns analyze.Patterns
	trackStep(stepAnalyze, "Analyzer", "Statistical analysis and pattern extraction", func(step *model.TraceStep) {
		cmp = analyze.Compare(outcome.observations, req.BrandDomain, req.Competitors)
		patterns = analyze.ExtractPatterns(outcome.observations, cmp)

		step.Input = map[string]any{"observations": len(outcome.observations)}
		step.Output = map[string]any{
			"brand_visibility": fmt.Sprintf("%.1f%%", cmp.BrandScore.MentionRate*100),
			"visibility_gap":   fmt.Sprintf("%.1f%%", cmp.VisibilityGap*100),
			"top_competitor":   cmp.TopCompetitor,
		}
	})
	state.mergeComparison(cmp)
	state.mergeFlow(model.DataFlow{
		From: "Analysis",
		To:   "Generation",
		Data: "Visibility scores and patterns",
	})

	// Stage 4: Generate. Hypotheses and recommendations are independent, so
	// they run as a two-branch join.
	var hypotheses []model.Hypothesis
	var recommendations []model.Recommendation
	var hypFallback, recFallback bool
	trackStep(stepGenerate, "Generator", "Hypothesis and recommendation generation", func(step *model.TraceStep) {
		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			hypotheses, hypFallback = o.generator.Hypotheses(gCtx, req.Query, cmp, patterns)
			return nil
		})
		g.Go(func() error {
			recommendations, recFallback = o.generator.Recommendations(gCtx, req.Query, cmp, nil, patterns)
			return nil
		})
		_ = g.Wait()

		step.Input = map[string]any{
			"visibility_gap": cmp.VisibilityGap,
			"patterns":       len(patterns.CompetitorAdvantages),
		}
		step.Output = map[string]any{
			"hypotheses":              len(hypotheses),
			"recommendations":         len(recommendations),
			"hypothesis_fallback":     hypFallback,
			"recommendation_fallback": recFallback,
		}
		if hypFallback || recFallback {
			step.Status = model.StepStatusDegraded
		}
	})
	state.mergeFlow(model.DataFlow{
		From: "Generation",
		To:   "Evaluation",
		Data: fmt.Sprintf("%d hypotheses, %d recommendations", len(hypotheses), len(recommendations)),
	})

	// Stage 5: Evaluate (quality gate).
	trackStep(stepEvaluate, "Evaluator", "Self-critique with selective regeneration of weak hypotheses", func(step *model.TraceStep) {
		validated, hypEval := o.evaluator.Hypotheses(ctx, hypotheses, outcome.observations, cmp.BrandScore.MentionRate)
		recEval := o.evaluator.Recommendations(ctx, recommendations)
		hypotheses = validated

		state.mergeEvaluation(model.EvaluationSummary{
			Performed:       true,
			Hypotheses:      hypEval,
			Recommendations: recEval,
		})

		step.Input = map[string]any{
			"hypotheses":      len(hypotheses),
			"recommendations": len(recommendations),
		}
		step.Output = map[string]any{
			"improvements_made":  hypEval.ImprovementsMade,
			"avg_hypothesis":     hypEval.AverageScore,
			"avg_recommendation": recEval.AverageScore,
			"threshold":          hypEval.Threshold,
		}
	})
	state.mergeArtifacts(hypotheses, recommendations)
	state.mergeFlow(model.DataFlow{
		From: "Evaluation",
		To:   "Synthesis",
		Data: fmt.Sprintf("Validated outputs (%d improvements)", state.result.Evaluation.Hypotheses.ImprovementsMade),
	})

	// Stage 6: Synthesize.
	trackStep(stepSynthesize, "Synthesizer", "Combining all stage outputs into the executive summary", func(step *model.TraceStep) {
		state.mergeSummary(buildSummary(&state.result))
		step.Output = map[string]any{"summary_length": len(state.result.Summary)}
	})
	state.mergeTiming("total", time.Since(start).Seconds())
	state.mergeFlow(model.DataFlow{From: "Synthesis", To: "Caller", Data: "Complete analysis with reasoning trace"})

	log.Info("orchestrator: analysis complete",
		zap.String("status", string(state.result.Status)),
		zap.Int("observations", len(state.result.Observations)),
		zap.Int("hypotheses", len(state.result.Hypotheses)),
		zap.Int("recommendations", len(state.result.Recommendations)),
		zap.Float64("total_s", state.result.StepTimings["total"]))

	return &state.result, nil
}

func platformNames(platforms []model.Platform) []string {
	names := make([]string, len(platforms))
	for i, p := range platforms {
		names[i] = string(p)
	}
	return names
}
