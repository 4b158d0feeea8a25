package generate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sells-group/geo-cli/internal/analyze"
	"github.com/sells-group/geo-cli/internal/gateway"
	"github.com/sells-group/geo-cli/internal/model"
)

// Prompt construction is a closed set: every LLM call in the pipeline goes
// through exactly one of these builders, so the full prompt surface is
// auditable in this file.

func floatPtr(v float64) *float64 { return &v }

const hypothesisSystem = `You are an expert GEO analyst who explains why brands
appear or don't appear in AI-generated answers.

Generate 3-5 clear hypotheses explaining the visibility patterns.
Consider:
- Content quality and relevance
- Semantic alignment with query intent
- Domain authority and trust signals
- Freshness and recency of content
- Keyword optimization
- Structured data and citations

For each hypothesis:
1. Provide a clear title
2. Explain the reasoning
3. Estimate confidence (0-1)
4. List supporting evidence

Format as JSON array of objects with keys: title, explanation, confidence, supporting_evidence`

// BuildHypothesisRequest assembles the hypothesis-generation prompt from the
// comparison and pattern data.
func BuildHypothesisRequest(query string, cmp model.Comparison, patterns analyze.Patterns) gateway.CompletionRequest {
	topName := "N/A"
	topRate := 0.0
	if len(cmp.CompetitorScores) > 0 {
		topName = cmp.CompetitorScores[0].Domain
		topRate = cmp.CompetitorScores[0].MentionRate * 100
	}

	platformData, _ := json.MarshalIndent(cmp.BrandScore.Platforms, "", "  ")
	patternData, _ := json.MarshalIndent(patterns, "", "  ")

	prompt := fmt.Sprintf(`Analyze this GEO visibility data:

Query: %s
Brand: %s (Mention Rate: %.1f%%)
Top Competitor: %s (Mention Rate: %.1f%%)
Visibility Gap: %.1f%%

Platform Performance:
%s

Patterns Observed:
%s

Generate hypotheses explaining these patterns.`,
		query,
		cmp.BrandScore.Domain, cmp.BrandScore.MentionRate*100,
		topName, topRate,
		cmp.VisibilityGap*100,
		platformData, patternData)

	return gateway.CompletionRequest{
		System:      hypothesisSystem,
		Prompt:      prompt,
		Temperature: floatPtr(0.7),
	}
}

const recommendationSystem = `You are a GEO optimization strategist who creates actionable
recommendations to improve brand visibility in AI-generated answers.

Generate 5-7 specific, actionable recommendations based on the analysis.

For each recommendation:
1. Clear, actionable title
2. Detailed description
3. Priority (high/medium/low)
4. Impact score (0-10): Expected improvement in visibility
5. Effort score (0-10): Implementation complexity
6. 3-5 specific action items
7. Expected outcome

Focus on:
- Content optimization
- Semantic SEO
- Structured data
- Authority building
- Platform-specific strategies

Format as JSON array with keys: title, description, priority, impact_score,
effort_score, action_items, expected_outcome`

// BuildRecommendationRequest assembles the recommendation-generation prompt.
func BuildRecommendationRequest(query string, cmp model.Comparison, hypotheses []model.Hypothesis, patterns analyze.Patterns) gateway.CompletionRequest {
	var hyps strings.Builder
	for _, h := range hypotheses {
		fmt.Fprintf(&hyps, "- %s: %s (Confidence: %.2f)\n", h.Title, h.Explanation, h.Confidence)
	}

	prompt := fmt.Sprintf(`Based on this GEO analysis:

Query: %s
Brand: %s
Current Visibility: %.1f%%

Hypotheses:
%s
Competitor Insights:
%s

Generate prioritized recommendations to improve GEO visibility.`,
		query,
		cmp.BrandScore.Domain, cmp.BrandScore.MentionRate*100,
		hyps.String(),
		competitorInsights(cmp, patterns))

	return gateway.CompletionRequest{
		System:      recommendationSystem,
		Prompt:      prompt,
		Temperature: floatPtr(0.7),
	}
}

// competitorInsights formats the top competitors and their advantages for the
// recommendation prompt.
func competitorInsights(cmp model.Comparison, patterns analyze.Patterns) string {
	var lines []string

	top := cmp.CompetitorScores
	if len(top) > 3 {
		top = top[:3]
	}
	for _, comp := range top {
		line := fmt.Sprintf("%s: %.1f%% visibility", comp.Domain, comp.MentionRate*100)
		if len(comp.Platforms) > 0 {
			names := make([]string, 0, len(comp.Platforms))
			for _, p := range model.KnownPlatforms {
				if comp.Platforms[p] > 0 {
					names = append(names, string(p))
				}
			}
			line += fmt.Sprintf(" (Strong on: %s)", strings.Join(names, ", "))
		}
		lines = append(lines, line)
	}

	advantages := patterns.CompetitorAdvantages
	if len(advantages) > 2 {
		advantages = advantages[:2]
	}
	for _, adv := range advantages {
		lines = append(lines, fmt.Sprintf("%s: %.1f%% advantage", adv.Competitor, adv.MentionAdvantage*100))
	}

	return strings.Join(lines, "\n")
}

const planSystem = `You are a strategic planner for GEO (Generative Engine Optimization) analysis.
Your job is to create a detailed investigation plan based on the user's query.

Consider:
1. What data sources to query (ChatGPT, Perplexity, etc.)
2. What queries/variations to test
3. What metrics to track
4. What comparisons to make
5. What hypotheses to test

Be specific and actionable.`

// BuildPlanRequest assembles the advisory strategy-narrative prompt used by
// the planning stage.
func BuildPlanRequest(req model.AnalysisRequest) gateway.CompletionRequest {
	platforms := make([]string, len(req.Platforms))
	for i, p := range req.Platforms {
		platforms[i] = string(p)
	}

	prompt := fmt.Sprintf("Create an analysis plan for: %s\nBrand: %s\nCompetitors: %s\nPlatforms: %s",
		req.Query, req.BrandDomain,
		strings.Join(req.Competitors, ", "),
		strings.Join(platforms, ", "))

	return gateway.CompletionRequest{
		System:      planSystem,
		Prompt:      prompt,
		Temperature: floatPtr(0.3),
	}
}

const hypothesisCritiqueSystem = `You are a critical evaluator of AI-generated hypotheses.
Your job is to assess hypothesis quality and suggest improvements.

Evaluate each hypothesis on:
1. **Evidence Quality** (0-1): Is supporting evidence strong and specific?
2. **Logical Coherence** (0-1): Does the explanation make logical sense?
3. **Actionability** (0-1): Can this lead to concrete actions?
4. **Specificity** (0-1): Is it specific enough to be useful?

Return JSON with:
- overall_score (0-1)
- critique (string explaining weaknesses)
- suggestions (list of specific improvements)
- should_regenerate (boolean)`

// BuildHypothesisCritiqueRequest assembles the quality-gate prompt for one
// hypothesis.
func BuildHypothesisCritiqueRequest(h model.Hypothesis, observations []model.Observation, brandVisibility float64) gateway.CompletionRequest {
	prompt := fmt.Sprintf(`Evaluate this hypothesis:

Title: %s
Explanation: %s
Confidence: %.2f
Evidence: %s
Brand Visibility: %.1f%%
Context: %s`,
		h.Title, h.Explanation, h.Confidence,
		strings.Join(h.SupportingEvidence, "; "),
		brandVisibility*100,
		summarizeObservations(observations))

	return gateway.CompletionRequest{
		System:      hypothesisCritiqueSystem,
		Prompt:      prompt,
		Temperature: floatPtr(0.3),
	}
}

const recommendationCritiqueSystem = `You are a critical evaluator of action recommendations.

Evaluate each recommendation on:
1. **Actionability** (0-1): Are action items clear and specific?
2. **Feasibility** (0-1): Can this realistically be implemented?
3. **Impact Accuracy** (0-1): Is the impact score realistic?
4. **Completeness** (0-1): Are all necessary details included?

Return JSON with overall_score, critique, suggestions, should_regenerate.`

// BuildRecommendationCritiqueRequest assembles the quality-gate prompt for
// one recommendation.
func BuildRecommendationCritiqueRequest(r model.Recommendation) gateway.CompletionRequest {
	prompt := fmt.Sprintf(`Evaluate this recommendation:

Title: %s
Description: %s
Priority: %s
Impact Score: %.1f/10
Effort Score: %.1f/10
Action Items: %s
Expected Outcome: %s`,
		r.Title, r.Description, r.Priority,
		r.ImpactScore, r.EffortScore,
		strings.Join(r.ActionItems, "; "),
		r.ExpectedOutcome)

	return gateway.CompletionRequest{
		System:      recommendationCritiqueSystem,
		Prompt:      prompt,
		Temperature: floatPtr(0.3),
	}
}

const regenerateSystem = `You are an expert at improving AI-generated hypotheses.
Given a weak hypothesis and critique, generate an improved version.

Requirements:
- Address all critique points
- Provide stronger, more specific evidence
- Improve logical coherence
- Maintain JSON format: title, explanation, confidence, supporting_evidence`

// BuildRegenerateRequest assembles the prompt that rewrites a weak hypothesis
// with its critique embedded.
func BuildRegenerateRequest(h model.Hypothesis, critique string, observations []model.Observation, brandVisibility float64) gateway.CompletionRequest {
	original, _ := json.MarshalIndent(h, "", "  ")

	prompt := fmt.Sprintf(`Improve this hypothesis:

Original: %s
Critique: %s
Available Data: %s
Brand Context: Brand visibility: %.1f%%`,
		original, critique,
		summarizeObservations(observations),
		brandVisibility*100)

	return gateway.CompletionRequest{
		System:      regenerateSystem,
		Prompt:      prompt,
		Temperature: floatPtr(0.3),
	}
}

// summarizeObservations condenses the observation set into a few lines of
// prompt context.
func summarizeObservations(observations []model.Observation) string {
	if len(observations) == 0 {
		return "No observation data available"
	}

	platforms := map[model.Platform]int{}
	brandMentions := 0
	competitorMentions := 0
	for _, obs := range observations {
		platforms[obs.Platform]++
		if obs.BrandMentioned {
			brandMentions++
		}
		competitorMentions += len(obs.CompetitorsMentioned)
	}

	var counts []string
	for _, p := range model.KnownPlatforms {
		if platforms[p] > 0 {
			counts = append(counts, fmt.Sprintf("%s: %d", p, platforms[p]))
		}
	}

	return fmt.Sprintf("Analyzed %d observations:\n- Platforms: %s\n- Brand mentions: %d\n- Competitor mentions: %d",
		len(observations), strings.Join(counts, ", "), brandMentions, competitorMentions)
}
