package generate

import (
	"fmt"

	"github.com/sells-group/geo-cli/internal/analyze"
	"github.com/sells-group/geo-cli/internal/model"
)

// FallbackHypotheses derives rule-based hypotheses directly from the
// comparison data. Deterministic for a given input.
func FallbackHypotheses(cmp model.Comparison, patterns analyze.Patterns) []model.Hypothesis {
	var hypotheses []model.Hypothesis

	if cmp.BrandScore.MentionRate < 0.3 {
		hypotheses = append(hypotheses, model.Hypothesis{
			Title: "Low Brand Visibility in AI Responses",
			Explanation: fmt.Sprintf("The brand %s appears in only %.0f%% of responses, indicating limited recognition by AI models.",
				cmp.BrandScore.Domain, cmp.BrandScore.MentionRate*100),
			Confidence: 0.9,
			SupportingEvidence: []string{
				fmt.Sprintf("Mention rate: %.0f%%", cmp.BrandScore.MentionRate*100),
				fmt.Sprintf("Visibility gap vs top competitor: %.0f%%", cmp.VisibilityGap*100),
			},
		})
	}

	if len(cmp.CompetitorScores) > 0 && cmp.VisibilityGap > 0.2 {
		top := cmp.CompetitorScores[0]
		hypotheses = append(hypotheses, model.Hypothesis{
			Title: "Strong Competitor Presence",
			Explanation: fmt.Sprintf("%s has significantly higher visibility, suggesting better content optimization or domain authority.",
				top.Domain),
			Confidence: 0.85,
			SupportingEvidence: []string{
				fmt.Sprintf("%s mention rate: %.0f%%", top.Domain, top.MentionRate*100),
				fmt.Sprintf("Appears on %d platforms", len(top.Platforms)),
			},
		})
	}

	if len(patterns.PlatformSkew) > 0 {
		hypotheses = append(hypotheses, model.Hypothesis{
			Title:       "Platform-Specific Performance Variation",
			Explanation: "Visibility varies significantly across different AI platforms, suggesting platform-specific optimization opportunities.",
			Confidence:  0.75,
			SupportingEvidence: []string{
				fmt.Sprintf("Platform performance: %v", patterns.PlatformSkew),
			},
		})
	}

	if len(hypotheses) == 0 {
		hypotheses = append(hypotheses, model.Hypothesis{
			Title:              "Insufficient Data",
			Explanation:        "Unable to generate detailed hypotheses with current data.",
			Confidence:         0.5,
			SupportingEvidence: []string{"Limited observation data available"},
		})
	}
	return hypotheses
}

// FallbackRecommendations derives a rule-based recommendation set, ordered
// by priority rather than ratio.
func FallbackRecommendations(cmp model.Comparison) []model.Recommendation {
	recs := []model.Recommendation{{
		Title:       "Optimize Content for AI Semantic Understanding",
		Description: "Improve content structure and semantic clarity to help AI models better understand and cite your brand.",
		Priority:    model.PriorityHigh,
		ImpactScore: 8.5,
		EffortScore: 6.0,
		ActionItems: []string{
			"Add clear, structured FAQ sections addressing common queries",
			"Use schema.org markup for better structured data",
			"Include explicit product/service descriptions with key benefits",
			"Create comprehensive comparison pages vs competitors",
		},
		ExpectedOutcome: "20-30% improvement in AI citation rate within 2-3 months",
	}}

	if cmp.VisibilityGap > 0.3 {
		recs = append(recs, model.Recommendation{
			Title:       "Build Domain Authority and Trust Signals",
			Description: "Increase domain credibility through authoritative content and external validation.",
			Priority:    model.PriorityHigh,
			ImpactScore: 7.5,
			EffortScore: 8.0,
			ActionItems: []string{
				"Publish thought leadership content on industry topics",
				"Earn backlinks from authoritative sources",
				"Get featured in industry publications",
				"Maintain active presence on relevant platforms",
			},
			ExpectedOutcome: "Improved trust signals leading to higher AI citation rates",
		})
	}

	recs = append(recs,
		model.Recommendation{
			Title:       "Enhance Semantic Keyword Targeting",
			Description: fmt.Sprintf("Optimize content for variations of '%s' related queries.", cmp.BrandScore.Domain),
			Priority:    model.PriorityMedium,
			ImpactScore: 7.0,
			EffortScore: 4.0,
			ActionItems: []string{
				"Research and target semantic keyword variations",
				"Create content clusters around core topics",
				"Use natural language that matches query intent",
				"Include question-answer format content",
			},
			ExpectedOutcome: "15-25% increase in relevant query coverage",
		},
		model.Recommendation{
			Title:       "Maintain Content Freshness",
			Description: "Keep content updated to ensure AI models access recent, relevant information.",
			Priority:    model.PriorityMedium,
			ImpactScore: 6.5,
			EffortScore: 5.0,
			ActionItems: []string{
				"Update key pages quarterly",
				"Add publication/update dates prominently",
				"Create timely, relevant content regularly",
				"Monitor and update outdated information",
			},
			ExpectedOutcome: "Better recency signals for AI platforms",
		},
		model.Recommendation{
			Title:       "Implement Platform-Specific Strategies",
			Description: "Tailor content for different AI platforms based on their preferences.",
			Priority:    model.PriorityLow,
			ImpactScore: 5.5,
			EffortScore: 7.0,
			ActionItems: []string{
				"Analyze top-cited sources on each platform",
				"Optimize for Perplexity's citation format",
				"Structure content for ChatGPT's context window",
				"Test content performance across platforms",
			},
			ExpectedOutcome: "Improved platform-specific visibility",
		},
	)
	return recs
}
