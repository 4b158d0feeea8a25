package generate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geo-cli/internal/analyze"
	"github.com/sells-group/geo-cli/internal/model"
)

func testComparison() model.Comparison {
	return model.Comparison{
		BrandScore: model.VisibilityScore{Domain: "acme.com", MentionRate: 0.2},
		CompetitorScores: []model.VisibilityScore{
			{Domain: "hubspot.com", MentionRate: 0.8, Platforms: map[model.Platform]int{model.PlatformChatGPT: 3}},
		},
		VisibilityGap: 0.6,
		TopCompetitor: "hubspot.com",
	}
}

func TestHypothesesFromModel(t *testing.T) {
	completer := &mockCompleter{}
	completer.On("Complete", mock.Anything, mock.Anything).
		Return(`[{"title": "Weak Authority", "explanation": "Low backlink profile.", "confidence": 0.7, "supporting_evidence": ["gap 60%"]}]`, nil)

	g := NewGenerator(completer)
	hyps, usedFallback := g.Hypotheses(context.Background(), "best crm software", testComparison(), analyze.Patterns{})

	assert.False(t, usedFallback)
	require.Len(t, hyps, 1)
	assert.Equal(t, "Weak Authority", hyps[0].Title)
}

func TestHypothesesFallbackOnError(t *testing.T) {
	completer := &mockCompleter{}
	completer.On("Complete", mock.Anything, mock.Anything).
		Return("", errors.New("overloaded"))

	g := NewGenerator(completer)
	hyps, usedFallback := g.Hypotheses(context.Background(), "best crm software", testComparison(), analyze.Patterns{})

	assert.True(t, usedFallback)
	assert.NotEmpty(t, hyps)
}

func TestHypothesesFallbackOnGarbage(t *testing.T) {
	completer := &mockCompleter{}
	completer.On("Complete", mock.Anything, mock.Anything).
		Return("no json here, apologies", nil)

	g := NewGenerator(completer)
	hyps, usedFallback := g.Hypotheses(context.Background(), "best crm software", testComparison(), analyze.Patterns{})

	assert.True(t, usedFallback)
	assert.NotEmpty(t, hyps)
}

func TestRecommendationsSortedByROI(t *testing.T) {
	completer := &mockCompleter{}
	completer.On("Complete", mock.Anything, mock.Anything).
		Return(`[
			{"title": "Slow", "description": "d", "priority": "low", "impact_score": 4, "effort_score": 8, "action_items": ["a"], "expected_outcome": "o"},
			{"title": "Quick Win", "description": "d", "priority": "high", "impact_score": 9, "effort_score": 3, "action_items": ["a"], "expected_outcome": "o"},
			{"title": "Middling", "description": "d", "priority": "medium", "impact_score": 6, "effort_score": 4, "action_items": ["a"], "expected_outcome": "o"}
		]`, nil)

	g := NewGenerator(completer)
	recs, usedFallback := g.Recommendations(context.Background(), "best crm software", testComparison(), nil, analyze.Patterns{})

	assert.False(t, usedFallback)
	require.Len(t, recs, 3)
	assert.Equal(t, "Quick Win", recs[0].Title)
	assert.Equal(t, "Middling", recs[1].Title)
	assert.Equal(t, "Slow", recs[2].Title)
}

func TestRecommendationsFallbackNonEmpty(t *testing.T) {
	completer := &mockCompleter{}
	completer.On("Complete", mock.Anything, mock.Anything).
		Return("", errors.New("timeout"))

	g := NewGenerator(completer)
	recs, usedFallback := g.Recommendations(context.Background(), "best crm software", testComparison(), nil, analyze.Patterns{})

	assert.True(t, usedFallback)
	assert.NotEmpty(t, recs)
}

func TestROIEffortFloor(t *testing.T) {
	r := model.Recommendation{ImpactScore: 5, EffortScore: 0}
	assert.InDelta(t, 5.0, r.ROI(), 1e-9)
}

func TestFallbackHypothesesLowVisibility(t *testing.T) {
	hyps := FallbackHypotheses(testComparison(), analyze.Patterns{
		PlatformSkew: map[model.Platform]float64{model.PlatformChatGPT: 0.1},
	})

	require.NotEmpty(t, hyps)
	titles := make([]string, len(hyps))
	for i, h := range hyps {
		titles[i] = h.Title
	}
	assert.Contains(t, titles, "Low Brand Visibility in AI Responses")
	assert.Contains(t, titles, "Strong Competitor Presence")
	assert.Contains(t, titles, "Platform-Specific Performance Variation")
}

func TestFallbackHypothesesInsufficientData(t *testing.T) {
	cmp := model.Comparison{
		BrandScore: model.VisibilityScore{Domain: "acme.com", MentionRate: 0.6},
	}

	hyps := FallbackHypotheses(cmp, analyze.Patterns{})
	require.Len(t, hyps, 1)
	assert.Equal(t, "Insufficient Data", hyps[0].Title)
}

func TestFallbackRecommendationsGapGated(t *testing.T) {
	withGap := FallbackRecommendations(testComparison())
	assert.Len(t, withGap, 5)

	noGap := FallbackRecommendations(model.Comparison{
		BrandScore: model.VisibilityScore{Domain: "acme.com", MentionRate: 0.6},
	})
	assert.Len(t, noGap, 4)
}

func TestFallbacksDeterministic(t *testing.T) {
	cmp := testComparison()
	p := analyze.Patterns{PlatformSkew: map[model.Platform]float64{model.PlatformChatGPT: 0.2}}

	assert.Equal(t, FallbackHypotheses(cmp, p), FallbackHypotheses(cmp, p))
	assert.Equal(t, FallbackRecommendations(cmp), FallbackRecommendations(cmp))
}
