package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geo-cli/internal/model"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "json code fence",
			in:   "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "bare code fence",
			in:   "```\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "surrounding prose",
			in:   "Here is the result:\n{\"a\": 1}\nHope that helps!",
			want: `{"a": 1}`,
		},
		{
			name: "already clean",
			in:   `{"a": 1}`,
			want: `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSON(tt.in))
		})
	}
}

func TestCleanJSONArray(t *testing.T) {
	in := "```json\n[{\"a\": 1}, {\"a\": 2}]\n```"
	assert.Equal(t, `[{"a": 1}, {"a": 2}]`, CleanJSONArray(in))
}

func TestParseHypotheses(t *testing.T) {
	in := "```json\n[{\"title\": \"T\", \"explanation\": \"E\", \"confidence\": 0.8, \"supporting_evidence\": [\"e1\"]}]\n```"

	hyps, err := ParseHypotheses(in)
	require.NoError(t, err)
	require.Len(t, hyps, 1)
	assert.Equal(t, "T", hyps[0].Title)
	assert.InDelta(t, 0.8, hyps[0].Confidence, 1e-9)
}

func TestParseHypothesesEmptyIsError(t *testing.T) {
	_, err := ParseHypotheses("[]")
	require.Error(t, err)
}

func TestParseHypothesesGarbage(t *testing.T) {
	_, err := ParseHypotheses("I could not produce JSON, sorry.")
	require.Error(t, err)
}

func TestParseRecommendationsNormalizesPriority(t *testing.T) {
	in := `[{"title": "R", "description": "D", "priority": "HIGH", "impact_score": 8, "effort_score": 2, "action_items": ["a"], "expected_outcome": "O"}]`

	recs, err := ParseRecommendations(in)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, model.PriorityHigh, recs[0].Priority)
}

func TestParseEvaluation(t *testing.T) {
	in := "```json\n{\"overall_score\": 0.45, \"critique\": \"vague\", \"suggestions\": [\"be specific\"], \"should_regenerate\": true}\n```"

	rec, err := ParseEvaluation(in)
	require.NoError(t, err)
	assert.InDelta(t, 0.45, rec.Score, 1e-9)
	assert.Equal(t, "vague", rec.Critique)
	assert.True(t, rec.Regenerate)
}

func TestParseEvaluationGarbage(t *testing.T) {
	_, err := ParseEvaluation("not json at all")
	require.Error(t, err)
}
