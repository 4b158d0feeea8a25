package generate

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geo-cli/internal/model"
)

// CleanJSON strips markdown code fences and surrounding prose, keeping the
// first-{ to last-} span. LLMs wrap JSON output inconsistently.
func CleanJSON(text string) string {
	return cleanDelimited(text, "{", "}")
}

// CleanJSONArray is CleanJSON for top-level arrays.
func CleanJSONArray(text string) string {
	return cleanDelimited(text, "[", "]")
}

func cleanDelimited(text, open, closing string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, open)
	end := strings.LastIndex(text, closing)
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// ParseHypotheses decodes an LLM response into hypotheses.
func ParseHypotheses(text string) ([]model.Hypothesis, error) {
	var out []model.Hypothesis
	if err := json.Unmarshal([]byte(CleanJSONArray(text)), &out); err != nil {
		return nil, eris.Wrap(err, "generate: parse hypotheses")
	}
	if len(out) == 0 {
		return nil, eris.New("generate: empty hypothesis list")
	}
	return out, nil
}

// ParseHypothesis decodes a single regenerated hypothesis.
func ParseHypothesis(text string) (*model.Hypothesis, error) {
	var out model.Hypothesis
	if err := json.Unmarshal([]byte(CleanJSON(text)), &out); err != nil {
		return nil, eris.Wrap(err, "generate: parse hypothesis")
	}
	return &out, nil
}

// ParseRecommendations decodes an LLM response into recommendations,
// normalizing the priority to lowercase.
func ParseRecommendations(text string) ([]model.Recommendation, error) {
	var out []model.Recommendation
	if err := json.Unmarshal([]byte(CleanJSONArray(text)), &out); err != nil {
		return nil, eris.Wrap(err, "generate: parse recommendations")
	}
	if len(out) == 0 {
		return nil, eris.New("generate: empty recommendation list")
	}
	for i := range out {
		out[i].Priority = model.Priority(strings.ToLower(string(out[i].Priority)))
	}
	return out, nil
}

// ParseEvaluation decodes a critique response.
func ParseEvaluation(text string) (*model.EvaluationRecord, error) {
	var raw struct {
		OverallScore     float64  `json:"overall_score"`
		Critique         string   `json:"critique"`
		Suggestions      []string `json:"suggestions"`
		ShouldRegenerate bool     `json:"should_regenerate"`
	}
	if err := json.Unmarshal([]byte(CleanJSON(text)), &raw); err != nil {
		return nil, eris.Wrap(err, "generate: parse evaluation")
	}
	return &model.EvaluationRecord{
		Score:       raw.OverallScore,
		Critique:    raw.Critique,
		Suggestions: raw.Suggestions,
		Regenerate:  raw.ShouldRegenerate,
	}, nil
}
