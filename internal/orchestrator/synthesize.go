package orchestrator

import (
	"fmt"
	"strings"

	"github.com/sells-group/geo-cli/internal/model"
)

// buildSummary renders the executive summary from the accumulated state.
func buildSummary(res *model.Result) string {
	cmp := res.Comparison
	brandRate := cmp.BrandScore.MentionRate * 100

	topComp := "N/A"
	topRate := 0.0
	if len(cmp.CompetitorScores) > 0 {
		topComp = cmp.CompetitorScores[0].Domain
		topRate = cmp.CompetitorScores[0].MentionRate * 100
	}

	return strings.TrimSpace(fmt.Sprintf(`
GEO Analysis Summary for %q

Brand Performance:
- %s: %.1f%% visibility rate
- Mentioned in %d observations

Competitive Landscape:
- Top competitor: %s (%.1f%% visibility)
- Visibility gap: %.1f percentage points

Key Findings:
%s

Analysis Method:
- Multi-stage pipeline with bounded parallel collection
- %d AI platform queries analyzed
- %d reasoning steps captured
`,
		res.Request.Query,
		res.Request.BrandDomain, brandRate,
		cmp.BrandScore.TotalMentions,
		topComp, topRate,
		cmp.VisibilityGap*100,
		formatKeyFindings(res.Hypotheses),
		len(res.Observations),
		len(res.ReasoningTrace)))
}

func formatKeyFindings(hypotheses []model.Hypothesis) string {
	if len(hypotheses) == 0 {
		return "- No significant patterns identified"
	}
	top := hypotheses
	if len(top) > 3 {
		top = top[:3]
	}
	lines := make([]string, len(top))
	for i, h := range top {
		lines[i] = fmt.Sprintf("- %s (Confidence: %.0f%%)", h.Title, h.Confidence*100)
	}
	return strings.Join(lines, "\n")
}
