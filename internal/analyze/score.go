package analyze

import (
	"sort"
	"strings"

	"github.com/sells-group/geo-cli/internal/model"
)

// Score aggregates mentions of one domain across all observations.
//
// A domain counts as mentioned in an observation when any of these hold:
// the full domain appears in the raw answer text, the domain is in the
// observation's competitor list, or the observation's brand flag is set and
// the domain equals the query. Scoring requires the full domain in text; the
// name-segment relaxation applies only at extraction time. The position for a
// mention comes from the answer text when the domain appears there, otherwise
// from the observation's extracted position.
func Score(observations []model.Observation, domain string) model.VisibilityScore {
	score := model.VisibilityScore{
		Domain:    domain,
		Platforms: map[model.Platform]int{},
	}

	var positions []int
	d := strings.ToLower(domain)

	for _, obs := range observations {
		lower := strings.ToLower(obs.RawResponse)

		mentioned := strings.Contains(lower, d) ||
			containsDomain(obs.CompetitorsMentioned, domain) ||
			(obs.BrandMentioned && d == strings.ToLower(obs.Query))
		if !mentioned {
			continue
		}

		score.TotalMentions++
		score.Platforms[obs.Platform]++

		if pos := exactTextPosition(lower, domain); pos > 0 {
			positions = append(positions, pos)
		} else if obs.Position != nil {
			positions = append(positions, *obs.Position)
		}
	}

	if len(observations) > 0 {
		score.MentionRate = float64(score.TotalMentions) / float64(len(observations))
	}
	if len(positions) > 0 {
		sum := 0
		for _, p := range positions {
			sum += p
		}
		avg := float64(sum) / float64(len(positions))
		score.AvgPosition = &avg
	}
	return score
}

// Compare scores the brand against every competitor. Competitor scores come
// back stable-sorted descending by mention rate, so ties keep request order.
// The gap is top competitor rate minus brand rate and goes negative when the
// brand leads.
func Compare(observations []model.Observation, brandDomain string, competitors []string) model.Comparison {
	cmp := model.Comparison{
		BrandScore:       Score(observations, brandDomain),
		CompetitorScores: make([]model.VisibilityScore, 0, len(competitors)),
	}

	for _, c := range competitors {
		cmp.CompetitorScores = append(cmp.CompetitorScores, Score(observations, c))
	}
	sort.SliceStable(cmp.CompetitorScores, func(i, j int) bool {
		return cmp.CompetitorScores[i].MentionRate > cmp.CompetitorScores[j].MentionRate
	})

	if len(cmp.CompetitorScores) > 0 {
		top := cmp.CompetitorScores[0]
		cmp.VisibilityGap = top.MentionRate - cmp.BrandScore.MentionRate
		cmp.TopCompetitor = top.Domain
	} else {
		cmp.VisibilityGap = -cmp.BrandScore.MentionRate
	}
	return cmp
}

func containsDomain(list []string, domain string) bool {
	for _, v := range list {
		if strings.EqualFold(v, domain) {
			return true
		}
	}
	return false
}
