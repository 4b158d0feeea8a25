package analyze

import "github.com/sells-group/geo-cli/internal/model"

// Patterns is the qualitative layer the hypothesis and recommendation prompts
// are grounded in.
type Patterns struct {
	// PlatformSkew is the brand mention rate per platform.
	PlatformSkew map[model.Platform]float64 `json:"platform_skew"`
	// Positions summarizes where the brand lands when it is mentioned.
	Positions PositionStats `json:"positions"`
	// Contexts are the answer excerpts surrounding brand mentions.
	Contexts []string `json:"contexts"`
	// CompetitorAdvantages lists competitors that out-mention the brand.
	CompetitorAdvantages []CompetitorAdvantage `json:"competitor_advantages"`
}

// PositionStats describes the distribution of extracted positions.
type PositionStats struct {
	Average *float64 `json:"average,omitempty"`
	Best    *int     `json:"best,omitempty"`
	Worst   *int     `json:"worst,omitempty"`
	Top3    int      `json:"top_3"`
	Top5    int      `json:"top_5"`
	Beyond5 int      `json:"beyond_5"`
}

// CompetitorAdvantage captures one competitor's lead over the brand.
type CompetitorAdvantage struct {
	Competitor       string           `json:"competitor"`
	MentionAdvantage float64          `json:"mention_advantage"`
	StrongPlatforms  []model.Platform `json:"strong_platforms"`
}

// ExtractPatterns derives the pattern summary from the observations and the
// already-computed comparison.
func ExtractPatterns(observations []model.Observation, cmp model.Comparison) Patterns {
	p := Patterns{
		PlatformSkew: platformSkew(observations),
		Positions:    positionStats(observations),
		Contexts:     []string{},
	}

	for _, obs := range observations {
		if obs.BrandMentioned && obs.Context != "" {
			p.Contexts = append(p.Contexts, obs.Context)
		}
	}

	for _, comp := range cmp.CompetitorScores {
		if comp.MentionRate <= cmp.BrandScore.MentionRate {
			continue
		}
		adv := CompetitorAdvantage{
			Competitor:       comp.Domain,
			MentionAdvantage: comp.MentionRate - cmp.BrandScore.MentionRate,
		}
		for _, platform := range model.KnownPlatforms {
			if comp.Platforms[platform] > 0 {
				adv.StrongPlatforms = append(adv.StrongPlatforms, platform)
			}
		}
		p.CompetitorAdvantages = append(p.CompetitorAdvantages, adv)
	}
	return p
}

func platformSkew(observations []model.Observation) map[model.Platform]float64 {
	totals := map[model.Platform]int{}
	mentions := map[model.Platform]int{}
	for _, obs := range observations {
		totals[obs.Platform]++
		if obs.BrandMentioned {
			mentions[obs.Platform]++
		}
	}

	skew := make(map[model.Platform]float64, len(totals))
	for platform, total := range totals {
		skew[platform] = float64(mentions[platform]) / float64(total)
	}
	return skew
}

func positionStats(observations []model.Observation) PositionStats {
	var stats PositionStats
	var positions []int
	for _, obs := range observations {
		if obs.Position != nil {
			positions = append(positions, *obs.Position)
		}
	}
	if len(positions) == 0 {
		return stats
	}

	sum, best, worst := 0, positions[0], positions[0]
	for _, p := range positions {
		sum += p
		if p < best {
			best = p
		}
		if p > worst {
			worst = p
		}
		switch {
		case p <= 3:
			stats.Top3++
			stats.Top5++
		case p <= 5:
			stats.Top5++
		default:
			stats.Beyond5++
		}
	}

	avg := float64(sum) / float64(len(positions))
	stats.Average = &avg
	stats.Best = &best
	stats.Worst = &worst
	return stats
}
