package model

// Observation is one structured result extracted from a single platform
// answer for one query variation. Observations are immutable once built.
type Observation struct {
	Query                string   `json:"query"`
	Platform             Platform `json:"platform"`
	BrandMentioned       bool     `json:"brand_mentioned"`
	Position             *int     `json:"position,omitempty"`
	Context              string   `json:"context,omitempty"`
	CompetitorsMentioned []string `json:"competitors_mentioned"`
	RawResponse          string   `json:"raw_response"`
	CitationRank         *int     `json:"citation_rank,omitempty"`
}

// VisibilityScore aggregates mentions of a single domain across a set of
// observations. Recomputed per run, never persisted on its own.
type VisibilityScore struct {
	Domain        string           `json:"domain"`
	TotalMentions int              `json:"total_mentions"`
	MentionRate   float64          `json:"mention_rate"`
	AvgPosition   *float64         `json:"avg_position,omitempty"`
	Platforms     map[Platform]int `json:"platforms"`
}

// Comparison pits the brand score against competitor scores.
// CompetitorScores is stable-sorted descending by mention rate; ties keep the
// order competitors were listed in the request. VisibilityGap is the top
// competitor rate minus the brand rate and may be negative when the brand
// leads.
type Comparison struct {
	BrandScore       VisibilityScore   `json:"brand_score"`
	CompetitorScores []VisibilityScore `json:"competitor_scores"`
	VisibilityGap    float64           `json:"visibility_gap"`
	TopCompetitor    string            `json:"top_competitor,omitempty"`
}
