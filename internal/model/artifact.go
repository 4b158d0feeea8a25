package model

// Priority buckets for recommendations.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Hypothesis explains why the observed visibility pattern exists.
type Hypothesis struct {
	Title              string   `json:"title"`
	Explanation        string   `json:"explanation"`
	Confidence         float64  `json:"confidence"`
	SupportingEvidence []string `json:"supporting_evidence"`
}

// Recommendation is an actionable step to improve visibility.
type Recommendation struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Priority        Priority `json:"priority"`
	ImpactScore     float64  `json:"impact_score"`
	EffortScore     float64  `json:"effort_score"`
	ActionItems     []string `json:"action_items"`
	ExpectedOutcome string   `json:"expected_outcome"`
}

// ROI is the impact/effort ratio used to order recommendations.
func (r Recommendation) ROI() float64 {
	effort := r.EffortScore
	if effort < 1 {
		effort = 1
	}
	return r.ImpactScore / effort
}

// EvaluationRecord is the parsed critique for a single artifact. Ephemeral:
// it drives the quality gate and populates the trace, nothing else.
type EvaluationRecord struct {
	Index       int      `json:"index"`
	Title       string   `json:"title"`
	Score       float64  `json:"score"`
	Critique    string   `json:"critique"`
	Suggestions []string `json:"suggestions,omitempty"`
	Regenerate  bool     `json:"regenerate"`
}

// HypothesisEvaluation summarizes the quality gate pass over hypotheses.
// AverageScore is computed before regeneration.
type HypothesisEvaluation struct {
	Records          []EvaluationRecord `json:"records"`
	TotalEvaluated   int                `json:"total_evaluated"`
	ImprovementsMade int                `json:"improvements_made"`
	AverageScore     float64            `json:"average_score"`
	Threshold        float64            `json:"threshold"`
	AllPassed        bool               `json:"all_passed"`
}

// RecommendationEvaluation summarizes the score-only pass over
// recommendations. Recommendations are never regenerated.
type RecommendationEvaluation struct {
	Records        []EvaluationRecord `json:"records"`
	TotalEvaluated int                `json:"total_evaluated"`
	AverageScore   float64            `json:"average_score"`
	AllActionable  bool               `json:"all_actionable"`
}

// EvaluationSummary is the stable quality-gate contract consumed by the
// synthesis stage and external callers.
type EvaluationSummary struct {
	Performed       bool                     `json:"performed"`
	Hypotheses      HypothesisEvaluation     `json:"hypotheses"`
	Recommendations RecommendationEvaluation `json:"recommendations"`
}
