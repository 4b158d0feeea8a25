package orchestrator

import (
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/geo-cli/internal/model"
)

// runState is the orchestrator-private accumulator for one run. Stages hand
// their output to the merge methods below; nothing else mutates it. All
// merges happen on the orchestrator goroutine after each stage's workers have
// joined, so no locking is needed.
//
// Merge discipline: trace, flow, and error lists are append-only; the timing
// map takes each key exactly once; scalar fields are written by exactly one
// stage.
type runState struct {
	result model.Result
}

func newRunState(req model.AnalysisRequest) *runState {
	return &runState{
		result: model.Result{
			ID:           uuid.New().String(),
			Timestamp:    time.Now().UTC(),
			Request:      req,
			Observations: []model.Observation{},
			StepTimings:  map[string]float64{},
			Errors:       []model.StepError{},
			Status:       model.RunStatusCompleted,
		},
	}
}

func (s *runState) mergeTrace(step model.TraceStep) {
	s.result.ReasoningTrace = append(s.result.ReasoningTrace, step)
}

func (s *runState) mergeFlow(flows ...model.DataFlow) {
	s.result.DataFlow = append(s.result.DataFlow, flows...)
}

// mergeTiming records a stage duration. First write wins; a stage never
// overwrites another stage's key.
func (s *runState) mergeTiming(key string, seconds float64) {
	if _, ok := s.result.StepTimings[key]; ok {
		return
	}
	s.result.StepTimings[key] = seconds
}

func (s *runState) mergeErrors(errs ...model.StepError) {
	s.result.Errors = append(s.result.Errors, errs...)
}

func (s *runState) mergeObservations(observations []model.Observation) {
	s.result.Observations = observations
}

func (s *runState) mergeComparison(cmp model.Comparison) {
	s.result.Comparison = cmp
}

func (s *runState) mergeArtifacts(hypotheses []model.Hypothesis, recommendations []model.Recommendation) {
	s.result.Hypotheses = hypotheses
	s.result.Recommendations = recommendations
}

func (s *runState) mergeEvaluation(summary model.EvaluationSummary) {
	s.result.Evaluation = summary
}

func (s *runState) mergeSummary(text string) {
	s.result.Summary = text
}

func (s *runState) degrade() {
	s.result.Status = model.RunStatusPartialFailure
}
