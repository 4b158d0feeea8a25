package model

import "time"

// RunStatus is the terminal status of an analysis run.
type RunStatus string

const (
	RunStatusCompleted      RunStatus = "completed"
	RunStatusPartialFailure RunStatus = "partial_failure"
)

// StepStatus is the terminal status of a single pipeline stage.
type StepStatus string

const (
	StepStatusCompleted      StepStatus = "completed"
	StepStatusPartialFailure StepStatus = "partial_failure"
	StepStatusDegraded       StepStatus = "degraded"
)

// TraceStep records one pipeline stage for the transparency trace. Every
// external call and derived decision must be reconstructable from the trace.
type TraceStep struct {
	Step      string         `json:"step"`
	Agent     string         `json:"agent"`
	Timestamp time.Time      `json:"timestamp"`
	Input     map[string]any `json:"input,omitempty"`
	Process   string         `json:"process"`
	Output    map[string]any `json:"output,omitempty"`
	Duration  float64        `json:"duration"`
	Status    StepStatus     `json:"status"`
}

// DataFlow records one hop of data between pipeline components.
type DataFlow struct {
	From string `json:"from"`
	To   string `json:"to"`
	Data string `json:"data"`
}

// StepError captures a single non-fatal failure inside a stage.
type StepError struct {
	Step      string    `json:"step"`
	Platform  Platform  `json:"platform,omitempty"`
	Query     string    `json:"query,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Result is the complete outcome of one analysis run, including the
// transparency trace. This shape is the contract the HTTP/CLI layers
// serialize.
type Result struct {
	ID              string             `json:"id"`
	Timestamp       time.Time          `json:"timestamp"`
	Request         AnalysisRequest    `json:"request"`
	Observations    []Observation      `json:"observations"`
	Comparison      Comparison         `json:"comparison"`
	Hypotheses      []Hypothesis       `json:"hypotheses"`
	Recommendations []Recommendation   `json:"recommendations"`
	Summary         string             `json:"summary"`
	ReasoningTrace  []TraceStep        `json:"reasoning_trace"`
	DataFlow        []DataFlow         `json:"data_flow"`
	StepTimings     map[string]float64 `json:"step_timings"`
	Errors          []StepError        `json:"errors"`
	Evaluation      EvaluationSummary  `json:"evaluation"`
	Status          RunStatus          `json:"status"`
}
