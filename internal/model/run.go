package model

import "time"

// RunStatus is the terminal state of a search run. Every run renders a
// response, so the only distinction is whether stages reported errors.
type RunStatus string

const (
	RunStatusCompleted           RunStatus = "completed"
	RunStatusCompletedWithErrors RunStatus = "completed_with_errors"
)

// SearchRun is a persisted record of one pipeline execution.
type SearchRun struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	SessionID    string         `json:"session_id,omitempty"`
	Query        string         `json:"query"`
	Criteria     SearchCriteria `json:"criteria"`
	ResultsCount int            `json:"results_count"`
	Status       RunStatus      `json:"status"`
	Trace        WorkflowTrace  `json:"trace"`
	CreatedAt    time.Time      `json:"created_at"`
}

// RunStage is a persisted per-stage row for one search run.
type RunStage struct {
	ID        string         `json:"id"`
	RunID     string         `json:"run_id"`
	Stage     string         `json:"stage"`
	Status    StageStatus    `json:"status"`
	Details   map[string]any `json:"details,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
