package models

import "time"

// RunStatus is the lifecycle state of a Run.
type RunStatus string

// Run status values. finished_at is set iff Status is one of
// {RunStatusCompleted, RunStatusFailed}.
const (
	RunStatusPending    RunStatus = "pending"
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// Run is one execution of a (brand, scenario) pair.
type Run struct {
	ID           string         `json:"id"`
	ExternalID   string         `json:"external_id"` // {brand_slug}_{YYYYMMDD_HHMMSS}_{6 hex}
	BrandID      string         `json:"brand_id"`
	ScenarioID   string         `json:"scenario_id"`
	Status       RunStatus      `json:"status"`
	Config       map[string]any `json:"config"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	FinishedAt   *time.Time     `json:"finished_at,omitempty"`
}

// IsTerminal reports whether the run has reached a final status.
func (r *Run) IsTerminal() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed
}
