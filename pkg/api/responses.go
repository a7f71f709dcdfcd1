package api

import "github.com/allthingstrust/truststack/pkg/orchestrator"

// RunResponse is returned by GET /api/v1/runs/:id.
type RunResponse struct {
	RunID   string `json:"run_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ReportResponse wraps orchestrator.Report for JSON serialization; kept as
// its own type (rather than serializing *orchestrator.Report directly) so
// response shape can diverge from the internal report struct later without
// touching orchestrator.
type ReportResponse struct {
	*orchestrator.Report
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}
